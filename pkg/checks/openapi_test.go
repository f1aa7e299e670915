// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePerfData struct {
	Hops    int    `json:"hops"`
	Address string `json:"address"`
}

func TestOpenapiFromPerfData(t *testing.T) {
	schema, err := OpenapiFromPerfData(map[string][]samplePerfData{})
	require.NoError(t, err)
	require.NotNil(t, schema.Value)

	assert.True(t, schema.Value.Type.Is(openapi3.TypeObject))
	require.Contains(t, schema.Value.Properties, "timestamp")
	require.Contains(t, schema.Value.Properties, "data")

	data := schema.Value.Properties["data"].Value
	assert.True(t, data.Type.Is(openapi3.TypeObject))
	require.NotNil(t, data.AdditionalProperties.Schema, "map values must be described")

	items := data.AdditionalProperties.Schema.Value
	assert.True(t, items.Type.Is(openapi3.TypeArray))
	assert.Contains(t, items.Items.Value.Properties, "hops")
	assert.Contains(t, items.Items.Value.Properties, "address")
}
