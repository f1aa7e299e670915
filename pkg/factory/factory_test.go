// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/icmptrace/internal/traceroute"
	tracecheck "github.com/telekom/icmptrace/pkg/checks/traceroute"
)

type unknownRuntime struct{}

func (unknownRuntime) For() string     { return "unknown" }
func (unknownRuntime) Validate() error { return nil }

func TestNewCheck(t *testing.T) {
	cfg := &tracecheck.Config{Targets: []traceroute.Target{{Address: "8.8.8.8"}}, Interval: time.Minute}

	c, err := NewCheck(cfg)
	require.NoError(t, err)
	assert.Equal(t, tracecheck.CheckName, c.Name())
	assert.Equal(t, cfg, c.GetConfig())

	_, err = NewCheck(nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	_, err = NewCheck(unknownRuntime{})
	assert.ErrorIs(t, err, ErrUnknownCheck)
}
