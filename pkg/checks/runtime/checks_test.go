// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/icmptrace/pkg/checks"
)

func namedCheck(name string) *checks.CheckMock {
	return &checks.CheckMock{NameFunc: func() string { return name }}
}

func TestChecks(t *testing.T) {
	var c Checks
	first, second := namedCheck("traceroute"), namedCheck("other")

	c.Add(first)
	c.Add(second)
	assert.Len(t, slices.Collect(c.Iter()), 2)

	got, ok := c.Get("other")
	assert.True(t, ok)
	assert.Same(t, second, got)

	c.Delete(namedCheck("traceroute"))
	assert.Equal(t, []checks.Check{second}, slices.Collect(c.Iter()))

	_, ok = c.Get("traceroute")
	assert.False(t, ok)
}
