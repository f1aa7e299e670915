// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "config mismatch",
			err:  ErrConfigMismatch{Expected: "traceroute", Current: "dns"},
			want: "config mismatch: expected type traceroute, got dns",
		},
		{
			name: "invalid config",
			err:  ErrInvalidConfig{CheckName: "traceroute", Field: "traceroute.interval", Reason: "must be greater than 0"},
			want: `invalid configuration field "traceroute.interval" in check "traceroute": must be greater than 0`,
		},
		{
			name: "metric not found",
			err:  ErrMetricNotFound{Label: "8.8.8.8"},
			want: `metric "8.8.8.8" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}
