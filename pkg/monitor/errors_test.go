// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrShutdown(t *testing.T) {
	var none ErrShutdown
	assert.False(t, none.HasError())
	assert.NotEmpty(t, none.Error())

	errAPI := errors.New("api still serving")
	sErr := ErrShutdown{errAPI: errAPI}
	assert.True(t, sErr.HasError())
	assert.ErrorContains(t, sErr, "api still serving")
}

func TestErrRunningCheck(t *testing.T) {
	cause := errors.New("permission denied")
	err := &ErrRunningCheck{Check: newCheckMock("traceroute"), Err: cause}

	assert.Equal(t, "check traceroute failed: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
}
