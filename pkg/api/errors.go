// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrApiContext is returned when the api server is stopped by its context
	ErrApiContext = errors.New("api context canceled")
	// ErrInvalidListeningAddress is returned when the listening address is not host:port
	ErrInvalidListeningAddress = errors.New("invalid api listening address")
	// ErrInvalidTLSConfig is returned when tls is enabled without certificate or key
	ErrInvalidTLSConfig = errors.New("tls requires a certificate and a key path")
)

// ErrInvalidRoute is returned when a route cannot be registered
type ErrInvalidRoute struct {
	Path   string
	Method string
}

func (e ErrInvalidRoute) Error() string {
	return fmt.Sprintf("invalid route %q with method %q", e.Path, e.Method)
}

// ErrCreateOpenapiSchema is returned when the schema of a check cannot be generated
type ErrCreateOpenapiSchema struct {
	name string
	err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for check %s: %v", e.name, e.err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.err
}
