// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"

	"github.com/telekom/icmptrace/pkg/checks/runtime"
)

// Loader delivers the runtime configuration of the checks.
type Loader interface {
	// Run starts the loader routine.
	// The loader should be able
	// to handle all errors by itself and retry if necessary.
	// If the context is canceled,
	// the Run method returns an error.
	Run(context.Context) error
	// Shutdown stops the loader routine.
	Shutdown(context.Context)
}

// NewLoader Get a new typed runtime configuration loader
func NewLoader(cfg *Config, cRuntime chan<- runtime.Config) Loader {
	switch cfg.Loader.Type {
	case "http":
		return NewHttpLoader(cfg, cRuntime)
	default:
		return NewFileLoader(cfg, cRuntime)
	}
}

// send hands cfg to the consumer unless ctx is done first
func send(ctx context.Context, cRuntime chan<- runtime.Config, cfg runtime.Config) error {
	select {
	case cRuntime <- cfg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
