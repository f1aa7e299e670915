// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg"
	"github.com/telekom/icmptrace/pkg/api"
	"github.com/telekom/icmptrace/pkg/checks/runtime"
	"github.com/telekom/icmptrace/pkg/config"
	"github.com/telekom/icmptrace/pkg/db"
	"github.com/telekom/icmptrace/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = time.Second * 90

// Monitor periodically traces the configured targets and serves the results
type Monitor struct {
	// config is the startup configuration of the monitor
	config *config.Config
	// db stores the latest check results
	db db.DB
	// api serves the results, the metrics and the openapi document
	api api.API
	// loader is used to load the runtime configuration
	loader config.Loader
	// telemetry holds the prometheus registry and the tracer provider
	telemetry telemetry.Provider
	// controller is used to manage the checks
	controller *ChecksController
	// cRuntime is used to signal that the runtime configuration has changed
	cRuntime chan runtime.Config
}

// New creates a new monitor from the startup configuration
func New(cfg *config.Config) *Monitor {
	t := telemetry.New(cfg.Telemetry)
	dbase := db.NewInMemory()

	m := &Monitor{
		config:     cfg,
		db:         dbase,
		api:        api.New(cfg.Api),
		telemetry:  t,
		controller: NewChecksController(dbase, t.GetRegistry()),
		cRuntime:   make(chan runtime.Config, 1),
	}
	m.loader = config.NewLoader(cfg, m.cRuntime)
	return m
}

// Run starts all components and blocks until the context is canceled
// or a component fails. Returns nil after a shutdown caused by the context.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx).With("name", m.config.Name)
	ctx = logger.IntoContext(ctx, log)

	if err := m.telemetry.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := telemetry.RegisterInstanceInfo(m.telemetry.GetRegistry(), m.config.Name, pkg.Version); err != nil {
		log.WarnContext(ctx, "Failed to register instance info metric", "error", err)
	}
	if err := m.api.RegisterRoutes(ctx, m.routes()...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.loader.Run(gCtx)
	})
	g.Go(func() error {
		return m.api.Run(gCtx)
	})
	g.Go(func() error {
		return m.controller.Run(gCtx)
	})
	g.Go(func() error {
		for {
			select {
			case cfg := <-m.cRuntime:
				m.controller.Reconcile(gCtx, cfg)
			case <-gCtx.Done():
				return nil
			}
		}
	})

	log.InfoContext(ctx, "Monitor started")
	err := g.Wait()
	m.shutdown(ctx)

	if ctx.Err() != nil {
		log.InfoContext(ctx, "Monitor was shut down")
		return nil
	}
	if err == nil {
		err = errors.New("all components stopped")
	}
	return fmt.Errorf("non-recoverable error in monitor component: %w", err)
}

// shutdown gracefully stops all managed components
func (m *Monitor) shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	log.InfoContext(ctx, "Shutting down monitor")
	var sErrs ErrShutdown
	m.loader.Shutdown(ctx)
	m.controller.Shutdown(ctx)
	sErrs.errAPI = m.api.Shutdown(ctx)
	sErrs.errTelemetry = m.telemetry.Shutdown(ctx)

	if sErrs.HasError() {
		log.ErrorContext(ctx, "Failed to shutdown gracefully", "errors", sErrs)
	}
}
