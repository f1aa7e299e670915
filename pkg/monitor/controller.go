// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"iter"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg/checks"
	"github.com/telekom/icmptrace/pkg/checks/runtime"
	"github.com/telekom/icmptrace/pkg/db"
	"github.com/telekom/icmptrace/pkg/factory"
)

// ChecksController starts, updates and stops the checks
// and stores their results.
type ChecksController struct {
	db       db.DB
	registry prometheus.Registerer
	checks   runtime.Checks
	newCheck func(checks.Runtime) (checks.Check, error)
	cResult  chan checks.ResultDTO
	cErr     chan error
	wg       sync.WaitGroup
}

// NewChecksController creates a controller storing the results in dbase
// and registering the check metrics on registry.
func NewChecksController(dbase db.DB, registry prometheus.Registerer) *ChecksController {
	return &ChecksController{
		db:       dbase,
		registry: registry,
		newCheck: factory.NewCheck,
		cResult:  make(chan checks.ResultDTO, 8), //nolint:mnd // one slot per check is enough
		cErr:     make(chan error, 1),
	}
}

// Run stores the check results until the context is canceled
// or a check fails.
func (cc *ChecksController) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	for {
		select {
		case result := <-cc.cResult:
			log.DebugContext(ctx, "Storing check result", "check", result.Name)
			cc.db.Save(result)
		case err := <-cc.cErr:
			log.ErrorContext(ctx, "Check failed", "error", err)
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Reconcile brings the running checks in line with the runtime configuration.
// An invalid configuration is ignored and the running checks are kept.
// Checks whose configuration did not change are left untouched.
func (cc *ChecksController) Reconcile(ctx context.Context, cfg runtime.Config) {
	log := logger.FromContext(ctx)
	if err := cfg.Validate(); err != nil {
		log.ErrorContext(ctx, "Ignoring invalid runtime configuration", "error", err)
		return
	}

	if cfg.Empty() {
		log.WarnContext(ctx, "Runtime configuration has no checks, stopping all running checks")
	}

	for c := range cc.checks.Iter() {
		if !cfg.HasCheck(c.Name()) {
			cc.UnregisterCheck(ctx, c)
			continue
		}
		newCfg := cfg.For(c.Name())
		if reflect.DeepEqual(c.GetConfig(), newCfg) {
			continue
		}
		if err := c.UpdateConfig(newCfg); err != nil {
			log.ErrorContext(ctx, "Failed to update check config", "check", c.Name(), "error", err)
		}
	}

	for rc := range cfg.Iter() {
		if _, ok := cc.checks.Get(rc.For()); ok {
			continue
		}
		c, err := cc.newCheck(rc)
		if err != nil {
			log.ErrorContext(ctx, "Failed to create check", "check", rc.For(), "error", err)
			continue
		}
		cc.RegisterCheck(ctx, c)
	}
}

// RegisterCheck registers the metrics of the check and starts it.
func (cc *ChecksController) RegisterCheck(ctx context.Context, check checks.Check) {
	log := logger.FromContext(ctx).With("check", check.Name())

	for _, collector := range check.GetMetricCollectors() {
		if err := cc.registry.Register(collector); err != nil {
			log.WarnContext(ctx, "Could not register metrics collector", "error", err)
		}
	}

	cc.checks.Add(check)
	cc.wg.Add(1)
	go func() {
		defer cc.wg.Done()
		log.InfoContext(ctx, "Starting check")
		err := check.Run(ctx, cc.cResult)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		select {
		case cc.cErr <- &ErrRunningCheck{Check: check, Err: err}:
		case <-ctx.Done():
		}
	}()
}

// UnregisterCheck stops the check and removes its metrics.
func (cc *ChecksController) UnregisterCheck(ctx context.Context, check checks.Check) {
	log := logger.FromContext(ctx).With("check", check.Name())
	log.InfoContext(ctx, "Stopping check")

	for _, collector := range check.GetMetricCollectors() {
		if !cc.registry.Unregister(collector) {
			log.WarnContext(ctx, "Could not unregister metrics collector")
		}
	}

	check.Shutdown()
	cc.checks.Delete(check)
}

// Checks returns the running checks.
func (cc *ChecksController) Checks() iter.Seq[checks.Check] {
	return cc.checks.Iter()
}

// Shutdown stops all checks and waits for them to return.
func (cc *ChecksController) Shutdown(ctx context.Context) {
	for c := range cc.checks.Iter() {
		cc.UnregisterCheck(ctx, c)
	}

	done := make(chan struct{})
	go func() {
		cc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.FromContext(ctx).WarnContext(ctx, "Timed out waiting for checks to stop")
	}
}
