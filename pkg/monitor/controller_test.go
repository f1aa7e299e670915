// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/icmptrace/internal/traceroute"
	"github.com/telekom/icmptrace/pkg/checks"
	"github.com/telekom/icmptrace/pkg/checks/runtime"
	tracecheck "github.com/telekom/icmptrace/pkg/checks/traceroute"
	"github.com/telekom/icmptrace/pkg/db"
)

var validRuntime = runtime.Config{
	Traceroute: &tracecheck.Config{
		Targets:  []traceroute.Target{{Address: "8.8.8.8"}},
		Interval: time.Minute,
	},
}

// newCheckMock returns a check that runs until it is shut down or its context is canceled
func newCheckMock(name string) *checks.CheckMock {
	done := make(chan struct{})
	collector := prometheus.NewGauge(prometheus.GaugeOpts{Name: "icmptrace_test_" + name})
	var (
		mu      sync.Mutex
		current checks.Runtime
	)
	return &checks.CheckMock{
		NameFunc: func() string { return name },
		RunFunc: func(ctx context.Context, _ chan checks.ResultDTO) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-done:
				return nil
			}
		},
		ShutdownFunc:            func() { close(done) },
		UpdateConfigFunc: func(cfg checks.Runtime) error {
			mu.Lock()
			defer mu.Unlock()
			current = cfg
			return nil
		},
		GetConfigFunc: func() checks.Runtime {
			mu.Lock()
			defer mu.Unlock()
			return current
		},
		GetMetricCollectorsFunc: func() []prometheus.Collector { return []prometheus.Collector{collector} },
	}
}

func newTestController(t *testing.T, created ...*checks.CheckMock) (*ChecksController, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	cc := NewChecksController(db.NewInMemory(), registry)
	cc.newCheck = func(cfg checks.Runtime) (checks.Check, error) {
		for _, c := range created {
			if c.Name() == cfg.For() {
				return c, nil
			}
		}
		return nil, errors.New("unknown check")
	}
	return cc, registry
}

func TestChecksController_Reconcile(t *testing.T) {
	t.Run("registers a new check", func(t *testing.T) {
		check := newCheckMock(tracecheck.CheckName)
		cc, registry := newTestController(t, check)

		cc.Reconcile(t.Context(), validRuntime)
		defer cc.Shutdown(t.Context())

		got, ok := cc.checks.Get(tracecheck.CheckName)
		require.True(t, ok)
		assert.Same(t, check, got)
		assert.Eventually(t, func() bool { return len(check.RunCalls()) == 1 }, time.Second, 10*time.Millisecond)

		mfs, err := registry.Gather()
		require.NoError(t, err)
		assert.Len(t, mfs, 1)
	})

	t.Run("updates a running check only when its config changed", func(t *testing.T) {
		check := newCheckMock(tracecheck.CheckName)
		cc, _ := newTestController(t, check)
		cc.Reconcile(t.Context(), validRuntime)
		defer cc.Shutdown(t.Context())

		cc.Reconcile(t.Context(), validRuntime)
		require.Len(t, check.UpdateConfigCalls(), 1)
		assert.Equal(t, validRuntime.Traceroute, check.UpdateConfigCalls()[0].Config)

		cc.Reconcile(t.Context(), validRuntime)
		assert.Len(t, check.UpdateConfigCalls(), 1, "an unchanged config must not be applied again")

		changed := *validRuntime.Traceroute
		changed.Interval = 2 * time.Minute
		cc.Reconcile(t.Context(), runtime.Config{Traceroute: &changed})
		require.Len(t, check.UpdateConfigCalls(), 2)
		assert.Equal(t, &changed, check.UpdateConfigCalls()[1].Config)
		assert.Eventually(t, func() bool { return len(check.RunCalls()) == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("unregisters a removed check", func(t *testing.T) {
		check := newCheckMock(tracecheck.CheckName)
		cc, registry := newTestController(t, check)
		cc.Reconcile(t.Context(), validRuntime)

		cc.Reconcile(t.Context(), runtime.Config{})

		_, ok := cc.checks.Get(tracecheck.CheckName)
		assert.False(t, ok)
		assert.Len(t, check.ShutdownCalls(), 1)
		mfs, err := registry.Gather()
		require.NoError(t, err)
		assert.Empty(t, mfs)
	})

	t.Run("ignores an invalid config", func(t *testing.T) {
		check := newCheckMock(tracecheck.CheckName)
		cc, _ := newTestController(t, check)
		cc.Reconcile(t.Context(), validRuntime)
		defer cc.Shutdown(t.Context())

		cc.Reconcile(t.Context(), runtime.Config{Traceroute: &tracecheck.Config{}})

		_, ok := cc.checks.Get(tracecheck.CheckName)
		assert.True(t, ok)
		assert.Empty(t, check.UpdateConfigCalls())
		assert.Empty(t, check.ShutdownCalls())
	})

	t.Run("skips a check that cannot be created", func(t *testing.T) {
		cc, _ := newTestController(t)

		cc.Reconcile(t.Context(), validRuntime)

		_, ok := cc.checks.Get(tracecheck.CheckName)
		assert.False(t, ok)
	})
}

func TestChecksController_Run(t *testing.T) {
	t.Run("stores results", func(t *testing.T) {
		cc, _ := newTestController(t)
		ctx, cancel := context.WithCancel(t.Context())
		errC := make(chan error, 1)
		go func() { errC <- cc.Run(ctx) }()

		ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		cc.cResult <- checks.ResultDTO{Name: "traceroute", Result: &checks.Result{Data: "hops", Timestamp: ts}}

		assert.Eventually(t, func() bool {
			_, ok := cc.db.Get("traceroute")
			return ok
		}, time.Second, 10*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-errC, context.Canceled)
	})

	t.Run("returns when a check fails", func(t *testing.T) {
		wantErr := errors.New("socket closed")
		check := newCheckMock(tracecheck.CheckName)
		check.RunFunc = func(context.Context, chan checks.ResultDTO) error { return wantErr }
		cc, _ := newTestController(t, check)

		cc.Reconcile(t.Context(), validRuntime)
		err := cc.Run(t.Context())

		var runErr *ErrRunningCheck
		require.ErrorAs(t, err, &runErr)
		assert.Same(t, check, runErr.Check)
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestChecksController_Shutdown(t *testing.T) {
	check := newCheckMock(tracecheck.CheckName)
	cc, _ := newTestController(t, check)
	cc.Reconcile(t.Context(), validRuntime)

	cc.Shutdown(t.Context())

	assert.Len(t, check.ShutdownCalls(), 1)
	var running []checks.Check
	for c := range cc.Checks() {
		running = append(running, c)
	}
	assert.Empty(t, running)
}
