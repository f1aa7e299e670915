// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/icmptrace/internal/helper"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/internal/traceroute"
	"github.com/telekom/icmptrace/pkg/checks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ checks.Check = (*Traceroute)(nil)

const CheckName = "traceroute"

func NewCheck() checks.Check {
	c := &Traceroute{
		CheckBase: checks.CheckBase{
			Mu:       sync.Mutex{},
			DoneChan: make(chan struct{}, 1),
		},
		config:  Config{},
		client:  traceroute.NewClient(),
		metrics: newMetrics(),
	}
	c.tracer = otel.Tracer(c.Name())
	return c
}

// Traceroute periodically traces the route to all configured targets.
type Traceroute struct {
	checks.CheckBase
	config  Config
	metrics metrics
	client  traceroute.Client
	tracer  trace.Tracer
}

type result map[string][]traceroute.Hop

// Run runs the check in a loop sending results to the provided channel
func (tr *Traceroute) Run(ctx context.Context, cResult chan checks.ResultDTO) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	tr.Mu.Lock()
	interval := tr.config.Interval
	tr.Mu.Unlock()

	log.InfoContext(ctx, "Starting traceroute check", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			log.ErrorContext(ctx, "Context canceled", "error", ctx.Err())
			return ctx.Err()
		case <-tr.DoneChan:
			return nil
		case <-time.After(interval):
			res := tr.check(ctx)
			dto := checks.ResultDTO{
				Name: tr.Name(),
				Result: &checks.Result{
					Data:      res,
					Timestamp: time.Now().UTC(),
				},
			}
			select {
			case cResult <- dto:
			case <-ctx.Done():
				return ctx.Err()
			}
			log.DebugContext(ctx, "Successfully finished traceroute check run")

			tr.Mu.Lock()
			interval = tr.config.Interval
			tr.Mu.Unlock()
		}
	}
}

// GetConfig returns the current configuration of the check
func (tr *Traceroute) GetConfig() checks.Runtime {
	tr.Mu.Lock()
	defer tr.Mu.Unlock()
	cfg := tr.config
	return &cfg
}

// check runs one traceroute over all targets and updates the metrics.
// Results of a run that failed fatally contain the hops collected until the failure.
func (tr *Traceroute) check(ctx context.Context) result {
	log := logger.FromContext(ctx)
	ctx, span := tr.tracer.Start(ctx, "traceroute.check")
	defer span.End()

	tr.Mu.Lock()
	cfg := tr.config
	cfg.Targets = slices.Clone(tr.config.Targets)
	tr.Mu.Unlock()
	if cfg.Retry == (helper.RetryConfig{}) {
		cfg.Retry = checks.DefaultRetry
	}

	if len(cfg.Targets) == 0 {
		log.WarnContext(ctx, "No targets configured for traceroute check")
		return result{}
	}
	span.SetAttributes(attribute.Int("traceroute.targets.count", len(cfg.Targets)))

	start := time.Now()
	var results traceroute.Result
	err := helper.Retry(func(ctx context.Context) error {
		var rErr error
		results, rErr = tr.client.Run(ctx, cfg.Targets, &cfg.Options)
		return rErr
	}, cfg.Retry)(ctx)
	tr.metrics.Observe(time.Since(start))

	if err != nil {
		log.ErrorContext(ctx, "Failed to run traceroute", "error", err)
		span.SetStatus(codes.Error, "Failed to run traceroute")
		span.RecordError(err)
	}

	res := aggregateResults(results)
	for target, hops := range res {
		tr.metrics.Set(target, hops)
	}
	return res
}

// Shutdown is called once when the check is unregistered or the monitor shuts down
func (tr *Traceroute) Shutdown() {
	tr.DoneChan <- struct{}{}
	close(tr.DoneChan)
}

// UpdateConfig is called once when the check is registered
// This is also called while the check is running, if the runtime config is reloaded
// This should return an error if the config is invalid
func (tr *Traceroute) UpdateConfig(cfg checks.Runtime) error {
	c, ok := cfg.(*Config)
	if !ok {
		return checks.ErrConfigMismatch{
			Expected: CheckName,
			Current:  cfg.For(),
		}
	}

	tr.Mu.Lock()
	defer tr.Mu.Unlock()

	for _, target := range tr.config.Targets {
		if slices.Contains(c.Targets, target) {
			continue
		}
		if err := tr.RemoveLabelledMetrics(target.String()); err != nil {
			var notFound checks.ErrMetricNotFound
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}

	tr.config = *c
	return nil
}

// Schema returns an openapi3.SchemaRef of the result type returned by the check
func (tr *Traceroute) Schema() (*openapi3.SchemaRef, error) {
	return checks.OpenapiFromPerfData(result{})
}

// GetMetricCollectors allows the check to provide prometheus metric collectors
func (tr *Traceroute) GetMetricCollectors() []prometheus.Collector {
	return tr.metrics.List()
}

// Name returns the name of the check
func (tr *Traceroute) Name() string {
	return CheckName
}

// RemoveLabelledMetrics removes the metrics which have the passed
// target as a label
func (tr *Traceroute) RemoveLabelledMetrics(target string) error {
	return tr.metrics.Remove(target)
}

func aggregateResults(res traceroute.Result) result {
	agg := result{}
	for target, hops := range res {
		if len(hops) == 0 {
			// The target is kept with an empty slice to show that it was attempted.
			agg[target.String()] = []traceroute.Hop{}
			continue
		}
		agg[target.String()] = hops
	}
	return agg
}
