// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/telekom/icmptrace/internal/helper"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg/checks/runtime"
)

var _ Loader = (*HttpLoader)(nil)

// HttpLoader fetches the runtime configuration from a remote endpoint.
type HttpLoader struct {
	cfg      *Config
	cRuntime chan<- runtime.Config
	client   *http.Client
	done     chan struct{}
}

func NewHttpLoader(cfg *Config, cRuntime chan<- runtime.Config) *HttpLoader {
	return &HttpLoader{
		cfg:      cfg,
		cRuntime: cRuntime,
		client: &http.Client{
			Timeout: cfg.Loader.Http.Timeout,
		},
		done: make(chan struct{}, 1),
	}
}

// Run gets the runtime configuration from the remote endpoint.
// The config will be loaded periodically defined by the loader interval configuration.
// If the interval is 0, the configuration is only fetched once and the loader is disabled.
func (hl *HttpLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	var runtimeCfg runtime.Config
	getConfigRetry := helper.Retry(func(ctx context.Context) (err error) {
		runtimeCfg, err = hl.getRuntimeConfig(ctx)
		return err
	}, hl.cfg.Loader.Http.RetryCfg)

	if err := getConfigRetry(ctx); err != nil {
		log.WarnContext(ctx, "Could not get remote runtime configuration", "error", err)
		return fmt.Errorf("could not get remote runtime configuration: %w", err)
	}
	if err := send(ctx, hl.cRuntime, runtimeCfg); err != nil {
		return err
	}

	if hl.cfg.Loader.Interval == 0 {
		log.InfoContext(ctx, "HTTP Loader disabled")
		return nil
	}

	tick := time.NewTicker(hl.cfg.Loader.Interval)
	defer tick.Stop()

	for {
		select {
		case <-hl.done:
			log.InfoContext(ctx, "HTTP Loader terminated")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if err := getConfigRetry(ctx); err != nil {
				log.WarnContext(ctx, "Could not get remote runtime configuration", "error", err)
				continue
			}

			log.DebugContext(ctx, "Successfully got remote runtime configuration")
			if err := send(ctx, hl.cRuntime, runtimeCfg); err != nil {
				return err
			}
		}
	}
}

// getRuntimeConfig requests the runtime configuration from the configured url
func (hl *HttpLoader) getRuntimeConfig(ctx context.Context) (cfg runtime.Config, err error) {
	log := logger.FromContext(ctx).With("url", hl.cfg.Loader.Http.Url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hl.cfg.Loader.Http.Url, http.NoBody)
	if err != nil {
		log.ErrorContext(ctx, "Could not create http GET request", "error", err)
		return cfg, err
	}
	if hl.cfg.Loader.Http.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", hl.cfg.Loader.Http.Token))
	}

	res, err := hl.client.Do(req) //nolint:bodyclose // closed in defer below
	if err != nil {
		log.ErrorContext(ctx, "Http get request failed", "error", err)
		return cfg, err
	}
	defer func() {
		err = errors.Join(err, res.Body.Close())
	}()

	if res.StatusCode != http.StatusOK {
		log.ErrorContext(ctx, "Http get request failed", "status", res.Status)
		return cfg, fmt.Errorf("request failed, status is %s", res.Status)
	}

	cfg, err = decodeRuntimeConfig(res.Body)
	if err != nil {
		log.ErrorContext(ctx, "Could not decode remote runtime configuration", "error", err)
		return cfg, err
	}
	return cfg, nil
}

func (hl *HttpLoader) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case hl.done <- struct{}{}:
		log.DebugContext(ctx, "Sending signal to shut down http loader")
	default:
	}
}
