// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg/checks/runtime"
	"gopkg.in/yaml.v3"
)

var _ Loader = (*FileLoader)(nil)

// FileLoader reads the runtime configuration from a local YAML file.
type FileLoader struct {
	config   LoaderConfig
	cRuntime chan<- runtime.Config
	done     chan struct{}
	fsys     fs.FS
}

func NewFileLoader(cfg *Config, cRuntime chan<- runtime.Config) *FileLoader {
	return &FileLoader{
		config:   cfg.Loader,
		cRuntime: cRuntime,
		done:     make(chan struct{}, 1),
		fsys:     os.DirFS(filepath.Dir(cfg.Loader.File.Path)),
	}
}

// Run gets the runtime configuration from the local file.
// The config will be loaded periodically defined by the loader interval configuration.
// If the interval is 0, the configuration is only fetched once and the loader is disabled.
func (f *FileLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	cfg, err := f.getRuntimeConfig(ctx)
	if err != nil {
		log.WarnContext(ctx, "Could not get local runtime configuration", "error", err)
		return fmt.Errorf("could not get local runtime configuration: %w", err)
	}
	if err := send(ctx, f.cRuntime, cfg); err != nil {
		return err
	}

	if f.config.Interval == 0 {
		log.InfoContext(ctx, "File Loader disabled")
		return nil
	}

	tick := time.NewTicker(f.config.Interval)
	defer tick.Stop()

	for {
		select {
		case <-f.done:
			log.InfoContext(ctx, "File Loader terminated")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			runtimeCfg, err := f.getRuntimeConfig(ctx)
			if err != nil {
				log.WarnContext(ctx, "Could not get local runtime configuration", "error", err)
				continue
			}

			log.DebugContext(ctx, "Successfully got local runtime configuration")
			if err := send(ctx, f.cRuntime, runtimeCfg); err != nil {
				return err
			}
		}
	}
}

// getRuntimeConfig gets the local runtime configuration from the specified file.
func (f *FileLoader) getRuntimeConfig(ctx context.Context) (cfg runtime.Config, err error) {
	log := logger.FromContext(ctx).With("path", f.config.File.Path)

	file, err := f.fsys.Open(filepath.Base(f.config.File.Path))
	if err != nil {
		log.ErrorContext(ctx, "Failed to open config file", "error", err)
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		cerr := file.Close()
		if cerr != nil {
			log.ErrorContext(ctx, "Failed to close config file", "error", cerr)
		}
		err = errors.Join(cerr, err)
	}()

	return decodeRuntimeConfig(file)
}

func (f *FileLoader) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case f.done <- struct{}{}:
		log.DebugContext(ctx, "Sending signal to shut down file loader")
	default:
	}
}

// decodeRuntimeConfig parses and validates a YAML runtime configuration.
func decodeRuntimeConfig(r io.Reader) (cfg runtime.Config, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("failed to read runtime configuration: %w", err)
	}

	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse runtime configuration: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid runtime configuration: %w", err)
	}
	return cfg, nil
}
