// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/icmptrace/internal/helper"
	"github.com/telekom/icmptrace/pkg/api"
	"github.com/telekom/icmptrace/pkg/telemetry"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Name: "icmptrace.example.com",
			Loader: LoaderConfig{
				Type:     "file",
				Interval: time.Minute,
				File:     FileLoaderConfig{Path: "config.yaml"},
			},
			Api: api.Config{ListeningAddress: ":8080"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "default file loader", mutate: func(c *Config) { c.Loader.Type = "" }},
		{
			name: "valid http loader",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
				c.Loader.Http = HttpLoaderConfig{Url: "https://config.example.com/runtime.yaml", RetryCfg: helper.RetryConfig{Count: 3}}
			},
		},
		{
			name:    "invalid name",
			mutate:  func(c *Config) { c.Name = "not a dns name" },
			wantErr: []error{ErrInvalidName},
		},
		{
			name:    "negative loader interval",
			mutate:  func(c *Config) { c.Loader.Interval = -time.Second },
			wantErr: []error{ErrInvalidLoaderInterval},
		},
		{
			name:    "unknown loader type",
			mutate:  func(c *Config) { c.Loader.Type = "s3" },
			wantErr: []error{ErrInvalidLoaderType},
		},
		{
			name:    "missing file path",
			mutate:  func(c *Config) { c.Loader.File.Path = "" },
			wantErr: []error{ErrInvalidLoaderFilePath},
		},
		{
			name: "invalid http url",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
				c.Loader.Http.Url = "not-a-url"
			},
			wantErr: []error{ErrInvalidLoaderHttpURL},
		},
		{
			name: "too many http retries",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
				c.Loader.Http = HttpLoaderConfig{Url: "https://config.example.com", RetryCfg: helper.RetryConfig{Count: 6}}
			},
			wantErr: []error{ErrInvalidLoaderHttpRetryCount},
		},
		{
			name:    "invalid api address",
			mutate:  func(c *Config) { c.Api.ListeningAddress = "8080" },
			wantErr: []error{api.ErrInvalidListeningAddress},
		},
		{
			name: "telemetry is only validated when enabled",
			mutate: func(c *Config) {
				c.Telemetry = telemetry.Config{Exporter: "kafka"}
			},
		},
		{
			name: "multiple errors",
			mutate: func(c *Config) {
				c.Name = ""
				c.Api.ListeningAddress = ""
			},
			wantErr: []error{ErrInvalidName, api.ErrInvalidListeningAddress},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := c.Validate(t.Context())
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}

	t.Run("invalid telemetry", func(t *testing.T) {
		c := valid()
		c.Telemetry = telemetry.Config{Enabled: true, Exporter: telemetry.GRPC}
		assert.Error(t, c.Validate(t.Context()))
	})
}

func TestNewLoader(t *testing.T) {
	assert.IsType(t, &HttpLoader{}, NewLoader(&Config{Loader: LoaderConfig{Type: "http"}}, nil))
	assert.IsType(t, &FileLoader{}, NewLoader(&Config{Loader: LoaderConfig{Type: "file"}}, nil))
	assert.IsType(t, &FileLoader{}, NewLoader(&Config{}, nil))
}
