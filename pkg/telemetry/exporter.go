// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol used to export the traces
type Exporter string

const (
	// HTTP is the protocol used to export the traces via HTTP/1.1
	HTTP Exporter = "http"
	// GRPC is the protocol used to export the traces via HTTP/2 (gRPC)
	GRPC Exporter = "grpc"
	// STDOUT is used to export the traces to the standard output
	STDOUT Exporter = "stdout"
	// NOOP is used to disable the export of the traces
	NOOP Exporter = "noop"
)

var exporters = []Exporter{HTTP, GRPC, STDOUT, NOOP, ""}

// String returns the string representation of the exporter
func (e Exporter) String() string {
	return string(e)
}

// Validate validates the exporter
func (e Exporter) Validate() error {
	if !slices.Contains(exporters, e) {
		return fmt.Errorf("unsupported exporter type: %s", e.String())
	}
	return nil
}

// IsExporting returns true if the exporter sends the traces to a collector
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create creates a new span exporter for the configured protocol
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	switch e {
	case HTTP:
		return newHTTPExporter(ctx, config)
	case GRPC:
		return newGRPCExporter(ctx, config)
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case NOOP, "":
		return &noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", e.String())
	}
}

func newHTTPExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(config.Url),
		otlptracehttp.WithHeaders(authHeaders(config.Token)),
	}

	tlsCfg, err := newTLSConfig(config.TLS)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
	} else {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpointURL(config.Url),
		otlptracegrpc.WithHeaders(authHeaders(config.Token)),
	}

	tlsCfg, err := newTLSConfig(config.TLS)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg)))
	} else {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	return otlptracegrpc.New(ctx, opts...)
}

// authHeaders returns the authorization header for the given token
func authHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)}
}

// newTLSConfig returns the client tls configuration or nil if tls is disabled.
// Without a certificate path the system roots are used.
func newTLSConfig(config TLSConfig) (*tls.Config, error) {
	if !config.Enabled {
		return nil, nil //nolint:nilnil // tls disabled
	}

	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if config.CertPath == "" {
		return tlsCfg, nil
	}

	cert, err := os.ReadFile(config.CertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(cert) {
		return nil, errors.New("failed to append certificate to pool")
	}
	tlsCfg.RootCAs = pool
	return tlsCfg, nil
}

var _ sdktrace.SpanExporter = (*noopExporter)(nil)

// noopExporter drops all spans
type noopExporter struct{}

func (e *noopExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error {
	return nil
}

func (e *noopExporter) Shutdown(_ context.Context) error {
	return nil
}
