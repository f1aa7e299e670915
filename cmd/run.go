// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg/config"
	"github.com/telekom/icmptrace/pkg/monitor"
)

// NewCmdRun creates a new run command
func NewCmdRun() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run icmptrace as a monitor",
		Long: "Periodically traces the targets of the runtime configuration\n" +
			"and serves the results, the metrics and an OpenAPI document.",
		RunE: run,
	}

	flags := cmd.PersistentFlags()
	flags.String("name", "", "DNS name of this instance")
	flags.String("api.address", ":8080", "api: the address the server listens on")
	flags.Bool("api.tls.enabled", false, "api: serve via TLS")
	flags.String("api.tls.certPath", "", "api: path to the TLS certificate")
	flags.String("api.tls.keyPath", "", "api: path to the TLS key")
	flags.String("loader.type", "file", "loader: type of the runtime configuration loader. One of [http, file]")
	flags.Duration("loader.interval", 0, "loader: interval to reload the runtime configuration. 0 loads once")
	flags.String("loader.http.url", "", "loader: http url to fetch the runtime configuration from")
	flags.String("loader.http.token", "", "loader: bearer token for the http loader")
	flags.Duration("loader.http.timeout", 0, "loader: http client timeout")
	flags.Int("loader.http.retry.count", 0, "loader: number of retries of the http loader")
	flags.Duration("loader.http.retry.delay", 0, "loader: initial delay between http loader retries")
	flags.String("loader.file.path", "config.yaml", "loader: path to the runtime configuration file")
	flags.Bool("telemetry.enabled", false, "telemetry: export traces")
	flags.String("telemetry.exporter", "", "telemetry: trace exporter. One of [http, grpc, stdout, noop]")
	flags.String("telemetry.url", "", "telemetry: collector url of the exporter")
	flags.String("telemetry.token", "", "telemetry: bearer token for the collector")
	flags.Bool("telemetry.tls.enabled", false, "telemetry: connect to the collector via TLS")
	flags.String("telemetry.tls.certPath", "", "telemetry: path to the CA certificate of the collector")

	cobra.CheckErr(viper.BindPFlags(flags))
	return cmd
}

// run is the entry point of the run command
func run(cmd *cobra.Command, _ []string) error {
	log := logger.NewLogger()
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.IntoContext(ctx, log)

	if err := cfg.Validate(ctx); err != nil {
		return fmt.Errorf("error while validating the config: %w", err)
	}

	m := monitor.New(cfg)
	log.InfoContext(ctx, "Running icmptrace")
	if err := m.Run(ctx); err != nil {
		return fmt.Errorf("error while running icmptrace: %w", err)
	}
	return nil
}
