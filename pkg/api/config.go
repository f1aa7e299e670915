// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"net"
)

// Config is the configuration of the api server
type Config struct {
	// ListeningAddress is the host:port the server listens on
	ListeningAddress string `yaml:"address" mapstructure:"address"`
	// Tls holds the tls configuration of the server
	Tls TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig configures the tls listener of the api server
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
	KeyPath  string `yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks the listening address and the tls files
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListeningAddress); err != nil {
		return errors.Join(ErrInvalidListeningAddress, err)
	}

	if c.Tls.Enabled && (c.Tls.CertPath == "" || c.Tls.KeyPath == "") {
		return ErrInvalidTLSConfig
	}
	return nil
}
