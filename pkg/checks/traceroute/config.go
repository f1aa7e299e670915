// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"time"

	"github.com/telekom/icmptrace/internal/helper"
	"github.com/telekom/icmptrace/internal/traceroute"
	"github.com/telekom/icmptrace/pkg/checks"
)

const (
	// maxTTLLimit is the largest TTL an IPv4 header can carry plus one.
	maxTTLLimit = 256
	// maxRetries bounds the number of retries of a failed run.
	maxRetries = 5
)

// Config is the configuration for the traceroute check
type Config struct {
	// Targets is a list of targets to traceroute to.
	Targets []traceroute.Target `json:"targets" yaml:"targets" mapstructure:"targets"`
	// Interval is the interval at which to run the traceroute check.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	// Retry configures how often a run that failed fatally is repeated.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
	// Options are the options for the traceroute check.
	traceroute.Options `json:",inline" yaml:",inline" mapstructure:",squash"`
}

func (c *Config) For() string {
	return CheckName
}

func (c *Config) Validate() (err error) {
	if c.Interval <= 0 {
		err = errors.Join(err, checks.ErrInvalidConfig{CheckName: CheckName, Field: "traceroute.interval", Reason: "must be greater than 0"})
	}

	if c.Timeout < 0 {
		err = errors.Join(err, checks.ErrInvalidConfig{CheckName: CheckName, Field: "traceroute.timeout", Reason: "must not be negative"})
	}

	if c.MaxTTL < 0 || c.MaxTTL > maxTTLLimit {
		err = errors.Join(err, checks.ErrInvalidConfig{
			CheckName: CheckName,
			Field:     "traceroute.maxHops",
			Reason:    fmt.Sprintf("must be between 0 and %d", maxTTLLimit),
		})
	}

	if c.Retry.Count < 0 || c.Retry.Count > maxRetries {
		err = errors.Join(err, checks.ErrInvalidConfig{
			CheckName: CheckName,
			Field:     "traceroute.retry.count",
			Reason:    fmt.Sprintf("must be between 0 and %d", maxRetries),
		})
	}

	for i, t := range c.Targets {
		if tErr := t.Validate(); tErr != nil {
			err = errors.Join(err, checks.ErrInvalidConfig{
				CheckName: CheckName,
				Field:     fmt.Sprintf("traceroute.targets[%d].address", i),
				Reason:    tErr.Error(),
			})
		}
	}
	return err
}
