// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	instanceInfoMetricName = "icmptrace_instance_info"
	instanceInfoHelp       = "Name and version of this icmptrace monitor. Always 1."
)

// RegisterInstanceInfo registers the icmptrace_instance_info metric on the given registry.
// The gauge is set to 1 with the labels instance_name and version.
func RegisterInstanceInfo(registry prometheus.Registerer, instanceName, version string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: instanceInfoMetricName,
			Help: instanceInfoHelp,
		},
		[]string{"instance_name", "version"},
	)
	info.WithLabelValues(instanceName, version).Set(1)
	return registry.Register(info)
}
