/*
 * Copyright 2026 The CoEdit Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a metrics collector for monitoring the server.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coedit-team/coedit/internal/version"
)

const (
	namespace = "coedit"
)

// Metrics manages the metric information that the server collects.
type Metrics struct {
	registry      *prometheus.Registry
	serverVersion *prometheus.GaugeVec

	connections       prometheus.Gauge
	broadcastsTotal   prometheus.Counter
	deliveryFailures  prometheus.Counter
	prunedConnections prometheus.Counter
}

// NewMetrics creates an instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		connections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "active",
			Help:      "The number of live client connections.",
		}),
		broadcastsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "broadcasts_total",
			Help:      "The total number of broadcast fan-outs performed.",
		}),
		deliveryFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "delivery_failures_total",
			Help:      "The total number of per-member delivery failures during broadcast.",
		}),
		prunedConnections: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "pruned_total",
			Help:      "The total number of connections pruned after their transport was severed.",
		}),
	}
	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ConnectionAdded increases the active connection gauge.
func (m *Metrics) ConnectionAdded() {
	m.connections.Inc()
}

// ConnectionRemoved decreases the active connection gauge.
func (m *Metrics) ConnectionRemoved() {
	m.connections.Dec()
}

// BroadcastPerformed increases the broadcast counter.
func (m *Metrics) BroadcastPerformed() {
	m.broadcastsTotal.Inc()
}

// DeliveryFailed increases the delivery failure counter.
func (m *Metrics) DeliveryFailed() {
	m.deliveryFailures.Inc()
}

// ConnectionPruned increases the pruned connection counter.
func (m *Metrics) ConnectionPruned() {
	m.prunedConnections.Inc()
}
