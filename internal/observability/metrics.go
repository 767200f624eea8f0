// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Nippou Contributors

// Package observability records signup and login counters on a private
// Prometheus registry and exports them as a node_exporter textfile.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/nippou/nippou/internal/account"
)

// Metrics holds the account counters. It implements account.Recorder.
type Metrics struct {
	registry     *prometheus.Registry
	SignupsTotal *prometheus.CounterVec
	LoginsTotal  *prometheus.CounterVec
}

// NewMetrics creates the counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SignupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nippou_signups_total",
				Help: "Total number of signup attempts by result",
			},
			[]string{"result"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nippou_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.SignupsTotal, m.LoginsTotal)
	return m
}

// RecordSignup increments the signup counter for result.
func (m *Metrics) RecordSignup(result string) {
	m.SignupsTotal.WithLabelValues(result).Inc()
}

// RecordLogin increments the login counter for result.
func (m *Metrics) RecordLogin(result string) {
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// Registry returns the private registry holding the account counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes the current counters to path in the
// Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return oops.Code("METRICS_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

var _ account.Recorder = (*Metrics)(nil)
