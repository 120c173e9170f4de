/*
 * Copyright 2026 The License Curator Authors. All rights reserved.
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

// Package metrics provides Prometheus metrics for requests sent to the
// document store.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sw360/license-curator/internal/version"
)

const (
	namespace      = "license_curator"
	operationLabel = "operation"
	methodLabel    = "method"
	outcomeLabel   = "outcome"
	databaseLabel  = "database"
)

// Metrics holds the collectors of one client. Each instance owns a private
// registry so several clients can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	clientVersion          *prometheus.GaugeVec
	storeRequestsTotal     *prometheus.CounterVec
	storeRequestSeconds    *prometheus.HistogramVec
	revisionConflictsTotal *prometheus.CounterVec
	documentsReturnedTotal *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	m := &Metrics{
		registry: reg,
		clientVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "version",
			Help:      "Which version is running. 1 for 'client_version' label with current version.",
		}, []string{"client_version"}),
		storeRequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the document store by outcome.",
		}, []string{databaseLabel, operationLabel, methodLabel, outcomeLabel}),
		storeRequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "request_seconds",
			Help:      "The round-trip time of requests sent to the document store.",
			Buckets:   prometheus.DefBuckets,
		}, []string{databaseLabel, operationLabel}),
		revisionConflictsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "revision_conflicts_total",
			Help:      "Total number of writes rejected because of a stale revision.",
		}, []string{databaseLabel, operationLabel}),
		documentsReturnedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "documents_returned_total",
			Help:      "Total number of documents returned by selector queries.",
		}, []string{databaseLabel}),
	}

	m.clientVersion.With(prometheus.Labels{
		"client_version": version.Version,
	}).Set(1)

	return m, nil
}

// ObserveRequest records the outcome and round-trip time of one request.
// outcome is "ok" or the status string of the error.
func (m *Metrics) ObserveRequest(database, operation, method, outcome string, elapsed time.Duration) {
	m.storeRequestsTotal.With(prometheus.Labels{
		databaseLabel:  database,
		operationLabel: operation,
		methodLabel:    method,
		outcomeLabel:   outcome,
	}).Inc()
	m.storeRequestSeconds.With(prometheus.Labels{
		databaseLabel:  database,
		operationLabel: operation,
	}).Observe(elapsed.Seconds())
}

// AddRevisionConflict counts a write rejected with a stale revision.
func (m *Metrics) AddRevisionConflict(database, operation string) {
	m.revisionConflictsTotal.With(prometheus.Labels{
		databaseLabel:  database,
		operationLabel: operation,
	}).Inc()
}

// AddDocumentsReturned counts documents returned by a selector query.
func (m *Metrics) AddDocumentsReturned(database string, count int) {
	m.documentsReturnedTotal.With(prometheus.Labels{
		databaseLabel: database,
	}).Add(float64(count))
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
