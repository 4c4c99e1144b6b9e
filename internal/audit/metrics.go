// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phrasehub_audit_events_written_total",
		Help: "Total number of audit events appended",
	}, []string{"action"})

	failuresCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phrasehub_audit_write_failures_total",
		Help: "Total number of audit append failures",
	}, []string{"action"})
)

func recordWrite(action Action)   { writesCounter.WithLabelValues(string(action)).Inc() }
func recordFailure(action Action) { failuresCounter.WithLabelValues(string(action)).Inc() }
