// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phrasehub/phrasehub/internal/identity"
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
)

var decisionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "phrasehub_access_decisions_total",
	Help: "Total number of point authorization decisions",
}, []string{"kind", "permission", "decision"})

func recordDecision(kind Kind, perm identity.Permission, decision string) {
	decisionsCounter.WithLabelValues(string(kind), string(perm), decision).Inc()
}
