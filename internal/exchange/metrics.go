// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phrasehub_import_plans_total",
		Help: "Total number of import plans computed",
	})

	appliesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phrasehub_import_applies_total",
		Help: "Total number of import applies by outcome",
	}, []string{"outcome"})

	exportsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phrasehub_exports_total",
		Help: "Total number of exports produced",
	})
)
