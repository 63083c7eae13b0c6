// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow state metrics
	workflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_workflow_transitions_total",
			Help: "Total number of apply workflow transitions by target state",
		},
		[]string{"state"},
	)

	// Manifest store metrics
	storeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_workflow_store_calls_total",
			Help: "Total number of manifest store calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	storeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kc_workflow_store_call_duration_seconds",
			Help:    "Manifest store call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func observeStoreCall(op string, start time.Time, success bool, err error) {
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case !success:
		outcome = "rejected"
	}
	storeCallsTotal.WithLabelValues(op, outcome).Inc()
	storeCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
