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

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons for apiRejected.
const (
	rejectRateLimit = "rate_limit"
	rejectPanic     = "panic"
)

// Routes are labelled by their mux pattern, never by the raw path, so
// session IDs stay out of label values.
var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_http_requests_total",
			Help: "API requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kc_http_request_duration_seconds",
			Help:    "API request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	apiInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kc_http_requests_in_flight",
			Help: "API requests being served, including open session event streams.",
		},
		[]string{"route"},
	)

	apiResponseBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_http_response_bytes_total",
			Help: "Response body bytes written by route.",
		},
		[]string{"route"},
	)

	apiRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_http_rejected_total",
			Help: "API requests answered by middleware instead of a handler.",
		},
		[]string{"reason"},
	)
)

// routeOf returns the pattern that matched r.
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := routeOf(r)
		inFlight := apiInFlight.WithLabelValues(route)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		rec := recordStatus(w)
		next(rec, r)

		apiLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		apiRequests.WithLabelValues(route, strconv.Itoa(rec.Status())).Inc()
		apiResponseBytes.WithLabelValues(route).Add(float64(rec.bytes))
	}
}
