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

// Package server provides the HTTP server shared by kubeconsole daemons.
//
// The server owns the listener, system routes and the middleware chain.
// API handlers are supplied by the caller, keyed by ServeMux pattern:
//
//	s := server.New(
//	    server.WithName("kcd"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "POST /v1/sessions": h.Create,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # System Routes
//
//   - GET /        index with name, version, readiness and route list
//   - GET /health  liveness probe, always 200
//   - GET /ready   readiness probe, 503 until the listener is serving
//   - GET /metrics Prometheus exposition
//
// System routes bypass rate limiting.
//
// # Middleware
//
// Every API handler is wrapped, outermost first, with:
//
//   - metrics: kc_http_requests_total, kc_http_request_duration_seconds,
//     kc_http_requests_in_flight and kc_http_response_bytes_total, labeled
//     by route pattern; kc_http_rejected_total counts rate limited and
//     panicking requests
//   - version negotiation from Accept: application/vnd.nvidia.kubeconsole.v1+json
//   - request ID: X-Request-Id is echoed when it is a UUID, generated otherwise
//   - panic recovery, answered with a 500 INTERNAL error
//   - rate limiting with a token bucket (golang.org/x/time/rate), answered
//     with 429 and Retry-After
//   - request logging through log/slog, with the session or cluster ID
//     taken from the path
//
// # Errors
//
// Errors are written as ErrorResponse bodies. WriteErrorFromErr maps
// pkg/errors codes to HTTP status with HTTPStatusFromCode:
//
//	INVALID_REQUEST, MANIFEST_SYNTAX                  400
//	UNAUTHORIZED                                      401
//	NOT_FOUND                                         404
//	METHOD_NOT_ALLOWED                                405
//	INVALID_STATE, BUSY                               409
//	UNSUPPORTED_KIND, DRY_RUN_REJECTED, APPLY_REJECTED 422
//	RATE_LIMIT_EXCEEDED                               429
//	SERVICE_UNAVAILABLE                               503
//	TIMEOUT                                           504
//	anything else                                     500
//
// # Configuration
//
// PORT overrides the listening port (default 8080). SHUTDOWN_TIMEOUT_SECONDS
// overrides the graceful shutdown budget. Timeouts default to the values in
// pkg/defaults.
//
// # Lifecycle
//
// Run installs SIGINT/SIGTERM handling. WithLifecycle hooks run once the
// listener is serving and when shutdown begins; kcd uses them for systemd
// readiness notification.
package server
