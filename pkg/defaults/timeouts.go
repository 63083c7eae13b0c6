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

package defaults

import "time"

// Store timeouts for manifest store operations against the cluster.
const (
	// StoreLoadTimeout is the timeout for fetching a live workload object.
	StoreLoadTimeout = 15 * time.Second

	// StoreApplyTimeout is the timeout for a single create or update call,
	// dry-run or real.
	StoreApplyTimeout = 30 * time.Second

	// StoreListTimeout is the timeout for namespace and secret listings.
	StoreListTimeout = 15 * time.Second

	// AccessReviewTimeout bounds each SelfSubjectAccessReview issued by the
	// permission filter.
	AccessReviewTimeout = 5 * time.Second
)

// Session timeouts for the editing session API.
const (
	// SessionHandlerTimeout is the timeout for session requests.
	// Longer than StoreApplyTimeout so store errors reach the caller.
	SessionHandlerTimeout = 45 * time.Second

	// SessionIdleTTL is how long an untouched session is kept before it is abandoned.
	SessionIdleTTL = 30 * time.Minute

	// SessionSweepInterval is how often idle sessions are collected.
	SessionSweepInterval = time.Minute

	// SessionMaxCount caps concurrently open sessions.
	SessionMaxCount = 1000
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 60 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLIApplyTimeout bounds each cluster call of the kcctl apply flow.
	CLIApplyTimeout = 2 * time.Minute

	// CLIPushTimeout bounds publishing a rendered manifest to a registry.
	CLIPushTimeout = 2 * time.Minute
)
