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

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Store timeouts
		{"StoreLoadTimeout", StoreLoadTimeout, 5 * time.Second, 60 * time.Second},
		{"StoreApplyTimeout", StoreApplyTimeout, 10 * time.Second, 60 * time.Second},
		{"StoreListTimeout", StoreListTimeout, 5 * time.Second, 60 * time.Second},
		{"AccessReviewTimeout", AccessReviewTimeout, 1 * time.Second, 15 * time.Second},

		// Session timeouts
		{"SessionHandlerTimeout", SessionHandlerTimeout, 30 * time.Second, 2 * time.Minute},
		{"SessionIdleTTL", SessionIdleTTL, 5 * time.Minute, 2 * time.Hour},
		{"SessionSweepInterval", SessionSweepInterval, 10 * time.Second, 10 * time.Minute},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 120 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},

		// HTTP client timeouts
		{"HTTPClientTimeout", HTTPClientTimeout, 10 * time.Second, 60 * time.Second},
		{"HTTPConnectTimeout", HTTPConnectTimeout, 1 * time.Second, 15 * time.Second},

		// CLI timeouts
		{"CLIApplyTimeout", CLIApplyTimeout, 30 * time.Second, 10 * time.Minute},
		{"CLIPushTimeout", CLIPushTimeout, 30 * time.Second, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestSessionTimeoutExceedsStoreCalls(t *testing.T) {
	// A session request wraps at most one store call
	if SessionHandlerTimeout <= StoreApplyTimeout {
		t.Errorf("SessionHandlerTimeout (%v) should exceed StoreApplyTimeout (%v)",
			SessionHandlerTimeout, StoreApplyTimeout)
	}
	if SessionHandlerTimeout <= StoreLoadTimeout {
		t.Errorf("SessionHandlerTimeout (%v) should exceed StoreLoadTimeout (%v)",
			SessionHandlerTimeout, StoreLoadTimeout)
	}
	if ServerWriteTimeout < SessionHandlerTimeout {
		t.Errorf("ServerWriteTimeout (%v) should be at least SessionHandlerTimeout (%v)",
			ServerWriteTimeout, SessionHandlerTimeout)
	}
}

func TestSessionSweepFasterThanTTL(t *testing.T) {
	if SessionSweepInterval >= SessionIdleTTL {
		t.Errorf("SessionSweepInterval (%v) should be less than SessionIdleTTL (%v)",
			SessionSweepInterval, SessionIdleTTL)
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	// Read timeout should be shorter than write timeout
	if ServerReadTimeout > ServerWriteTimeout {
		t.Errorf("ServerReadTimeout (%v) should not exceed ServerWriteTimeout (%v)",
			ServerReadTimeout, ServerWriteTimeout)
	}

	// Idle timeout should be longer than write timeout
	if ServerIdleTimeout < ServerWriteTimeout {
		t.Errorf("ServerIdleTimeout (%v) should be at least ServerWriteTimeout (%v)",
			ServerIdleTimeout, ServerWriteTimeout)
	}
}

func TestHTTPClientTimeoutRelationships(t *testing.T) {
	// Connect timeout should be less than total timeout
	if HTTPConnectTimeout >= HTTPClientTimeout {
		t.Errorf("HTTPConnectTimeout (%v) should be less than HTTPClientTimeout (%v)",
			HTTPConnectTimeout, HTTPClientTimeout)
	}

	// TLS handshake timeout should be less than total timeout
	if HTTPTLSHandshakeTimeout >= HTTPClientTimeout {
		t.Errorf("HTTPTLSHandshakeTimeout (%v) should be less than HTTPClientTimeout (%v)",
			HTTPTLSHandshakeTimeout, HTTPClientTimeout)
	}
}
