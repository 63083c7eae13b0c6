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

// Package session exposes apply workflow controllers over HTTP.
//
// A Manager owns one workflow.Controller per editing session, keyed by a
// random UUID. Sessions untouched for the idle TTL are abandoned by Sweep,
// which Run calls periodically; a session with a submit in flight is never
// expired.
//
// Handler.Routes returns the API keyed by ServeMux pattern, ready for
// server.WithHandler:
//
//	POST   /v1/sessions                      open a create or edit session
//	GET    /v1/sessions/{id}                 snapshot
//	DELETE /v1/sessions/{id}                 abandon
//	GET    /v1/sessions/{id}/text            manifest a submit would send
//	PUT    /v1/sessions/{id}/text            replace the YAML buffer
//	PUT    /v1/sessions/{id}/model           replace the form model
//	POST   /v1/sessions/{id}/mode            switch between form and yaml
//	POST   /v1/sessions/{id}/dryrun          server-side dry-run
//	POST   /v1/sessions/{id}/submit          freeze text and diff for review
//	POST   /v1/sessions/{id}/confirm         apply the reviewed text
//	POST   /v1/sessions/{id}/cancel          leave review without applying
//	GET    /v1/sessions/{id}/events          snapshots as server-sent events
//	GET    /v1/kinds                         supported workload kinds
//	GET    /v1/clusters/{cluster}/namespaces
//	GET    /v1/clusters/{cluster}/namespaces/{namespace}/secrets?type=
//
// Errors are written with server.WriteErrorFromErr, so workflow codes map to
// HTTP status: INVALID_STATE and BUSY answer 409, rejected dry-runs and
// applies answer 422.
package session
