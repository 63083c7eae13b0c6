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

package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	"github.com/NVIDIA/kubeconsole/pkg/k8s/client"
	"github.com/NVIDIA/kubeconsole/pkg/logging"
	"github.com/NVIDIA/kubeconsole/pkg/server"
	"github.com/NVIDIA/kubeconsole/pkg/session"
	"github.com/NVIDIA/kubeconsole/pkg/store"
	"github.com/NVIDIA/kubeconsole/pkg/workflow"
)

const (
	name           = "kcd"
	versionDefault = "dev"

	// EnvClusters names the cluster registry file.
	EnvClusters = "KCD_CLUSTERS"
	// EnvNamespaceFilter enables dropping namespaces where the caller cannot
	// list deployments.
	EnvNamespaceFilter = "KCD_NAMESPACE_FILTER"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/kubeconsole/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
// It configures logging, loads the cluster registry, sets up routes, and
// handles graceful shutdown.
func Serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	reg, err := client.LoadRegistry(os.Getenv(EnvClusters))
	if err != nil {
		slog.Error("failed to load cluster registry", "error", err, "path", os.Getenv(EnvClusters))
		return err
	}
	slog.Info("cluster registry loaded", "clusters", reg.IDs(), "default", reg.Default())

	sessions, r := routes(reg, namespaceFilterEnabled())
	go sessions.Run(ctx, defaults.SessionSweepInterval)

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(r),
		server.WithLifecycle(notify(daemon.SdNotifyReady), notify(daemon.SdNotifyStopping)),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// routes wires the session API to the clusters in reg.
func routes(reg *client.Registry, filterNamespaces bool) (*session.Manager, map[string]http.HandlerFunc) {
	stores := func(cluster string) (workflow.Store, error) {
		s, err := store.ForCluster(reg, cluster)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	sessions := session.NewManager(stores)

	var opts []store.DirectoryOption
	if filterNamespaces {
		opts = append(opts, store.WithNamespaceFilter(store.NewSelfAccessChecker(reg), "deployments", "list"))
	}
	directory := store.NewDirectory(reg, opts...)

	return sessions, session.NewHandler(sessions, directory).Routes()
}

func namespaceFilterEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvNamespaceFilter))
	return err == nil && v
}

// notify reports state to systemd when running under a notify unit.
func notify(state string) func() {
	return func() {
		sent, err := daemon.SdNotify(false, state)
		if err != nil {
			slog.Warn("failed to notify systemd", "state", state, "error", err)
			return
		}
		if sent {
			slog.Debug("notified systemd", "state", state)
		}
	}
}
