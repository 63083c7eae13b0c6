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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kubeconsole/pkg/logging"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
)

const (
	name           = "kcctl"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
	}

	clustersFlag = &cli.StringFlag{
		Name:    "clusters",
		Usage:   "Path to a cluster registry file (YAML or JSON)",
		Sources: cli.EnvVars("KCCTL_CLUSTERS"),
	}

	clusterFlag = &cli.StringFlag{
		Name:    "cluster",
		Aliases: []string{"c"},
		Usage:   "Cluster ID from the registry (default: first configured cluster)",
		Sources: cli.EnvVars("KCCTL_CLUSTER"),
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file (ignored with --clusters)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}

	contextFlag = &cli.StringFlag{
		Name:  "context",
		Usage: "Kubeconfig context name (ignored with --clusters)",
	}
)

// Command returns the kcctl root command.
func Command() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               version,
		EnableShellCompletion: true,
		Usage:                 "Render, inspect and apply Kubernetes workload manifests",
		Description: fmt.Sprintf(`kcctl - workload manifest console

Version: %s
Commit:  %s
Built:   %s

Renders workload manifests from a form model and parses them back.
Changes reach a cluster only through a dry-run and an explicit confirmation.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			renderCmd(),
			parseCmd(),
			diffCmd(),
			applyCmd(),
			kindsCmd(),
			namespacesCmd(),
			secretsCmd(),
		},
	}
}

// Execute runs the root command with the process arguments. It is called by
// main.main and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Command().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
