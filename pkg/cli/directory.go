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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kubeconsole/pkg/store"
)

// directory builds the namespace and secret lister for the selected
// registry. With --accessible, namespaces are limited to those where the
// caller may list deployments.
func directory(cmd *cli.Command) (*store.Directory, error) {
	reg, err := clusterRegistry(cmd)
	if err != nil {
		return nil, err
	}
	var opts []store.DirectoryOption
	if cmd.Bool("accessible") {
		opts = append(opts, store.WithNamespaceFilter(store.NewSelfAccessChecker(reg), "deployments", "list"))
	}
	return store.NewDirectory(reg, opts...), nil
}

func namespacesCmd() *cli.Command {
	return &cli.Command{
		Name:  "namespaces",
		Usage: "List namespaces of a cluster",
		Description: `List the namespaces of a cluster, sorted by name.

# Examples

  kcctl namespaces --clusters clusters.yaml --cluster prod
  kcctl namespaces --accessible --format json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "accessible",
				Usage: "Only list namespaces where deployments can be listed",
			},
			clustersFlag,
			clusterFlag,
			kubeconfigFlag,
			contextFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}
			dir, err := directory(cmd)
			if err != nil {
				return err
			}
			names, err := dir.ListNamespaces(ctx, cmd.String("cluster"))
			if err != nil {
				return err
			}
			return serialize(ctx, cmd, names)
		},
	}
}

func secretsCmd() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "List secret names of a namespace",
		Description: `List the secret names of a namespace, sorted by name. Use --type to
select, for example, image pull secrets.

# Examples

  kcctl secrets -n apps
  kcctl secrets -n apps --type kubernetes.io/dockerconfigjson`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "namespace",
				Aliases:  []string{"n"},
				Required: true,
				Usage:    "Namespace to list secrets of",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Only list secrets of this type",
			},
			clustersFlag,
			clusterFlag,
			kubeconfigFlag,
			contextFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}
			dir, err := directory(cmd)
			if err != nil {
				return err
			}
			names, err := dir.ListSecrets(ctx, cmd.String("cluster"), cmd.String("namespace"), cmd.String("type"))
			if err != nil {
				return err
			}
			return serialize(ctx, cmd, names)
		},
	}
}
