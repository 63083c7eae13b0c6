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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// parsedManifest is the output of the parse command.
type parsedManifest struct {
	Kind   workload.Kind    `json:"kind"`
	Model  *workload.Model  `json:"model"`
	Issues []workload.Issue `json:"issues,omitempty"`
}

func parseManifest(text string) (*parsedManifest, error) {
	kind, model, err := manifest.Parse(text)
	if err != nil {
		return nil, err
	}
	return &parsedManifest{
		Kind:   kind,
		Model:  model,
		Issues: workload.Validate(kind, model),
	}, nil
}

func parseCmd() *cli.Command {
	return &cli.Command{
		Name:                  "parse",
		EnableShellCompletion: true,
		Usage:                 "Parse a workload manifest into a model",
		Description: `Parse a Deployment, StatefulSet, DaemonSet, Rollout, Job or CronJob manifest
and print the workload model it describes, along with any validation issues.
The model output can be edited and passed back to render.

# Examples

Parse a live Deployment:
  kubectl get deploy web -o yaml | kcctl parse

Write the model as JSON:
  kcctl parse -f web.yaml --format json -o web-model.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   serializer.StdinPath,
				Usage:   "Manifest file to parse (- for stdin)",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			text, err := serializer.ReadSource(cmd.String("file"))
			if err != nil {
				return err
			}
			parsed, err := parseManifest(text)
			if err != nil {
				return fmt.Errorf("failed to parse manifest: %w", err)
			}
			return serialize(ctx, cmd, parsed)
		},
	}
}
