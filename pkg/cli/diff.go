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
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
)

// compareFiles diffs two manifest files.
func compareFiles(livePath, proposedPath string) (*manifest.Diff, error) {
	live, err := serializer.ReadSource(livePath)
	if err != nil {
		return nil, err
	}
	proposed, err := serializer.ReadSource(proposedPath)
	if err != nil {
		return nil, err
	}
	return manifest.Compare(live, proposed)
}

// printDiff writes the unified diff and a change summary.
func printDiff(w io.Writer, d *manifest.Diff) {
	if !d.Changed() {
		fmt.Fprintln(w, "No changes")
		return
	}
	fmt.Fprint(w, d.Unified)
	fmt.Fprintf(w, "%d line(s) added, %d line(s) removed\n", d.Added, d.Removed)
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:                  "diff",
		EnableShellCompletion: true,
		Usage:                 "Compare two workload manifests",
		Description: `Compare a live manifest with a proposed one, line by line.

By default a unified diff is printed. With --format, the full diff, including
the side-by-side rows, is written in that format instead.

# Examples

Review a change before applying it:
  kubectl get deploy web -o yaml | kcctl diff --live - --proposed web.yaml

Side-by-side rows as JSON:
  kcctl diff --live old.yaml --proposed new.yaml --format json

Fail when the manifests differ:
  kcctl diff --live old.yaml --proposed new.yaml --exit-code`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "live",
				Aliases:  []string{"l"},
				Required: true,
				Usage:    "Live manifest file (- for stdin)",
			},
			&cli.StringFlag{
				Name:     "proposed",
				Aliases:  []string{"p"},
				Required: true,
				Usage:    "Proposed manifest file (- for stdin)",
			},
			&cli.BoolFlag{
				Name:  "exit-code",
				Usage: "Exit with status 1 when the manifests differ",
			},
			outputFlag,
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   fmt.Sprintf("Structured output format (supported values: %v); default: unified diff", serializer.SupportedFormats()),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.String("live") == serializer.StdinPath && cmd.String("proposed") == serializer.StdinPath {
				return fmt.Errorf("only one of --live and --proposed can read stdin")
			}

			d, err := compareFiles(cmd.String("live"), cmd.String("proposed"))
			if err != nil {
				return fmt.Errorf("failed to compare manifests: %w", err)
			}

			if cmd.IsSet("format") {
				if err := serialize(ctx, cmd, d); err != nil {
					return err
				}
			} else {
				var sb strings.Builder
				printDiff(&sb, d)
				if err := writeText(stdout(cmd), cmd.String("output"), sb.String()); err != nil {
					return err
				}
			}

			if cmd.Bool("exit-code") && d.Changed() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
