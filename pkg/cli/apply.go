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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
	"github.com/NVIDIA/kubeconsole/pkg/store"
	"github.com/NVIDIA/kubeconsole/pkg/workflow"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// applyOptions controls the apply flow.
type applyOptions struct {
	// DryRunOnly stops after the server-side dry-run.
	DryRunOnly bool
	// Yes skips the confirmation prompt.
	Yes bool
	// Interactive allows prompting on In.
	Interactive bool
	// Timeout bounds each stage that talks to the cluster.
	Timeout time.Duration

	In  io.Reader
	Out io.Writer
}

// applyManifest runs text through the workflow controller: load the live
// object if there is one, dry-run, show the review, confirm, then apply.
// It returns a nil result without error when the user declines.
func applyManifest(ctx context.Context, st workflow.Store, text string, opts applyOptions) (*workflow.ApplyResult, error) {
	kind, model, err := manifest.Parse(text)
	if err != nil {
		return nil, err
	}
	if model.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "manifest has no metadata.name")
	}
	namespace := model.Namespace
	if namespace == "" {
		namespace = workload.DefaultNamespace
	}
	target := fmt.Sprintf("%s %s/%s", kind, namespace, model.Name)

	c := workflow.New(st)
	defer func() {
		if err := c.Abandon(); err != nil {
			slog.Debug("session not abandoned", "error", err)
		}
	}()

	if err := withTimeout(ctx, opts.Timeout, func(ctx context.Context) error {
		return c.LoadExisting(ctx, kind, namespace, model.Name)
	}); err != nil {
		if !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			return nil, err
		}
		slog.Debug("workload not found, creating", "kind", kind, "namespace", namespace, "name", model.Name)
		if err := c.LoadNew(kind); err != nil {
			return nil, err
		}
	}

	if err := c.SwitchMode(workflow.ModeYAML); err != nil {
		return nil, err
	}
	if err := c.SetText(text); err != nil {
		return nil, err
	}

	var dry *workflow.DryRunResult
	if err := withTimeout(ctx, opts.Timeout, func(ctx context.Context) error {
		var err error
		dry, err = c.DryRun(ctx)
		return err
	}); err != nil {
		if dry != nil {
			fmt.Fprintf(opts.Out, "Dry-run rejected %s: %s\n", target, dry.Message)
		}
		return nil, err
	}
	fmt.Fprintf(opts.Out, "Dry-run passed for %s\n", target)
	if opts.DryRunOnly {
		return nil, nil
	}

	review, err := c.RequestSubmit()
	if err != nil {
		return nil, err
	}
	if review.Diff != nil {
		if !review.Diff.Changed() {
			fmt.Fprintf(opts.Out, "No changes to %s\n", target)
			return nil, c.Cancel()
		}
		printDiff(opts.Out, review.Diff)
	} else {
		fmt.Fprintf(opts.Out, "Creating %s:\n%s", target, review.Text)
	}

	if !opts.Yes {
		if !opts.Interactive {
			_ = c.Cancel()
			return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
				"confirmation required: rerun with --yes when not attached to a terminal")
		}
		ok, err := confirm(opts.In, opts.Out, fmt.Sprintf("Apply %s?", target))
		if err != nil || !ok {
			_ = c.Cancel()
			if err == nil {
				fmt.Fprintln(opts.Out, "Apply cancelled")
			}
			return nil, err
		}
	}

	var res *workflow.ApplyResult
	if err := withTimeout(ctx, opts.Timeout, func(ctx context.Context) error {
		var err error
		res, err = c.Confirm(ctx)
		return err
	}); err != nil {
		if res != nil && res.Message != "" {
			fmt.Fprintf(opts.Out, "Apply rejected %s: %s\n", target, res.Message)
		}
		return nil, err
	}

	verb := "configured"
	if res.Created {
		verb = "created"
	}
	fmt.Fprintf(opts.Out, "%s %s\n", target, verb)
	return res, nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read confirmation: %w", err)
		}
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func applyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "apply",
		EnableShellCompletion: true,
		Usage:                 "Apply a workload manifest after dry-run and review",
		Description: `Apply a workload manifest to a cluster.

The manifest is first validated with a server-side dry-run. When the workload
already exists, the diff against the live object is shown; otherwise the full
manifest is shown. Nothing is persisted until the change is confirmed.

Outside a terminal, or when the manifest is read from stdin, --yes is required.

# Examples

Review and apply a change:
  kcctl apply -f web.yaml

Validate only:
  kcctl apply -f web.yaml --dry-run

Apply to a cluster from a registry file without prompting:
  kcctl apply -f web.yaml --clusters clusters.yaml --cluster staging --yes`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "Manifest file to apply (- for stdin)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Stop after the server-side dry-run",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply without asking for confirmation",
			},
			clustersFlag,
			clusterFlag,
			kubeconfigFlag,
			contextFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			text, err := serializer.ReadSource(path)
			if err != nil {
				return err
			}

			reg, err := clusterRegistry(cmd)
			if err != nil {
				return err
			}
			st, err := store.ForCluster(reg, cmd.String("cluster"))
			if err != nil {
				return err
			}

			_, err = applyManifest(ctx, st, text, applyOptions{
				DryRunOnly:  cmd.Bool("dry-run"),
				Yes:         cmd.Bool("yes"),
				Interactive: path != serializer.StdinPath && term.IsTerminal(int(os.Stdin.Fd())),
				Timeout:     defaults.CLIApplyTimeout,
				In:          os.Stdin,
				Out:         stdout(cmd),
			})
			return err
		},
	}
}
