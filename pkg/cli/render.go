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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/oci"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

const defaultOCITag = "latest"

// rendered is a synthesized manifest and the model it came from.
type rendered struct {
	Kind   workload.Kind
	Model  *workload.Model
	Text   string
	Issues []workload.Issue
}

// FileName is the artifact file name of the manifest, e.g. deployment-web.yaml.
func (r *rendered) FileName() string {
	n := r.Model.Name
	if n == "" {
		n = workload.DefaultName(r.Kind)
	}
	return fmt.Sprintf("%s-%s.yaml", strings.ToLower(string(r.Kind)), n)
}

// renderManifest synthesizes a manifest from a model file, the default model
// of kind, or an overlay of the model onto an existing manifest.
func renderManifest(kindName, modelPath, basePath string) (*rendered, error) {
	var (
		kind workload.Kind
		err  error
	)
	if kindName != "" {
		if kind, err = workload.ParseKind(kindName); err != nil {
			return nil, err
		}
	}

	var model *workload.Model
	if modelPath != "" {
		if model, err = serializer.FromFile[workload.Model](modelPath); err != nil {
			return nil, err
		}
	}

	if basePath == "" {
		if kind == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "--kind is required without --base")
		}
		if model == nil {
			model = workload.NewModel(kind)
		}
		text, err := manifest.Synthesize(kind, model)
		if err != nil {
			return nil, err
		}
		return &rendered{Kind: kind, Model: model, Text: text, Issues: workload.Validate(kind, model)}, nil
	}

	base, err := serializer.ReadSource(basePath)
	if err != nil {
		return nil, err
	}
	baseKind, baseModel, err := manifest.Parse(base)
	if err != nil {
		return nil, err
	}
	if kind != "" && kind != baseKind {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "--kind does not match the base manifest",
			map[string]any{"kind": string(kind), "base": string(baseKind)})
	}
	if model == nil {
		model = baseModel
	}
	text, err := manifest.Overlay(base, model)
	if err != nil {
		return nil, err
	}
	return &rendered{Kind: baseKind, Model: model, Text: text, Issues: workload.Validate(baseKind, model)}, nil
}

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:                  "render",
		EnableShellCompletion: true,
		Usage:                 "Render a workload manifest from a model",
		Description: `Render a Kubernetes manifest for one workload from a model file.

Without --model, the default model of the kind is rendered. With --base, the
model is overlaid onto an existing manifest so that fields the model does not
cover are kept as they are.

Validation issues are logged as warnings; the manifest is still rendered.

# Examples

Render the default Deployment:
  kcctl render --kind deployment

Render a CronJob from a model file into a file:
  kcctl render --kind cronjob --model backup.yaml -o backup-cronjob.yaml

Apply model changes onto a live manifest:
  kubectl get deploy web -o yaml | kcctl render --base - --model web.yaml

Publish the manifest as an OCI artifact:
  kcctl render --kind job --model migrate.yaml -o oci://ghcr.io/acme/manifests:v1`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: fmt.Sprintf("Workload kind (supported values: %v)", workload.Kinds()),
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Path to a workload model file (YAML or JSON)",
			},
			&cli.StringFlag{
				Name:    "base",
				Aliases: []string{"b"},
				Usage:   "Existing manifest to overlay the model onto (- for stdin)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path or OCI target (oci://registry/repository[:tag]); default: stdout",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the OCI registry",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := renderManifest(cmd.String("kind"), cmd.String("model"), cmd.String("base"))
			if err != nil {
				return fmt.Errorf("failed to render manifest: %w", err)
			}
			for _, issue := range r.Issues {
				slog.Warn("validation issue", "field", issue.Field, "message", issue.Message)
			}

			output := cmd.String("output")
			if !oci.IsOCITarget(output) {
				return writeText(stdout(cmd), output, r.Text)
			}

			ref, err := oci.ParseOutputTarget(output)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, defaults.CLIPushTimeout)
			defer cancel()
			res, err := oci.Push(ctx, []oci.File{{Name: r.FileName(), Content: []byte(r.Text)}}, oci.PushOptions{
				Reference:   ref.WithDefaultTag(defaultOCITag),
				PlainHTTP:   cmd.Bool("plain-http"),
				InsecureTLS: cmd.Bool("insecure-tls"),
				Annotations: map[string]string{
					"org.opencontainers.image.title": r.FileName(),
				},
			})
			if err != nil {
				return fmt.Errorf("failed to push manifest: %w", err)
			}
			fmt.Fprintf(stdout(cmd), "Pushed %s@%s\n", res.Reference, res.Digest)
			return nil
		},
	}
}

func kindsCmd() *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "List supported workload kinds",
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			type kindInfo struct {
				Kind       string `json:"kind"`
				APIVersion string `json:"apiVersion"`
				Resource   string `json:"resource"`
			}
			kinds := make([]kindInfo, 0, len(workload.Kinds()))
			for _, k := range workload.Kinds() {
				kinds = append(kinds, kindInfo{
					Kind:       k.String(),
					APIVersion: k.APIVersion(),
					Resource:   k.GroupVersionResource().Resource,
				})
			}
			return serialize(ctx, cmd, kinds)
		},
	}
}
