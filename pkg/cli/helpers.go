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
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kubeconsole/pkg/k8s/client"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
)

// parseOutputFormat reads and validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(cmd.String("format"))))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported values: %v)",
			cmd.String("format"), serializer.SupportedFormats())
	}
	return f, nil
}

// serialize writes data to the --output destination in the --format format.
func serialize(ctx context.Context, cmd *cli.Command, data any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, data)
}

// writeText writes raw manifest text to path, or to w when path is empty.
func writeText(w io.Writer, path, text string) error {
	if strings.TrimSpace(path) == "" {
		_, err := io.WriteString(w, text)
		return err
	}
	return serializer.WriteToFile(path, []byte(text))
}

// stdout returns the writer commands print human-readable output to.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// clusterRegistry builds the cluster registry from --clusters, or from
// --kubeconfig and --context when no registry file is given.
func clusterRegistry(cmd *cli.Command) (*client.Registry, error) {
	if path := cmd.String("clusters"); path != "" {
		return client.LoadRegistry(path)
	}
	return client.NewRegistry(client.RegistryConfig{
		Clusters: []client.ClusterConfig{{
			ID:         client.DefaultClusterID,
			Kubeconfig: cmd.String("kubeconfig"),
			Context:    cmd.String("context"),
		}},
	})
}
