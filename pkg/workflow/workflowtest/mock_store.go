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

// Package workflowtest provides test doubles for the workflow package.
package workflowtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/NVIDIA/kubeconsole/pkg/workflow"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// MockStore is a testify mock of workflow.Store.
type MockStore struct {
	mock.Mock
}

var _ workflow.Store = (*MockStore)(nil)

func (m *MockStore) Load(ctx context.Context, kind workload.Kind, namespace, name string) (string, error) {
	args := m.Called(ctx, kind, namespace, name)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Apply(ctx context.Context, text string, dryRun bool) (*workflow.ApplyResult, error) {
	args := m.Called(ctx, text, dryRun)
	var res *workflow.ApplyResult
	if v := args.Get(0); v != nil {
		res = v.(*workflow.ApplyResult)
	}
	return res, args.Error(1)
}
