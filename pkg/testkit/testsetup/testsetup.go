// Copyright 2025 The Planfold Authors.
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

// Package testsetup contains the shared setup for every package's TestMain.
package testsetup

import (
	"fmt"
	"os"

	"github.com/planfold/planfold/pkg/util/logutil"
)

// SetupForCommonTest runs before all the tests. It quiets the global logger
// so test output stays readable.
func SetupForCommonTest() {
	cfg := logutil.NewLogConfig("warn", logutil.DefaultLogFormat)
	if err := logutil.InitLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fail to init logger: %v\n", err)
		os.Exit(1)
	}
}
