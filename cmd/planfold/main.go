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

package main

import (
	"fmt"
	"os"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planfold/planfold/pkg/planner/joingraph"
	"github.com/planfold/planfold/pkg/util/logutil"
)

var logLevel string

// NewRootCommand builds the planfold command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "planfold",
		Short:        "planfold prints the join graphs hidden in a logical plan",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logutil.InitLogger(logutil.NewLogConfig(logLevel, logutil.DefaultLogFormat))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logutil.DefaultLogLevel, "log level: debug, info, warn, error")
	rootCmd.AddCommand(newExplainCommand())
	return rootCmd
}

func newExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <plan.json>",
		Short: "build every join graph in a JSON plan description and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Trace(err)
			}
			plan, err := DecodePlan(data)
			if err != nil {
				return errors.Annotatef(err, "decode plan %s", args[0])
			}
			graphs := joingraph.BuildAll(plan)
			if len(graphs) == 0 {
				cmd.Println("no join graph found")
				return nil
			}
			for i, graph := range graphs {
				cmd.Printf("graph #%d (root %d, %d nodes):\n%s", i, graph.RootID(), graph.Size(), graph)
				if filters := graph.Filters(); len(filters) > 0 {
					cmd.Printf("filters: %v\n", filters)
				}
			}
			return nil
		},
	}
}

func main() {
	rootCmd := NewRootCommand()
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		log.Error("planfold failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
