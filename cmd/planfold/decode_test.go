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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planfold/planfold/pkg/expression"
	"github.com/planfold/planfold/pkg/planner/core"
	"github.com/planfold/planfold/pkg/planner/joingraph"
)

func TestDecodeScan(t *testing.T) {
	plan, err := DecodePlan([]byte(`{"op": "scan", "table": "t", "columns": ["a", "b"]}`))
	require.NoError(t, err)

	ds, ok := plan.(*core.DataSource)
	require.True(t, ok)
	require.Equal(t, "t", ds.TableName)
	require.Equal(t, 2, ds.Schema().Len())
	require.Equal(t, "t.a", ds.Schema().Columns[0].OrigName)
	require.Equal(t, "t.b", ds.Schema().Columns[1].OrigName)
}

func TestDecodeJoinBuildsEqualConditions(t *testing.T) {
	plan, err := DecodePlan([]byte(`{
		"op": "join", "joinType": "inner", "on": [["t1.a", "t2.a"]],
		"children": [
			{"op": "scan", "table": "t1", "columns": ["a"]},
			{"op": "scan", "table": "t2", "columns": ["a"]}
		]
	}`))
	require.NoError(t, err)

	join, ok := plan.(*core.LogicalJoin)
	require.True(t, ok)
	require.Equal(t, core.InnerJoin, join.JoinType)
	require.Len(t, join.EqualConditions, 1)
	require.Equal(t, expression.EQ, join.EqualConditions[0].FuncName)
	// The join schema is the concatenation of both children.
	require.Equal(t, 2, join.Schema().Len())

	left := join.EqualConditions[0].GetArgs()[0].(*expression.Column)
	require.True(t, left.EqualColumn(join.Children()[0].Schema().Columns[0]))
}

func TestDecodeProjectKeepsPassThroughIdentity(t *testing.T) {
	plan, err := DecodePlan([]byte(`{
		"op": "project",
		"fields": [
			{"name": "x", "expr": "t.a"},
			{"name": "doubled", "expr": {"func": "mul", "args": ["t.a", 2]}}
		],
		"children": [{"op": "scan", "table": "t", "columns": ["a"]}]
	}`))
	require.NoError(t, err)

	proj, ok := plan.(*core.LogicalProjection)
	require.True(t, ok)
	require.False(t, proj.IsIdentity())

	scanCol := proj.Children()[0].Schema().Columns[0]
	// The renamed field keeps the scanned column's identity under a new name.
	require.True(t, proj.Schema().Columns[0].EqualColumn(scanCol))
	require.Equal(t, "x", proj.Schema().Columns[0].OrigName)
	// The computed field gets a fresh column.
	require.False(t, proj.Schema().Columns[1].EqualColumn(scanCol))
}

func TestDecodeRenameOnlyProjectIsIdentity(t *testing.T) {
	plan, err := DecodePlan([]byte(`{
		"op": "project",
		"fields": [{"name": "x", "expr": "t.a"}, {"name": "y", "expr": "t.b"}],
		"children": [{"op": "scan", "table": "t", "columns": ["a", "b"]}]
	}`))
	require.NoError(t, err)

	proj, ok := plan.(*core.LogicalProjection)
	require.True(t, ok)
	require.True(t, proj.IsIdentity())
}

func TestDecodeAggregateDefaultsOutputToGroupBy(t *testing.T) {
	plan, err := DecodePlan([]byte(`{
		"op": "aggregate", "groupBy": ["t.a"],
		"children": [{"op": "scan", "table": "t", "columns": ["a", "b"]}]
	}`))
	require.NoError(t, err)

	agg, ok := plan.(*core.LogicalAggregation)
	require.True(t, ok)
	require.Len(t, agg.GroupByItems, 1)
	require.Equal(t, 1, agg.Schema().Len())
	require.Equal(t, "t.a", agg.Schema().Columns[0].OrigName)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		err  string
	}{
		{"unknown op", `{"op": "window"}`, `unknown operator "window"`},
		{"scan without table", `{"op": "scan"}`, "scan needs a table name"},
		{
			"scan with children",
			`{"op": "scan", "table": "t", "children": [{"op": "scan", "table": "s"}]}`,
			"cannot have children",
		},
		{
			"duplicate column",
			`{"op": "join", "joinType": "inner", "children": [
				{"op": "scan", "table": "t", "columns": ["a"]},
				{"op": "scan", "table": "t", "columns": ["a"]}
			]}`,
			`column "t.a" defined twice`,
		},
		{
			"unknown join type",
			`{"op": "join", "joinType": "cross", "children": [
				{"op": "scan", "table": "t1", "columns": ["a"]},
				{"op": "scan", "table": "t2", "columns": ["a"]}
			]}`,
			`unknown join type "cross"`,
		},
		{
			"join condition on unknown column",
			`{"op": "join", "joinType": "inner", "on": [["t1.a", "t2.missing"]], "children": [
				{"op": "scan", "table": "t1", "columns": ["a"]},
				{"op": "scan", "table": "t2", "columns": ["a"]}
			]}`,
			`unknown column "t2.missing"`,
		},
		{
			"filter with two children",
			`{"op": "filter", "children": [
				{"op": "scan", "table": "t1", "columns": ["a"]},
				{"op": "scan", "table": "t2", "columns": ["a"]}
			]}`,
			"filter expects one child",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePlan([]byte(tc.in))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestDecodedPlanFeedsGraphConstruction(t *testing.T) {
	plan, err := DecodePlan([]byte(`{
		"op": "join", "joinType": "inner", "on": [["t2.b", "t3.b"]],
		"children": [
			{"op": "join", "joinType": "inner", "on": [["t1.a", "t2.a"]],
			 "children": [
				{"op": "scan", "table": "t1", "columns": ["a"]},
				{"op": "scan", "table": "t2", "columns": ["a", "b"]}
			 ]},
			{"op": "scan", "table": "t3", "columns": ["b"]}
		]
	}`))
	require.NoError(t, err)

	graphs := joingraph.BuildAll(plan)
	require.Len(t, graphs, 1)
	require.Equal(t, 3, graphs[0].Size())
	require.Equal(t, plan.ID(), graphs[0].RootID())
}

func TestExplainCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"explain", "testdata/chain.json"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "graph #0")
	require.Contains(t, out.String(), "3 nodes")
	require.Contains(t, out.String(), "filters:")
}

func TestExplainCommandWithoutJoins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"op": "scan", "table": "t", "columns": ["a"]}`), 0o644))

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"explain", path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "no join graph found")
}

func TestExplainCommandRejectsMissingFile(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"explain", "testdata/nosuch.json"})

	require.Error(t, cmd.Execute())
}
