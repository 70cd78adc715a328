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

// Package joingraph turns chains of inner joins in a logical plan into graphs
// whose nodes are the joined plans and whose edges are the equality join
// conditions between them, so a join reordering search can treat the chain as
// a graph instead of a fixed tree shape.
package joingraph

import (
	"go.uber.org/zap"

	"github.com/planfold/planfold/pkg/planner/core"
	"github.com/planfold/planfold/pkg/util/logutil"
)

// BuildAll builds all distinct join graphs in the whole plan tree. Graphs are
// returned in traversal order: a graph discovered under an opaque operator
// comes before the graph of any ancestor. A graph's root is the plan node the
// reordered join should replace.
func BuildAll(plan core.LogicalPlan) []*Graph {
	return buildAll(plan, NoLookup())
}

// BuildAllWithLookup is like BuildAll for plans that may contain
// GroupReference placeholders, resolved through the given lookup.
func BuildAllWithLookup(plan core.LogicalPlan, lookup Lookup) []*Graph {
	return buildAll(plan, lookup)
}

func buildAll(plan core.LogicalPlan, lookup Lookup) []*Graph {
	ctx := newBuilderContext()
	b := &builder{shallow: false, lookup: lookup}
	graph := b.build(plan, ctx)
	if graph.Size() > 1 {
		ctx.addSubGraph(graph)
	}
	logutil.BgLogger().Debug("join graph construction finished",
		zap.Int("graphs", len(ctx.graphs)))
	return ctx.graphs
}

// BuildShallow builds only the join graph containing the given plan node,
// without descending below opaque operators or collecting nested graphs.
func BuildShallow(plan core.LogicalPlan, lookup Lookup) *Graph {
	ctx := newBuilderContext()
	b := &builder{shallow: true, lookup: lookup}
	return b.build(plan, ctx)
}
