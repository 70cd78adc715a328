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

package joingraph

import (
	"github.com/cockroachdb/errors"
	"github.com/pingcap/failpoint"

	"github.com/planfold/planfold/pkg/planner/core"
)

const fpMockUnresolvedGroupReference = "github.com/planfold/planfold/pkg/planner/joingraph/mockUnresolvedGroupReference"

// Lookup resolves GroupReference placeholders to the current representative
// plan of their equivalence group. Resolution must be deterministic for the
// duration of one traversal and free of side effects.
type Lookup interface {
	Resolve(p core.LogicalPlan) core.LogicalPlan
}

type noLookup struct{}

func (noLookup) Resolve(p core.LogicalPlan) core.LogicalPlan {
	return p
}

// NoLookup returns a Lookup that resolves nothing. Under it every
// GroupReference behaves as an ordinary opaque operator.
func NoLookup() Lookup {
	return noLookup{}
}

// builder walks a plan tree depth first and produces one Graph per subtree,
// merging child graphs at inner joins and flushing completed multi-node
// graphs into the context whenever the traversal crosses an operator a join
// graph cannot fold.
//
// In shallow mode the builder does not descend below opaque operators, so it
// only answers what the graph rooted at the starting node looks like and
// discovers no nested graphs.
type builder struct {
	shallow bool
	lookup  Lookup
}

func (b *builder) build(p core.LogicalPlan, ctx *builderContext) *Graph {
	switch x := p.(type) {
	case *core.LogicalJoin:
		return b.buildJoin(x, ctx)
	case *core.LogicalSelection:
		return b.buildSelection(x, ctx)
	case *core.LogicalProjection:
		return b.buildProjection(x, ctx)
	case *core.GroupReference:
		return b.buildGroupReference(x, ctx)
	default:
		return b.buildDefault(p, ctx)
	}
}

// buildDefault handles every operator kind without a specialization. Such an
// operator is a boundary a join graph cannot cross: any multi-node graph built
// below it is complete and gets flushed, and the operator itself becomes the
// producer of all its output columns no matter what is underneath.
func (b *builder) buildDefault(p core.LogicalPlan, ctx *builderContext) *Graph {
	if !b.shallow {
		for _, child := range p.Children() {
			graph := b.build(child, ctx)
			if graph.Size() < 2 {
				continue
			}
			ctx.addSubGraph(graph.WithRootID(child.ID()))
		}
	}

	for _, col := range p.Schema().Columns {
		ctx.setColumnSource(col, p)
	}
	return NewGraph(p)
}

func (b *builder) buildSelection(p *core.LogicalSelection, ctx *builderContext) *Graph {
	graph := b.build(p.Children()[0], ctx)
	for _, cond := range p.Conditions {
		graph = graph.WithFilter(cond)
	}
	return graph
}

func (b *builder) buildJoin(p *core.LogicalJoin, ctx *builderContext) *Graph {
	// Only plain inner joins merge into a graph. Everything else is opaque,
	// though its subtrees are still explored for nested graphs.
	if p.JoinType != core.InnerJoin {
		return b.buildDefault(p, ctx)
	}

	left := b.build(p.Children()[0], ctx)
	right := b.build(p.Children()[1], ctx)

	graph := left.joinWith(right, p.EqualConditions, ctx, p.ID())

	for _, cond := range p.OtherConditions {
		graph = graph.WithFilter(cond)
	}
	return graph
}

func (b *builder) buildProjection(p *core.LogicalProjection, ctx *builderContext) *Graph {
	// A projection that computes anything breaks the column equality analysis
	// downstream, so only pure renames fold into the graph.
	if !p.IsIdentity() {
		return b.buildDefault(p, ctx)
	}
	graph := b.build(p.Children()[0], ctx)
	return graph.WithAssignments(p.AssignmentMap())
}

func (b *builder) buildGroupReference(p *core.GroupReference, ctx *builderContext) *Graph {
	if b.lookup == nil {
		panic(errors.AssertionFailedf("no lookup to resolve %s", p.ExplainID()))
	}
	resolved := b.lookup.Resolve(p)
	// Tests enable this failpoint to force the unresolved path without
	// building a custom Lookup.
	if _, err := failpoint.Eval(fpMockUnresolvedGroupReference); err == nil {
		resolved = p
	}
	if resolved == core.LogicalPlan(p) {
		return b.buildDefault(p, ctx)
	}

	graph := b.build(resolved, ctx)
	if graph.isTrivial() {
		// The representative contributed no structure. Fold it back into the
		// placeholder so the producer identities stay stable no matter which
		// representative a later resolution picks.
		ctx.reassignColumnSources(resolved, p)
		return NewGraph(p)
	}
	return graph
}
