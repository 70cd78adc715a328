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
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/planfold/planfold/pkg/expression"
	"github.com/planfold/planfold/pkg/planner/core"
)

// Edge is one direction of an equality join condition between two nodes. The
// source node keys the edge in the graph's adjacency, sourceCol is the column
// it produces and targetCol the column produced by targetNode. The target node
// is referenced, never owned.
type Edge struct {
	targetNode core.LogicalPlan
	sourceCol  *expression.Column
	targetCol  *expression.Column
}

// TargetNode returns the node on the other end of the edge.
func (e *Edge) TargetNode() core.LogicalPlan {
	return e.targetNode
}

// SourceColumn returns the column produced by the node owning the edge.
func (e *Edge) SourceColumn() *expression.Column {
	return e.sourceCol
}

// TargetColumn returns the column produced by the target node.
func (e *Edge) TargetColumn() *expression.Column {
	return e.targetCol
}

// Graph represents a chain of inner joins, where nodes are the plans being
// joined and edges are the equality join conditions between pairs of nodes.
// A Graph is an immutable value: every extension builds a new Graph and the
// receiver is left untouched, so returned graphs can be shared freely.
type Graph struct {
	// nodes in order of their appearance in the plan tree (left, right, parent).
	nodes []core.LogicalPlan
	// edges keyed by the plan ID of the node owning them.
	edges map[int][]*Edge
	// filters are the residual predicates collected while folding selections
	// and join residual conditions into the graph, in encounter order.
	filters []expression.Expression
	// assignments is the rename map of the identity projection folded into the
	// graph, keyed by output column unique ID. Nil when no such projection was
	// seen. At most one map survives: a merge drops the maps of both operands.
	assignments map[int64]expression.Expression
	rootID      int
}

// NewGraph creates a single-node graph over the given plan.
func NewGraph(node core.LogicalPlan) *Graph {
	return &Graph{
		nodes:  []core.LogicalPlan{node},
		edges:  map[int][]*Edge{},
		rootID: node.ID(),
	}
}

// WithFilter returns a copy of the graph with the expression appended to its
// filter list.
func (g *Graph) WithFilter(expr expression.Expression) *Graph {
	ng := *g
	ng.filters = make([]expression.Expression, 0, len(g.filters)+1)
	ng.filters = append(ng.filters, g.filters...)
	ng.filters = append(ng.filters, expr)
	return &ng
}

// WithAssignments returns a copy of the graph carrying the given rename map.
// Any map already present is discarded.
func (g *Graph) WithAssignments(assignments map[int64]expression.Expression) *Graph {
	ng := *g
	ng.assignments = assignments
	return &ng
}

// WithRootID returns a copy of the graph rooted at the given plan ID. The
// root is the node the graph stands for when it is spliced back into a
// larger plan.
func (g *Graph) WithRootID(rootID int) *Graph {
	ng := *g
	ng.rootID = rootID
	return &ng
}

// RootID returns the plan ID the graph is rooted at.
func (g *Graph) RootID() int {
	return g.rootID
}

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0
}

// Size returns the number of nodes in the graph.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// Node returns the node at the given position in traversal order.
func (g *Graph) Node(i int) core.LogicalPlan {
	return g.nodes[i]
}

// Nodes returns the nodes in traversal order.
func (g *Graph) Nodes() []core.LogicalPlan {
	return g.nodes
}

// EdgesOf returns the edges owned by the given node.
func (g *Graph) EdgesOf(node core.LogicalPlan) []*Edge {
	return slices.Clone(g.edges[node.ID()])
}

// Filters returns the residual predicates in encounter order.
func (g *Graph) Filters() []expression.Expression {
	return g.filters
}

// Assignments returns the rename map folded into the graph, or nil.
func (g *Graph) Assignments() map[int64]expression.Expression {
	return g.assignments
}

// isTrivial reports whether the graph carries no structural content and is
// interchangeable with its lone node.
func (g *Graph) isTrivial() bool {
	return len(g.nodes) < 2 && len(g.edges) == 0 && len(g.filters) == 0 && g.assignments == nil
}

// joinWith combines the receiver with another graph across an inner join's
// equality conditions, rooted at newRoot. Node lists, adjacencies and filters
// are concatenated left before right, then one pair of mirrored edges is added
// per equality condition, with each side attributed to the node recorded as
// the producer of its column. The rename maps of both operands do not survive
// the merge.
//
// No node of the other graph may already have edges registered here; a
// violation means the same plan appeared in two graphs, which is a fault in
// the surrounding traversal.
func (g *Graph) joinWith(other *Graph, eqConds []*expression.ScalarFunction, ctx *builderContext, newRoot int) *Graph {
	for _, node := range other.nodes {
		if _, ok := g.edges[node.ID()]; ok {
			panic(errors.AssertionFailedf("node %s appeared in two join graphs", node.ExplainID()))
		}
	}

	nodes := make([]core.LogicalPlan, 0, len(g.nodes)+len(other.nodes))
	nodes = append(nodes, g.nodes...)
	nodes = append(nodes, other.nodes...)

	edges := make(map[int][]*Edge, len(g.edges)+len(other.edges))
	maps.Copy(edges, g.edges)
	maps.Copy(edges, other.edges)

	filters := make([]expression.Expression, 0, len(g.filters)+len(other.filters))
	filters = append(filters, g.filters...)
	filters = append(filters, other.filters...)

	for _, cond := range eqConds {
		leftCol, rightCol := eqConditionColumns(cond)
		if !ctx.hasColumnSource(leftCol) || !ctx.hasColumnSource(rightCol) {
			panic(errors.AssertionFailedf("join condition %s references a column with no recorded source", cond))
		}
		left := ctx.columnSource(leftCol)
		right := ctx.columnSource(rightCol)
		edges[left.ID()] = append(slices.Clone(edges[left.ID()]), &Edge{targetNode: right, sourceCol: leftCol, targetCol: rightCol})
		edges[right.ID()] = append(slices.Clone(edges[right.ID()]), &Edge{targetNode: left, sourceCol: rightCol, targetCol: leftCol})
	}

	return &Graph{
		nodes:   nodes,
		edges:   edges,
		filters: filters,
		rootID:  newRoot,
	}
}

func eqConditionColumns(cond *expression.ScalarFunction) (*expression.Column, *expression.Column) {
	if cond.FuncName != expression.EQ {
		panic(errors.AssertionFailedf("join condition %s is not an equality", cond))
	}
	args := cond.GetArgs()
	leftCol, ok := args[0].(*expression.Column)
	if !ok {
		panic(errors.AssertionFailedf("join condition %s is not between two columns", cond))
	}
	rightCol, ok := args[1].(*expression.Column)
	if !ok {
		panic(errors.AssertionFailedf("join condition %s is not between two columns", cond))
	}
	return leftCol, rightCol
}

// String implements fmt.Stringer interface.
func (g *Graph) String() string {
	var sb strings.Builder
	for _, node := range g.nodes {
		fmt.Fprintf(&sb, "%s = %s\n", node.ExplainID(), node.ExplainInfo())
	}
	for _, node := range g.nodes {
		fmt.Fprintf(&sb, "%s:", node.ExplainID())
		for _, edge := range g.edges[node.ID()] {
			fmt.Fprintf(&sb, " %s", edge.targetNode.ExplainID())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
