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

	"github.com/planfold/planfold/pkg/expression"
	"github.com/planfold/planfold/pkg/planner/core"
)

// builderContext carries the mutable state of one traversal: which plan
// produces each column, and the graphs discovered so far. It is created by
// the driver, threaded through the recursion and discarded when the traversal
// returns. It must never be shared between traversals.
type builderContext struct {
	// colSources maps a column unique ID to the plan recorded as its producer.
	colSources map[int64]core.LogicalPlan
	graphs     []*Graph
}

func newBuilderContext() *builderContext {
	return &builderContext{
		colSources: make(map[int64]core.LogicalPlan),
	}
}

func (ctx *builderContext) setColumnSource(col *expression.Column, p core.LogicalPlan) {
	ctx.colSources[col.UniqueID] = p
}

func (ctx *builderContext) hasColumnSource(col *expression.Column) bool {
	_, ok := ctx.colSources[col.UniqueID]
	return ok
}

// columnSource returns the producer of the column. A column without a
// recorded producer means the plan references a value nothing reachable
// produces, which is a fault in the surrounding tree construction.
func (ctx *builderContext) columnSource(col *expression.Column) core.LogicalPlan {
	p, ok := ctx.colSources[col.UniqueID]
	if !ok {
		panic(errors.AssertionFailedf("column %s has no recorded source", col))
	}
	return p
}

// reassignColumnSources redirects every column currently attributed to old so
// that it is attributed to new instead. Used when a resolved group
// representative collapses back into its placeholder, to keep producer
// identities stable across repeated resolution.
func (ctx *builderContext) reassignColumnSources(oldPlan, newPlan core.LogicalPlan) {
	for id, p := range ctx.colSources {
		if p == oldPlan {
			ctx.colSources[id] = newPlan
		}
	}
}

func (ctx *builderContext) addSubGraph(graph *Graph) {
	ctx.graphs = append(ctx.graphs, graph)
}
