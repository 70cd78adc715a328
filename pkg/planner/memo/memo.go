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

// Package memo keeps equivalence groups of logically identical plans and
// resolves GroupReference placeholders to the current representative of their
// group.
package memo

import (
	"github.com/cockroachdb/errors"

	"github.com/planfold/planfold/pkg/planner/core"
)

// Group is an equivalence group of logically identical plans. The first
// alternative inserted is the group's current representative.
type Group struct {
	id    int
	exprs []core.LogicalPlan
}

// ID returns the group's id.
func (g *Group) ID() int {
	return g.id
}

// Representative returns the plan a reference to this group resolves to.
func (g *Group) Representative() core.LogicalPlan {
	return g.exprs[0]
}

// Exprs returns all alternatives currently recorded in the group.
func (g *Group) Exprs() []core.LogicalPlan {
	return g.exprs
}

// Insert adds an equivalent alternative to the group.
func (g *Group) Insert(p core.LogicalPlan) {
	g.exprs = append(g.exprs, p)
}

// Memo records equivalence groups by id.
type Memo struct {
	groups  map[int]*Group
	groupID int
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{
		groups: make(map[int]*Group),
	}
}

// InsertGroup creates a new group with the given representative plan.
func (m *Memo) InsertGroup(p core.LogicalPlan) *Group {
	m.groupID++
	g := &Group{
		id:    m.groupID,
		exprs: []core.LogicalPlan{p},
	}
	m.groups[g.id] = g
	return g
}

// GroupByID returns the group with the given id, or nil.
func (m *Memo) GroupByID(id int) *Group {
	return m.groups[id]
}

// NewGroupReference creates a placeholder plan standing for the given group.
// The reference exposes the same schema as the group's representative.
func (m *Memo) NewGroupReference(alloc *core.IDAllocator, g *Group) *core.GroupReference {
	ref := core.GroupReference{GroupID: g.id}.Init(alloc)
	ref.SetSchema(g.Representative().Schema())
	return ref
}

// Resolve returns the current representative of the group a GroupReference
// stands for. Any other plan is returned unchanged. A reference to a group
// the memo does not know is an internal-consistency fault.
func (m *Memo) Resolve(p core.LogicalPlan) core.LogicalPlan {
	ref, ok := p.(*core.GroupReference)
	if !ok {
		return p
	}
	g := m.groups[ref.GroupID]
	if g == nil {
		panic(errors.AssertionFailedf("group %d referenced by %s is not in the memo", ref.GroupID, ref.ExplainID()))
	}
	return g.Representative()
}
