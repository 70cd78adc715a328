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

package core

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/planfold/planfold/pkg/expression"
)

// Plan is the description of an execution flow.
type Plan interface {
	// Schema gets the schema produced by the plan.
	Schema() *expression.Schema

	// ID gets the ID of the plan, stable within one planning session.
	ID() int

	// TP gets the plan type.
	TP() string

	// ExplainID returns the operator id used in explain output.
	ExplainID() string

	// ExplainInfo returns operator information to be explained.
	ExplainInfo() string
}

// LogicalPlan is a tree of logical operators.
// The set of implementations is open: any operator kind the surrounding
// analysis does not understand is treated as an opaque single node.
type LogicalPlan interface {
	Plan

	// Children gets all the children.
	Children() []LogicalPlan

	// SetChildren sets the children for the plan.
	SetChildren(...LogicalPlan)

	// SetChild sets the ith child for the plan.
	SetChild(i int, child LogicalPlan)
}

// IDAllocator allocates plan IDs unique within one planning session.
type IDAllocator struct {
	id atomic.Int64
}

// NewIDAllocator creates an IDAllocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Alloc returns the next plan ID.
func (a *IDAllocator) Alloc() int {
	return int(a.id.Add(1))
}

type basePlan struct {
	tp string
	id int
}

func newBasePlan(tp string, alloc *IDAllocator) basePlan {
	return basePlan{
		tp: tp,
		id: alloc.Alloc(),
	}
}

// ID implements Plan ID interface.
func (p *basePlan) ID() int {
	return p.id
}

// TP implements Plan TP interface.
func (p *basePlan) TP() string {
	return p.tp
}

// ExplainID implements Plan ExplainID interface.
func (p *basePlan) ExplainID() string {
	return fmt.Sprintf("%s_%d", p.tp, p.id)
}

// ExplainInfo implements Plan interface.
func (*basePlan) ExplainInfo() string {
	return "N/A"
}

type baseLogicalPlan struct {
	basePlan

	self     LogicalPlan
	children []LogicalPlan
}

func newBaseLogicalPlan(tp string, self LogicalPlan, alloc *IDAllocator) baseLogicalPlan {
	return baseLogicalPlan{
		basePlan: newBasePlan(tp, alloc),
		self:     self,
	}
}

// Schema implements Plan Schema interface.
// Operators that do not produce their own schema expose the first child's.
func (p *baseLogicalPlan) Schema() *expression.Schema {
	return p.children[0].Schema()
}

// Children implements LogicalPlan Children interface.
func (p *baseLogicalPlan) Children() []LogicalPlan {
	return p.children
}

// SetChildren implements LogicalPlan SetChildren interface.
func (p *baseLogicalPlan) SetChildren(children ...LogicalPlan) {
	p.children = children
}

// SetChild implements LogicalPlan SetChild interface.
func (p *baseLogicalPlan) SetChild(i int, child LogicalPlan) {
	p.children[i] = child
}

// logicalSchemaProducer stores the schema for the logical plans whose schema
// is not inherited from its children.
type logicalSchemaProducer struct {
	baseLogicalPlan

	schema *expression.Schema
}

// Schema implements Plan Schema interface.
func (p *logicalSchemaProducer) Schema() *expression.Schema {
	if p.schema == nil {
		p.schema = expression.NewSchema()
	}
	return p.schema
}

// SetSchema sets the logical plan's schema.
func (p *logicalSchemaProducer) SetSchema(schema *expression.Schema) {
	p.schema = schema
}
