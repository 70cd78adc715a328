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
	"strings"

	"github.com/planfold/planfold/pkg/expression"
)

// Plan type strings used in explain output.
const (
	TypeDataSource     = "DataSource"
	TypeJoin           = "Join"
	TypeSel            = "Selection"
	TypeProj           = "Projection"
	TypeAgg            = "Aggregation"
	TypeLimit          = "Limit"
	TypeGroupReference = "GroupReference"
)

var (
	_ LogicalPlan = &DataSource{}
	_ LogicalPlan = &LogicalJoin{}
	_ LogicalPlan = &LogicalSelection{}
	_ LogicalPlan = &LogicalProjection{}
	_ LogicalPlan = &LogicalAggregation{}
	_ LogicalPlan = &LogicalLimit{}
	_ LogicalPlan = &GroupReference{}
)

// JoinType contains InnerJoin, LeftOuterJoin, RightOuterJoin, SemiJoin,
// AntiSemiJoin, LeftOuterSemiJoin and AntiLeftOuterSemiJoin.
type JoinType int

const (
	// InnerJoin means inner join.
	InnerJoin JoinType = iota
	// LeftOuterJoin means left join.
	LeftOuterJoin
	// RightOuterJoin means right join.
	RightOuterJoin
	// SemiJoin means if row a in table A matches some rows in B, just output a.
	SemiJoin
	// AntiSemiJoin means if row a in table A does not match any row in B, then output a.
	AntiSemiJoin
	// LeftOuterSemiJoin means if row a in table A matches some rows in B, output (a, true), otherwise, output (a, false).
	LeftOuterSemiJoin
	// AntiLeftOuterSemiJoin means if row a in table A matches some rows in B, output (a, false), otherwise, output (a, true).
	AntiLeftOuterSemiJoin
)

// String implements fmt.Stringer interface.
func (tp JoinType) String() string {
	switch tp {
	case InnerJoin:
		return "inner join"
	case LeftOuterJoin:
		return "left outer join"
	case RightOuterJoin:
		return "right outer join"
	case SemiJoin:
		return "semi join"
	case AntiSemiJoin:
		return "anti semi join"
	case LeftOuterSemiJoin:
		return "left outer semi join"
	case AntiLeftOuterSemiJoin:
		return "anti left outer semi join"
	}
	return "unsupported join type"
}

// DataSource represents a table scan.
type DataSource struct {
	logicalSchemaProducer

	TableName string
}

// Init initializes DataSource.
func (ds DataSource) Init(alloc *IDAllocator) *DataSource {
	ds.baseLogicalPlan = newBaseLogicalPlan(TypeDataSource, &ds, alloc)
	return &ds
}

// ExplainInfo implements Plan interface.
func (ds *DataSource) ExplainInfo() string {
	return "table:" + ds.TableName
}

// LogicalJoin is the logical join plan.
type LogicalJoin struct {
	logicalSchemaProducer

	JoinType JoinType

	// EqualConditions are the eq functions between a column produced on the
	// left side and a column produced on the right side.
	EqualConditions []*expression.ScalarFunction
	// OtherConditions is the residual join predicate that is not an equality
	// between two columns.
	OtherConditions []expression.Expression
}

// Init initializes LogicalJoin.
func (p LogicalJoin) Init(alloc *IDAllocator) *LogicalJoin {
	p.baseLogicalPlan = newBaseLogicalPlan(TypeJoin, &p, alloc)
	return &p
}

// ExplainInfo implements Plan interface.
func (p *LogicalJoin) ExplainInfo() string {
	var sb strings.Builder
	sb.WriteString(p.JoinType.String())
	if len(p.EqualConditions) > 0 {
		fmt.Fprintf(&sb, ", equal:%v", expression.ScalarFuncs2Exprs(p.EqualConditions))
	}
	if len(p.OtherConditions) > 0 {
		fmt.Fprintf(&sb, ", other cond:%v", p.OtherConditions)
	}
	return sb.String()
}

// LogicalSelection represents a where or having predicate, kept in CNF form.
type LogicalSelection struct {
	baseLogicalPlan

	Conditions []expression.Expression
}

// Init initializes LogicalSelection.
func (p LogicalSelection) Init(alloc *IDAllocator) *LogicalSelection {
	p.baseLogicalPlan = newBaseLogicalPlan(TypeSel, &p, alloc)
	return &p
}

// ExplainInfo implements Plan interface.
func (p *LogicalSelection) ExplainInfo() string {
	return fmt.Sprintf("%v", p.Conditions)
}

// LogicalProjection represents a select fields plan.
type LogicalProjection struct {
	logicalSchemaProducer

	// Exprs[i] produces the value of Schema().Columns[i].
	Exprs []expression.Expression
}

// Init initializes LogicalProjection.
func (p LogicalProjection) Init(alloc *IDAllocator) *LogicalProjection {
	p.baseLogicalPlan = newBaseLogicalPlan(TypeProj, &p, alloc)
	return &p
}

// ExplainInfo implements Plan interface.
func (p *LogicalProjection) ExplainInfo() string {
	return fmt.Sprintf("%v", p.Exprs)
}

// IsIdentity reports whether this projection only passes its input columns
// through, possibly under new display names. Each expression must be a bare
// column reference carrying the same unique ID as the output column it
// produces, so the projection performs no computation and introduces no new
// value.
func (p *LogicalProjection) IsIdentity() bool {
	if len(p.Exprs) != p.Schema().Len() {
		return false
	}
	for i, expr := range p.Exprs {
		col, ok := expr.(*expression.Column)
		if !ok {
			return false
		}
		if !col.EqualColumn(p.Schema().Columns[i]) {
			return false
		}
	}
	return true
}

// AssignmentMap returns the output column ID to expression mapping of this
// projection.
func (p *LogicalProjection) AssignmentMap() map[int64]expression.Expression {
	assignments := make(map[int64]expression.Expression, len(p.Exprs))
	for i, col := range p.Schema().Columns {
		assignments[col.UniqueID] = p.Exprs[i]
	}
	return assignments
}

// LogicalAggregation represents an aggregate plan.
type LogicalAggregation struct {
	logicalSchemaProducer

	GroupByItems []expression.Expression
}

// Init initializes LogicalAggregation.
func (la LogicalAggregation) Init(alloc *IDAllocator) *LogicalAggregation {
	la.baseLogicalPlan = newBaseLogicalPlan(TypeAgg, &la, alloc)
	return &la
}

// ExplainInfo implements Plan interface.
func (la *LogicalAggregation) ExplainInfo() string {
	return fmt.Sprintf("group by:%v", la.GroupByItems)
}

// LogicalLimit represents offset and limit plan.
type LogicalLimit struct {
	baseLogicalPlan

	Offset uint64
	Count  uint64
}

// Init initializes LogicalLimit.
func (p LogicalLimit) Init(alloc *IDAllocator) *LogicalLimit {
	p.baseLogicalPlan = newBaseLogicalPlan(TypeLimit, &p, alloc)
	return &p
}

// ExplainInfo implements Plan interface.
func (p *LogicalLimit) ExplainInfo() string {
	return fmt.Sprintf("offset:%v, count:%v", p.Offset, p.Count)
}

// GroupReference is a leaf placeholder standing for an equivalence group of
// interchangeable plans kept in a memo. It must be resolved to the group's
// current representative before the subtree below it can be inspected.
type GroupReference struct {
	logicalSchemaProducer

	GroupID int
}

// Init initializes GroupReference.
func (p GroupReference) Init(alloc *IDAllocator) *GroupReference {
	p.baseLogicalPlan = newBaseLogicalPlan(TypeGroupReference, &p, alloc)
	return &p
}

// ExplainInfo implements Plan interface.
func (p *GroupReference) ExplainInfo() string {
	return fmt.Sprintf("group:%d", p.GroupID)
}
