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
	"encoding/json"

	"github.com/pingcap/errors"

	"github.com/planfold/planfold/pkg/expression"
	"github.com/planfold/planfold/pkg/planner/core"
)

// planNode is the JSON description of one logical operator.
type planNode struct {
	Op       string     `json:"op"`
	Children []planNode `json:"children"`

	// scan
	Table   string   `json:"table"`
	Columns []string `json:"columns"`

	// join
	JoinType string      `json:"joinType"`
	On       [][2]string `json:"on"`
	Residual []exprNode  `json:"residual"`

	// filter
	Conditions []exprNode `json:"conditions"`

	// project
	Fields []fieldNode `json:"fields"`

	// aggregate
	GroupBy []string `json:"groupBy"`
	Output  []string `json:"output"`

	// limit
	Count  uint64 `json:"count"`
	Offset uint64 `json:"offset"`
}

// exprNode is a function application. Arguments are either qualified column
// names ("t1.a") or JSON literals.
type exprNode struct {
	Func string            `json:"func"`
	Args []json.RawMessage `json:"args"`
}

// fieldNode is one projected output. Expr is a qualified column name for a
// pass-through field, or an exprNode object for a computed one.
type fieldNode struct {
	Name string          `json:"name"`
	Expr json.RawMessage `json:"expr"`
}

var joinTypes = map[string]core.JoinType{
	"inner":                core.InnerJoin,
	"left outer":           core.LeftOuterJoin,
	"right outer":          core.RightOuterJoin,
	"semi":                 core.SemiJoin,
	"anti semi":            core.AntiSemiJoin,
	"left outer semi":      core.LeftOuterSemiJoin,
	"anti left outer semi": core.AntiLeftOuterSemiJoin,
}

// DecodePlan unmarshals a JSON plan description and builds the logical plan
// tree it describes.
func DecodePlan(data []byte) (core.LogicalPlan, error) {
	var root planNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Trace(err)
	}
	d := &planDecoder{
		alloc:    core.NewIDAllocator(),
		colAlloc: expression.NewColumnIDAllocator(),
		scope:    make(map[string]*expression.Column),
	}
	return d.decode(&root)
}

type planDecoder struct {
	alloc    *core.IDAllocator
	colAlloc *expression.ColumnIDAllocator
	// scope maps qualified column names to the columns built so far.
	scope map[string]*expression.Column
}

func (d *planDecoder) decode(node *planNode) (core.LogicalPlan, error) {
	children := make([]core.LogicalPlan, 0, len(node.Children))
	for i := range node.Children {
		child, err := d.decode(&node.Children[i])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	switch node.Op {
	case "scan":
		if len(children) != 0 {
			return nil, errors.Errorf("scan of %q cannot have children", node.Table)
		}
		return d.decodeScan(node)
	case "join":
		return d.decodeJoin(node, children)
	case "filter":
		return d.decodeFilter(node, children)
	case "project":
		return d.decodeProject(node, children)
	case "aggregate":
		return d.decodeAggregate(node, children)
	case "limit":
		if len(children) != 1 {
			return nil, errors.Errorf("limit expects one child, got %d", len(children))
		}
		limit := core.LogicalLimit{Count: node.Count, Offset: node.Offset}.Init(d.alloc)
		limit.SetChildren(children...)
		return limit, nil
	default:
		return nil, errors.Errorf("unknown operator %q", node.Op)
	}
}

func (d *planDecoder) decodeScan(node *planNode) (core.LogicalPlan, error) {
	if node.Table == "" {
		return nil, errors.New("scan needs a table name")
	}
	cols := make([]*expression.Column, 0, len(node.Columns))
	for _, name := range node.Columns {
		qualified := node.Table + "." + name
		if _, ok := d.scope[qualified]; ok {
			return nil, errors.Errorf("column %q defined twice", qualified)
		}
		col := d.colAlloc.NewColumn(qualified)
		d.scope[qualified] = col
		cols = append(cols, col)
	}
	ds := core.DataSource{TableName: node.Table}.Init(d.alloc)
	ds.SetSchema(expression.NewSchema(cols...))
	return ds, nil
}

func (d *planDecoder) decodeJoin(node *planNode, children []core.LogicalPlan) (core.LogicalPlan, error) {
	if len(children) != 2 {
		return nil, errors.Errorf("join expects two children, got %d", len(children))
	}
	joinType, ok := joinTypes[node.JoinType]
	if !ok {
		return nil, errors.Errorf("unknown join type %q", node.JoinType)
	}
	eqConds := make([]*expression.ScalarFunction, 0, len(node.On))
	for _, pair := range node.On {
		left, err := d.lookupColumn(pair[0])
		if err != nil {
			return nil, err
		}
		right, err := d.lookupColumn(pair[1])
		if err != nil {
			return nil, err
		}
		cond, err := expression.NewFunction(expression.EQ, left, right)
		if err != nil {
			return nil, errors.Trace(err)
		}
		eqConds = append(eqConds, cond)
	}
	residual, err := d.decodeExprs(node.Residual)
	if err != nil {
		return nil, err
	}
	join := core.LogicalJoin{
		JoinType:        joinType,
		EqualConditions: eqConds,
		OtherConditions: residual,
	}.Init(d.alloc)
	join.SetChildren(children...)
	join.SetSchema(expression.MergeSchema(children[0].Schema(), children[1].Schema()))
	return join, nil
}

func (d *planDecoder) decodeFilter(node *planNode, children []core.LogicalPlan) (core.LogicalPlan, error) {
	if len(children) != 1 {
		return nil, errors.Errorf("filter expects one child, got %d", len(children))
	}
	conds, err := d.decodeExprs(node.Conditions)
	if err != nil {
		return nil, err
	}
	sel := core.LogicalSelection{Conditions: conds}.Init(d.alloc)
	sel.SetChildren(children...)
	return sel, nil
}

func (d *planDecoder) decodeProject(node *planNode, children []core.LogicalPlan) (core.LogicalPlan, error) {
	if len(children) != 1 {
		return nil, errors.Errorf("project expects one child, got %d", len(children))
	}
	exprs := make([]expression.Expression, 0, len(node.Fields))
	outCols := make([]*expression.Column, 0, len(node.Fields))
	for _, field := range node.Fields {
		var name string
		if err := json.Unmarshal(field.Expr, &name); err == nil {
			// Pass-through field: the output column keeps the input column's
			// identity, only the display name changes.
			col, err := d.lookupColumn(name)
			if err != nil {
				return nil, err
			}
			out := col.Clone().(*expression.Column)
			out.OrigName = field.Name
			d.scope[field.Name] = out
			exprs = append(exprs, col)
			outCols = append(outCols, out)
			continue
		}
		var fn exprNode
		if err := json.Unmarshal(field.Expr, &fn); err != nil {
			return nil, errors.Annotatef(err, "field %q", field.Name)
		}
		expr, err := d.decodeExpr(&fn)
		if err != nil {
			return nil, err
		}
		out := d.colAlloc.NewColumn(field.Name)
		d.scope[field.Name] = out
		exprs = append(exprs, expr)
		outCols = append(outCols, out)
	}
	proj := core.LogicalProjection{Exprs: exprs}.Init(d.alloc)
	proj.SetChildren(children...)
	proj.SetSchema(expression.NewSchema(outCols...))
	return proj, nil
}

func (d *planDecoder) decodeAggregate(node *planNode, children []core.LogicalPlan) (core.LogicalPlan, error) {
	if len(children) != 1 {
		return nil, errors.Errorf("aggregate expects one child, got %d", len(children))
	}
	groupBy := make([]expression.Expression, 0, len(node.GroupBy))
	for _, name := range node.GroupBy {
		col, err := d.lookupColumn(name)
		if err != nil {
			return nil, err
		}
		groupBy = append(groupBy, col)
	}
	output := node.Output
	if len(output) == 0 {
		output = node.GroupBy
	}
	outCols := make([]*expression.Column, 0, len(output))
	for _, name := range output {
		col, err := d.lookupColumn(name)
		if err != nil {
			return nil, err
		}
		outCols = append(outCols, col)
	}
	agg := core.LogicalAggregation{GroupByItems: groupBy}.Init(d.alloc)
	agg.SetChildren(children...)
	agg.SetSchema(expression.NewSchema(outCols...))
	return agg, nil
}

func (d *planDecoder) decodeExprs(nodes []exprNode) ([]expression.Expression, error) {
	exprs := make([]expression.Expression, 0, len(nodes))
	for i := range nodes {
		expr, err := d.decodeExpr(&nodes[i])
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func (d *planDecoder) decodeExpr(node *exprNode) (expression.Expression, error) {
	args := make([]expression.Expression, 0, len(node.Args))
	for _, raw := range node.Args {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			if col, ok := d.scope[name]; ok {
				args = append(args, col)
				continue
			}
			args = append(args, expression.NewConstant(name))
			continue
		}
		var nested exprNode
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Func != "" {
			arg, err := d.decodeExpr(&nested)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			continue
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, errors.Trace(err)
		}
		args = append(args, expression.NewConstant(value))
	}
	expr, err := expression.NewFunction(node.Func, args...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return expr, nil
}

func (d *planDecoder) lookupColumn(name string) (*expression.Column, error) {
	col, ok := d.scope[name]
	if !ok {
		return nil, errors.Errorf("unknown column %q", name)
	}
	return col, nil
}
