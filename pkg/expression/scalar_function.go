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

package expression

import (
	"strings"

	"github.com/pingcap/errors"
)

// Function names understood by NewFunction.
const (
	EQ       = "eq"
	NE       = "ne"
	LT       = "lt"
	LE       = "le"
	GT       = "gt"
	GE       = "ge"
	LogicAnd = "and"
	LogicOr  = "or"
	UnaryNot = "not"
	Plus     = "plus"
	Minus    = "minus"
	Mul      = "mul"
	Div      = "div"
)

// funcArity maps every known function name to its argument count.
var funcArity = map[string]int{
	EQ:       2,
	NE:       2,
	LT:       2,
	LE:       2,
	GT:       2,
	GE:       2,
	LogicAnd: 2,
	LogicOr:  2,
	UnaryNot: 1,
	Plus:     2,
	Minus:    2,
	Mul:      2,
	Div:      2,
}

// ScalarFunction is the function that returns a value.
type ScalarFunction struct {
	FuncName string
	args     []Expression
}

// NewFunction creates a new scalar function.
func NewFunction(funcName string, args ...Expression) (*ScalarFunction, error) {
	arity, ok := funcArity[funcName]
	if !ok {
		return nil, errors.Errorf("unknown function name %q", funcName)
	}
	if len(args) != arity {
		return nil, errors.Errorf("function %q expects %d arguments, got %d", funcName, arity, len(args))
	}
	funcArgs := make([]Expression, len(args))
	copy(funcArgs, args)
	return &ScalarFunction{
		FuncName: funcName,
		args:     funcArgs,
	}, nil
}

// NewFunctionInternal is similar to NewFunction, but it panics if any error occurs.
func NewFunctionInternal(funcName string, args ...Expression) *ScalarFunction {
	expr, err := NewFunction(funcName, args...)
	if err != nil {
		panic(err)
	}
	return expr
}

// GetArgs gets arguments of function.
func (sf *ScalarFunction) GetArgs() []Expression {
	return sf.args
}

// String implements fmt.Stringer interface.
func (sf *ScalarFunction) String() string {
	var sb strings.Builder
	sb.WriteString(sf.FuncName)
	sb.WriteString("(")
	for i, arg := range sf.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Clone implements Expression interface.
func (sf *ScalarFunction) Clone() Expression {
	newArgs := make([]Expression, 0, len(sf.args))
	for _, arg := range sf.args {
		newArgs = append(newArgs, arg.Clone())
	}
	return &ScalarFunction{
		FuncName: sf.FuncName,
		args:     newArgs,
	}
}

// Equal implements Expression interface.
func (sf *ScalarFunction) Equal(expr Expression) bool {
	fun, ok := expr.(*ScalarFunction)
	if !ok {
		return false
	}
	if sf.FuncName != fun.FuncName || len(sf.args) != len(fun.args) {
		return false
	}
	for i, arg := range sf.args {
		if !arg.Equal(fun.args[i]) {
			return false
		}
	}
	return true
}

// ScalarFuncs2Exprs converts []*ScalarFunction to []Expression.
func ScalarFuncs2Exprs(funcs []*ScalarFunction) []Expression {
	result := make([]Expression, 0, len(funcs))
	for _, fun := range funcs {
		result = append(result, fun)
	}
	return result
}
