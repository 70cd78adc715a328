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
	"fmt"
	"reflect"
)

// Constant stands for a literal value. The value is kept opaque, nothing in
// this library evaluates it.
type Constant struct {
	Value any
}

// NewConstant creates a Constant holding the given value.
func NewConstant(value any) *Constant {
	return &Constant{Value: value}
}

// String implements fmt.Stringer interface.
func (c *Constant) String() string {
	return fmt.Sprintf("%v", c.Value)
}

// Clone implements Expression interface.
func (c *Constant) Clone() Expression {
	con := *c
	return &con
}

// Equal implements Expression interface.
func (c *Constant) Equal(expr Expression) bool {
	con, ok := expr.(*Constant)
	if !ok {
		return false
	}
	return reflect.DeepEqual(c.Value, con.Value)
}
