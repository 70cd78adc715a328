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

	"go.uber.org/atomic"
)

// Column represents a column reference. Two columns are considered the same
// value if and only if their UniqueID is the same, regardless of the display
// name, so renaming a column never changes its identity.
type Column struct {
	// UniqueID is the unique id of this column.
	UniqueID int64
	// OrigName keeps the original full qualified name, only used for display.
	OrigName string
}

// String implements fmt.Stringer interface.
func (col *Column) String() string {
	if col.OrigName != "" {
		return col.OrigName
	}
	return fmt.Sprintf("Column#%d", col.UniqueID)
}

// Clone implements Expression interface.
func (col *Column) Clone() Expression {
	newCol := *col
	return &newCol
}

// Equal implements Expression interface.
func (col *Column) Equal(expr Expression) bool {
	newCol, ok := expr.(*Column)
	if !ok {
		return false
	}
	return newCol.UniqueID == col.UniqueID
}

// EqualColumn checks whether two columns refer to the same value.
func (col *Column) EqualColumn(other *Column) bool {
	return other != nil && col.UniqueID == other.UniqueID
}

// ColumnIDAllocator allocates unique column IDs within one planning session.
type ColumnIDAllocator struct {
	id atomic.Int64
}

// NewColumnIDAllocator creates a ColumnIDAllocator.
func NewColumnIDAllocator() *ColumnIDAllocator {
	return &ColumnIDAllocator{}
}

// NewColumn creates a column with a fresh unique ID.
func (a *ColumnIDAllocator) NewColumn(origName string) *Column {
	return &Column{
		UniqueID: a.id.Add(1),
		OrigName: origName,
	}
}
