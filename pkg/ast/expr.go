// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package ast defines the in-memory declaration model consumed by the
// elaborator: integer (parameter algebra) and bit-vector expressions as
// closed tagged unions, plus module, port, wire, assignment, instance
// and generate declarations.  Declarations are built directly by
// callers; there is no surface syntax.
package ast

import (
	"fmt"
	"strings"

	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// OpKind identifies an arithmetic operator.  The operator set is closed;
// further operators are reserved but not part of the elaborated model.
type OpKind uint8

const (
	// OpAdd sums all operands.
	OpAdd OpKind = iota
	// OpSub subtracts every operand after the first from the first.  With a
	// single operand it denotes unary negation.
	OpSub
)

// String returns the operator's infix form.
func (k OpKind) String() string {
	if k == OpAdd {
		return "+"
	}
	//
	return "-"
}

// ============================================================================
// Integer expressions
// ============================================================================

// IntExprKind tags the variant held by an IntExpr.
type IntExprKind uint8

const (
	// IntLiteral is a signed 64-bit constant.
	IntLiteral IntExprKind = iota
	// IntParameter is a reference to a parameter binding.
	IntParameter
	// IntOperation applies an operator to one or more operands.
	IntOperation
)

// IntExpr is the parameter-algebra expression: a closed sum of literal,
// parameter reference and add/sub operation.  Values are immutable once
// constructed; the zero value is the literal 0.
type IntExpr struct {
	// Kind determines which of the remaining fields are meaningful.
	Kind IntExprKind
	// Value of an IntLiteral.
	Value int64
	// Name of an IntParameter.
	Name sym.Symbol
	// Op of an IntOperation.
	Op OpKind
	// Operands of an IntOperation.
	Operands []IntExpr
}

// IntLit constructs a literal integer expression.
func IntLit(value int64) IntExpr {
	return IntExpr{Kind: IntLiteral, Value: value}
}

// IntParam constructs a parameter reference.
func IntParam(name sym.Symbol) IntExpr {
	return IntExpr{Kind: IntParameter, Name: name}
}

// IntAdd constructs the sum of the given operands.
func IntAdd(operands ...IntExpr) IntExpr {
	return IntExpr{Kind: IntOperation, Op: OpAdd, Operands: operands}
}

// IntSub constructs the difference of the given operands.  A single
// operand denotes unary negation.
func IntSub(operands ...IntExpr) IntExpr {
	return IntExpr{Kind: IntOperation, Op: OpSub, Operands: operands}
}

// IntNeg constructs the unary negation of the given operand.
func IntNeg(operand IntExpr) IntExpr {
	return IntSub(operand)
}

// String renders this expression in canonical infix form.  Subtraction
// parenthesises any non-leaf operand after the first, preserving left
// associativity in the printed form.
func (e IntExpr) String() string {
	switch e.Kind {
	case IntLiteral:
		return fmt.Sprintf("%d", e.Value)
	case IntParameter:
		return e.Name.String()
	default:
		return e.renderOp()
	}
}

func (e IntExpr) renderOp() string {
	// Unary minus
	if e.Op == OpSub && len(e.Operands) == 1 {
		return "-" + e.Operands[0].String()
	}
	//
	var sb strings.Builder
	//
	for i, op := range e.Operands {
		if i != 0 {
			sb.WriteString(" " + e.Op.String() + " ")
		}
		// Later subtraction operands need parentheses when they are
		// themselves operations.
		if i != 0 && e.Op == OpSub && op.Kind == IntOperation {
			sb.WriteString("(" + op.String() + ")")
		} else {
			sb.WriteString(op.String())
		}
	}
	//
	return sb.String()
}

// ============================================================================
// Bit-vector expressions
// ============================================================================

// BVExprKind tags the variant held by a BVExpr.
type BVExprKind uint8

const (
	// BVIdent names a port or wire.
	BVIdent BVExprKind = iota
	// BVConstant is a literal bit pattern with an explicit width.
	BVConstant
	// BVConcatenation joins parts MSB-first.
	BVConcatenation
	// BVSlicing selects a contiguous absolute bit range of a named base.
	BVSlicing
	// BVOperation applies an arithmetic operator; recognised by the model
	// but not accepted in wiring contexts.
	BVOperation
)

// BVExpr is the signal-level expression: identifier, constant,
// concatenation, slice or (reserved) arithmetic operation.  The zero
// value is the identifier of the invalid symbol, which never resolves.
type BVExpr struct {
	// Kind determines which of the remaining fields are meaningful.
	Kind BVExprKind
	// Name of a BVIdent, or the base identifier of a BVSlicing.
	Name sym.Symbol
	// Value of a BVConstant.
	Value uint64
	// Width of a BVConstant; zero means "infer minimal" for width queries
	// but is rejected by the flattener.
	Width int
	// Text is an optional display form for a BVConstant.
	Text string
	// Parts of a BVConcatenation (MSB-first), or the operands of a
	// BVOperation.
	Parts []BVExpr
	// Msb and Lsb bound a BVSlicing in declared absolute bit indices.
	Msb IntExpr
	Lsb IntExpr
	// Op of a BVOperation.
	Op OpKind
}

// BVId constructs an identifier expression.
func BVId(name sym.Symbol) BVExpr {
	return BVExpr{Kind: BVIdent, Name: name}
}

// BVConst constructs a constant with the given value and declared width.
func BVConst(value uint64, width int) BVExpr {
	return BVExpr{Kind: BVConstant, Value: value, Width: width}
}

// BVConstText constructs a constant carrying an explicit display form.
func BVConstText(value uint64, width int, text string) BVExpr {
	return BVExpr{Kind: BVConstant, Value: value, Width: width, Text: text}
}

// BVConcat constructs a concatenation of the given parts, MSB-first.
func BVConcat(parts ...BVExpr) BVExpr {
	return BVExpr{Kind: BVConcatenation, Parts: parts}
}

// BVSlice constructs a slice of the named base over [msb:lsb].
func BVSlice(base sym.Symbol, msb, lsb IntExpr) BVExpr {
	return BVExpr{Kind: BVSlicing, Name: base, Msb: msb, Lsb: lsb}
}

// BVIndex constructs a single-bit slice of the named base.
func BVIndex(base sym.Symbol, index IntExpr) BVExpr {
	return BVSlice(base, index, index)
}

// BVBit constructs a single-bit slice at a fixed absolute index.
func BVBit(base sym.Symbol, index int64) BVExpr {
	return BVIndex(base, IntLit(index))
}

// BVRange constructs a slice with fixed absolute bounds.
func BVRange(base sym.Symbol, msb, lsb int64) BVExpr {
	return BVSlice(base, IntLit(msb), IntLit(lsb))
}

// BVAdd constructs the (reserved) sum of the given operands.
func BVAdd(operands ...BVExpr) BVExpr {
	return BVExpr{Kind: BVOperation, Op: OpAdd, Parts: operands}
}

// BVSub constructs the (reserved) difference of the given operands.
func BVSub(operands ...BVExpr) BVExpr {
	return BVExpr{Kind: BVOperation, Op: OpSub, Parts: operands}
}

// String renders this expression in canonical printed form: "{a, b, c}"
// for concatenations (MSB first), "base[msb:lsb]" for slices and "w'dV"
// for constants without an explicit display form.
func (e BVExpr) String() string {
	switch e.Kind {
	case BVIdent:
		return e.Name.String()
	case BVConstant:
		if e.Text != "" {
			return e.Text
		}
		//
		return fmt.Sprintf("%d'd%d", e.Width, e.Value)
	case BVConcatenation:
		parts := make([]string, len(e.Parts))
		for i, p := range e.Parts {
			parts[i] = p.String()
		}
		//
		return "{" + strings.Join(parts, ", ") + "}"
	case BVSlicing:
		return fmt.Sprintf("%s[%s:%s]", e.Name.String(), e.Msb.String(), e.Lsb.String())
	default:
		return e.renderOp()
	}
}

func (e BVExpr) renderOp() string {
	if e.Op == OpSub && len(e.Parts) == 1 {
		return "-" + e.Parts[0].String()
	}
	//
	var sb strings.Builder
	//
	for i, op := range e.Parts {
		if i != 0 {
			sb.WriteString(" " + e.Op.String() + " ")
		}
		//
		if i != 0 && e.Op == OpSub && op.Kind == BVOperation {
			sb.WriteString("(" + op.String() + ")")
		} else {
			sb.WriteString(op.String())
		}
	}
	//
	return sb.String()
}

// MinimalWidth returns the number of bits needed to represent the given
// value, with zero occupying a single bit.
func MinimalWidth(value uint64) uint {
	if value == 0 {
		return 1
	}
	//
	var w uint
	//
	for value != 0 {
		value >>= 1
		w++
	}
	//
	return w
}
