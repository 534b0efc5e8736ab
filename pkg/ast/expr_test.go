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
package ast

import (
	"testing"

	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/stretchr/testify/assert"
)

func TestIntExprString(t *testing.T) {
	n := sym.Intern("WIDTH")
	//
	tests := []struct {
		name     string
		expr     IntExpr
		expected string
	}{
		{"literal", IntLit(5), "5"},
		{"parameter", IntParam(n), "WIDTH"},
		{"add", IntAdd(IntParam(n), IntLit(1)), "WIDTH + 1"},
		{"sub", IntSub(IntParam(n), IntLit(1)), "WIDTH - 1"},
		{"unary neg", IntNeg(IntParam(n)), "-WIDTH"},
		// The right operand of a subtraction is parenthesised when it is
		// itself an operation.
		{"sub of sum", IntSub(IntLit(8), IntAdd(IntLit(1), IntLit(2))), "8 - (1 + 2)"},
		{"sub of leaf", IntSub(IntLit(8), IntLit(1)), "8 - 1"},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.expr.String())
		})
	}
}

func TestBVExprString(t *testing.T) {
	a := sym.Intern("a")
	b := sym.Intern("b")
	bus := sym.Intern("bus")
	//
	tests := []struct {
		name     string
		expr     BVExpr
		expected string
	}{
		{"id", BVId(a), "a"},
		{"const", BVConst(13, 8), "8'd13"},
		{"const with text", BVConstText(13, 8, "8'hD"), "8'hD"},
		{"slice", BVRange(bus, 7, 4), "bus[7:4]"},
		{"index", BVBit(bus, 2), "bus[2:2]"},
		{"concat", BVConcat(BVId(a), BVId(b)), "{a, b}"},
		{"nested concat", BVConcat(BVId(a), BVRange(bus, 3, 0)), "{a, bus[3:0]}"},
		{"sub op", BVSub(BVId(a), BVAdd(BVId(b), BVId(a))), "a - (b + a)"},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.expr.String())
		})
	}
}

func TestMinimalWidth(t *testing.T) {
	assert.Equal(t, uint(1), MinimalWidth(0))
	assert.Equal(t, uint(1), MinimalWidth(1))
	assert.Equal(t, uint(2), MinimalWidth(2))
	assert.Equal(t, uint(4), MinimalWidth(15))
	assert.Equal(t, uint(5), MinimalWidth(16))
	assert.Equal(t, uint(64), MinimalWidth(^uint64(0)))
}

func TestModuleDeclFind(t *testing.T) {
	clk := sym.Intern("find_clk")
	q := sym.Intern("find_q")
	w := sym.Intern("find_w")
	//
	m := &ModuleDecl{
		Name:  sym.Intern("FindMod"),
		Ports: []PortDecl{{Name: clk, Dir: In, Net: Net(0, 0)}, {Name: q, Dir: Out, Net: Net(7, 0)}},
		Wires: []WireDecl{{Name: w, Net: Net(7, 0)}},
	}
	//
	assert.Equal(t, 0, m.FindPortIndex(clk))
	assert.Equal(t, 1, m.FindPortIndex(q))
	assert.Equal(t, -1, m.FindPortIndex(w))
	assert.Equal(t, 0, m.FindWireIndex(w))
	assert.Equal(t, -1, m.FindWireIndex(clk))
}
