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
	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// Direction of a port.
type Direction uint8

const (
	// In marks an input port.
	In Direction = iota
	// Out marks an output port.
	Out
	// InOut marks a bidirectional port.
	InOut
)

// String returns the direction's display name.
func (d Direction) String() string {
	switch d {
	case In:
		return "In"
	case Out:
		return "Out"
	case InOut:
		return "InOut"
	default:
		return "?"
	}
}

// NetDecl is a declared bit range.  Both bounds are integer expressions
// over the enclosing module's parameters; either orientation (ascending
// or descending) is permitted.
type NetDecl struct {
	Msb IntExpr
	Lsb IntExpr
}

// Net constructs a range with fixed bounds.
func Net(msb, lsb int64) NetDecl {
	return NetDecl{Msb: IntLit(msb), Lsb: IntLit(lsb)}
}

// PortDecl declares a named, directed net on a module boundary.
type PortDecl struct {
	Name sym.Symbol
	Dir  Direction
	Net  NetDecl
}

// WireDecl declares a named internal net.
type WireDecl struct {
	Name sym.Symbol
	Net  NetDecl
}

// AssignDecl is a continuous assignment: a declarative equality between
// two bit-vector expressions, applied bitwise after flattening.
type AssignDecl struct {
	Lhs BVExpr
	Rhs BVExpr
}

// ConnDecl binds a callee formal port to an actual expression evaluated
// in the caller module's scope.
type ConnDecl struct {
	Formal sym.Symbol
	Actual BVExpr
}

// InstanceDecl declares a child module instantiation, possibly with
// parameter overrides.
type InstanceDecl struct {
	Name           sym.Symbol
	TargetModule   sym.Symbol
	ParamOverrides map[sym.Symbol]IntExpr
	Conns          []ConnDecl
}

// ============================================================================
// Generate items
// ============================================================================

// GenItemKind tags the variant held by a GenItem.
type GenItemKind uint8

const (
	// GenInstance wraps a plain instance declaration inside a generate
	// scope.
	GenInstance GenItemKind = iota
	// GenIf selects between two bodies on a parameter condition.
	GenIf
	// GenFor repeats its body over a parameter-bounded loop.
	GenFor
	// GenCase selects one of several bodies by value match.
	GenCase
)

// GenIfDecl is a conditional generate construct.
type GenIfDecl struct {
	Label sym.Symbol
	Cond  IntExpr
	Then  []GenItem
	Else  []GenItem
}

// GenForDecl is an iterative generate construct.  Start, Limit and Step
// are evaluated in the enclosing scope; the loop variable is bound per
// iteration.
type GenForDecl struct {
	Label   sym.Symbol
	LoopVar sym.Symbol
	Start   IntExpr
	Limit   IntExpr
	Step    IntExpr
	Body    []GenItem
}

// GenCaseItem is one arm of a generate-case.
type GenCaseItem struct {
	Choices   []IntExpr
	IsDefault bool
	Label     sym.Symbol
	Body      []GenItem
}

// GenCaseDecl is a value-selected generate construct.  The first arm
// whose choice list contains the selector's value is taken; failing that,
// the default arm, if any.
type GenCaseDecl struct {
	Label sym.Symbol
	Expr  IntExpr
	Items []GenCaseItem
}

// GenItem is one entry of a generate body: an instance or a nested
// generate construct.  Exactly the field selected by Kind is non-nil.
type GenItem struct {
	Kind GenItemKind
	Inst *InstanceDecl
	If   *GenIfDecl
	For  *GenForDecl
	Case *GenCaseDecl
}

// GenItemInstance wraps an instance declaration as a generate item.
func GenItemInstance(inst InstanceDecl) GenItem {
	return GenItem{Kind: GenInstance, Inst: &inst}
}

// GenItemIf wraps a conditional generate as a generate item.
func GenItemIf(g GenIfDecl) GenItem {
	return GenItem{Kind: GenIf, If: &g}
}

// GenItemFor wraps an iterative generate as a generate item.
func GenItemFor(g GenForDecl) GenItem {
	return GenItem{Kind: GenFor, For: &g}
}

// GenItemCase wraps a value-selected generate as a generate item.
func GenItemCase(g GenCaseDecl) GenItem {
	return GenItem{Kind: GenCase, Case: &g}
}

// ============================================================================
// Modules
// ============================================================================

// ModuleDecl is a parameterised module template: the input to
// elaboration.  Declarations are never mutated by the elaborator.
type ModuleDecl struct {
	Name          sym.Symbol
	ParamDefaults ParamEnv
	Ports         []PortDecl
	Wires         []WireDecl
	Assigns       []AssignDecl
	Instances     []InstanceDecl
	GenItems      []GenItem
}

// FindPortIndex returns the index of the named port, or -1.
func (m *ModuleDecl) FindPortIndex(name sym.Symbol) int {
	for i := range m.Ports {
		if m.Ports[i].Name == name {
			return i
		}
	}
	//
	return -1
}

// FindWireIndex returns the index of the named wire, or -1.
func (m *ModuleDecl) FindWireIndex(name sym.Symbol) int {
	for i := range m.Wires {
		if m.Wires[i].Name == name {
			return i
		}
	}
	//
	return -1
}

// DeclLibrary maps module names to their declarations.  It is owned by
// the caller and consulted (read-only) during instance linking.
type DeclLibrary map[sym.Symbol]*ModuleDecl

// Add registers a declaration under its own name.
func (l DeclLibrary) Add(decl *ModuleDecl) {
	l[decl.Name] = decl
}

// Lookup resolves a module name, reporting whether it was found.
func (l DeclLibrary) Lookup(name sym.Symbol) (*ModuleDecl, bool) {
	decl, ok := l[name]
	return decl, ok
}
