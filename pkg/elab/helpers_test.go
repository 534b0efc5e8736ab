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
package elab

import (
	"testing"

	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/stretchr/testify/require"
)

// port builds a fixed-range port declaration.
func port(name string, dir ast.Direction, msb, lsb int64) ast.PortDecl {
	return ast.PortDecl{Name: sym.Intern(name), Dir: dir, Net: ast.Net(msb, lsb)}
}

// wire builds a fixed-range wire declaration.
func wire(name string, msb, lsb int64) ast.WireDecl {
	return ast.WireDecl{Name: sym.Intern(name), Net: ast.Net(msb, lsb)}
}

// conn builds a connection to the named formal.
func conn(formal string, actual ast.BVExpr) ast.ConnDecl {
	return ast.ConnDecl{Formal: sym.Intern(formal), Actual: actual}
}

// instance builds an instance declaration without parameter overrides.
func instance(name, target string, conns ...ast.ConnDecl) ast.InstanceDecl {
	return ast.InstanceDecl{Name: sym.Intern(name), TargetModule: sym.Intern(target), Conns: conns}
}

// specOf elaborates a standalone module (no instances linked) for
// flattening and connectivity tests.
func specOf(t *testing.T, decl *ast.ModuleDecl, d *diag.Sink) *ModuleSpec {
	t.Helper()
	//
	spec, err := NewLibrary().GetOrCreateSpec(decl, nil, d)
	require.NoError(t, err)
	//
	return spec
}

// byteSwapModule is module A of the end-to-end scenarios: an 8-bit
// passthrough which swaps nibbles via a concatenation of slices.
func byteSwapModule() *ast.ModuleDecl {
	pin := sym.Intern("p_in")
	pout := sym.Intern("p_out")
	//
	return &ast.ModuleDecl{
		Name: sym.Intern("A"),
		Ports: []ast.PortDecl{
			port("p_in", ast.In, 7, 0),
			port("p_out", ast.Out, 7, 0),
		},
		Assigns: []ast.AssignDecl{{
			Lhs: ast.BVId(pout),
			Rhs: ast.BVConcat(ast.BVRange(pin, 3, 0), ast.BVRange(pin, 7, 4)),
		}},
	}
}

// generateTopModule is module Top of the end-to-end scenarios: a plain
// instance, a gen-if guarded instance and a gen-for replicated instance,
// all targeting module A.
func generateTopModule() *ast.ModuleDecl {
	doExtra := sym.Intern("DO_EXTRA")
	repl := sym.Intern("REPL")
	w0 := sym.Intern("w0")
	w1 := sym.Intern("w1")
	w2 := sym.Intern("w2")
	w3 := sym.Intern("w3")
	//
	return &ast.ModuleDecl{
		Name:          sym.Intern("Top"),
		ParamDefaults: ast.ParamEnv{doExtra: 1, repl: 3},
		Wires: []ast.WireDecl{
			wire("w0", 7, 0), wire("w1", 7, 0), wire("w2", 7, 0), wire("w3", 7, 0),
		},
		Instances: []ast.InstanceDecl{
			instance("uA", "A", conn("p_in", ast.BVId(w0)), conn("p_out", ast.BVId(w1))),
		},
		GenItems: []ast.GenItem{
			ast.GenItemIf(ast.GenIfDecl{
				Label: sym.Intern("g_if"),
				Cond:  ast.IntParam(doExtra),
				Then: []ast.GenItem{
					ast.GenItemInstance(instance("uA2", "A",
						conn("p_in", ast.BVId(w2)), conn("p_out", ast.BVId(w3)))),
				},
			}),
			ast.GenItemFor(ast.GenForDecl{
				Label:   sym.Intern("g_for"),
				LoopVar: sym.Intern("i"),
				Start:   ast.IntLit(0),
				Limit:   ast.IntParam(repl),
				Step:    ast.IntLit(1),
				Body: []ast.GenItem{
					ast.GenItemInstance(instance("U", "A",
						conn("p_in", ast.BVId(w0)), conn("p_out", ast.BVId(w1)))),
				},
			}),
		},
	}
}

// scenarioLibrary returns the declaration library of the end-to-end
// scenarios together with its top declaration.
func scenarioLibrary() (ast.DeclLibrary, *ast.ModuleDecl) {
	declLib := ast.DeclLibrary{}
	a := byteSwapModule()
	top := generateTopModule()
	declLib.Add(a)
	declLib.Add(top)
	//
	return declLib, top
}
