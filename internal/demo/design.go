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

// Package demo provides the built-in example design used by the CLI
// commands (there is no surface-syntax parser; declarations are
// constructed in memory).  The design is a byte-swapping leaf module
// instantiated from a generate-heavy top.
package demo

import (
	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// Design returns the demo declaration library and its top module.
//
// Module A has an 8-bit input and output with a nibble-swapping
// continuous assign.  Module Top (parameters DO_EXTRA=1, REPL=3) holds a
// plain instance of A, a gen-if guarded instance and a gen-for
// replicated instance.
func Design() (ast.DeclLibrary, *ast.ModuleDecl) {
	pin := sym.Intern("p_in")
	pout := sym.Intern("p_out")
	//
	a := &ast.ModuleDecl{
		Name: sym.Intern("A"),
		Ports: []ast.PortDecl{
			{Name: pin, Dir: ast.In, Net: ast.Net(7, 0)},
			{Name: pout, Dir: ast.Out, Net: ast.Net(7, 0)},
		},
		Assigns: []ast.AssignDecl{{
			Lhs: ast.BVId(pout),
			Rhs: ast.BVConcat(ast.BVRange(pin, 3, 0), ast.BVRange(pin, 7, 4)),
		}},
	}
	//
	doExtra := sym.Intern("DO_EXTRA")
	repl := sym.Intern("REPL")
	w0 := sym.Intern("w0")
	w1 := sym.Intern("w1")
	w2 := sym.Intern("w2")
	w3 := sym.Intern("w3")
	//
	wires := make([]ast.WireDecl, 0, 4)
	for _, w := range []sym.Symbol{w0, w1, w2, w3} {
		wires = append(wires, ast.WireDecl{Name: w, Net: ast.Net(7, 0)})
	}
	//
	connect := func(in, out sym.Symbol) []ast.ConnDecl {
		return []ast.ConnDecl{
			{Formal: pin, Actual: ast.BVId(in)},
			{Formal: pout, Actual: ast.BVId(out)},
		}
	}
	//
	top := &ast.ModuleDecl{
		Name:          sym.Intern("Top"),
		ParamDefaults: ast.ParamEnv{doExtra: 1, repl: 3},
		Wires:         wires,
		Instances: []ast.InstanceDecl{{
			Name:         sym.Intern("uA"),
			TargetModule: a.Name,
			Conns:        connect(w0, w1),
		}},
		GenItems: []ast.GenItem{
			ast.GenItemIf(ast.GenIfDecl{
				Label: sym.Intern("g_if"),
				Cond:  ast.IntParam(doExtra),
				Then: []ast.GenItem{
					ast.GenItemInstance(ast.InstanceDecl{
						Name:         sym.Intern("uA2"),
						TargetModule: a.Name,
						Conns:        connect(w2, w3),
					}),
				},
			}),
			ast.GenItemFor(ast.GenForDecl{
				Label:   sym.Intern("g_for"),
				LoopVar: sym.Intern("i"),
				Start:   ast.IntLit(0),
				Limit:   ast.IntParam(repl),
				Step:    ast.IntLit(1),
				Body: []ast.GenItem{
					ast.GenItemInstance(ast.InstanceDecl{
						Name:         sym.Intern("U"),
						TargetModule: a.Name,
						Conns:        connect(w0, w1),
					}),
				},
			}),
		},
	}
	//
	declLib := ast.DeclLibrary{}
	declLib.Add(a)
	declLib.Add(top)
	//
	return declLib, top
}
