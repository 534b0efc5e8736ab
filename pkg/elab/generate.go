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
	"strconv"
	"strings"

	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/pkg/errors"
)

// defaultGenLabel substitutes for an absent generate label in
// hierarchical names.
const defaultGenLabel = "gen"

// ExpandGenerates unrolls the declaration's generate items under the
// spec's parameter binding, returning the flat ordered list of instance
// declarations to link.  Plain instances come first, unprefixed and in
// declared order; generate items follow depth-first, with hierarchical
// name prefixes joined by underscores.  The spec's bit map is not
// touched: expansion produces declarations only.
func ExpandGenerates(spec *ModuleSpec, decl *ast.ModuleDecl, d *diag.Sink) []ast.InstanceDecl {
	insts, _ := expandGeneratesWith(DefaultConfig(), spec, decl, d)
	return insts
}

// expandGeneratesWith is ExpandGenerates with explicit knobs.  Under
// FatalUnknownGenBound, a generate-for bound referencing an unbound
// parameter aborts expansion instead of silently producing a zero-trip
// loop.
func expandGeneratesWith(config Config, spec *ModuleSpec, decl *ast.ModuleDecl,
	d *diag.Sink) ([]ast.InstanceDecl, error) {
	x := expander{module: spec.Name, d: d,
		fatalUnknownBound: config.FatalUnknownGenBound}
	//
	for i := range decl.Instances {
		x.emit(decl.Instances[i])
	}
	//
	x.walkItems(decl.GenItems, spec.Env)
	//
	return x.out, x.err
}

// paramsResolvable reports whether every parameter referenced by e is
// bound in env.
func paramsResolvable(e ast.IntExpr, env ast.ParamEnv) bool {
	switch e.Kind {
	case ast.IntParameter:
		_, ok := env[e.Name]
		return ok
	case ast.IntOperation:
		for _, op := range e.Operands {
			if !paramsResolvable(op, env) {
				return false
			}
		}
		//
		return true
	default:
		return true
	}
}

// expander carries the traversal state: the stack of name segments and
// the accumulated output.  Scope environments are threaded through the
// walk explicitly, since gen-for iterations fork them.
type expander struct {
	module sym.Symbol
	d      *diag.Sink
	stack  []string
	out    []ast.InstanceDecl
	//
	fatalUnknownBound bool
	err               error
}

// emit appends an instance, decorating its name with the current prefix.
func (x *expander) emit(inst ast.InstanceDecl) {
	if len(x.stack) != 0 {
		prefixed := strings.Join(x.stack, "_") + "_" + inst.Name.String()
		inst.Name = sym.Intern(prefixed)
	}
	//
	x.out = append(x.out, inst)
}

func (x *expander) walkItems(items []ast.GenItem, env ast.ParamEnv) {
	for i := range items {
		if x.err != nil {
			return
		}
		//
		x.walkItem(items[i], env)
	}
}

func (x *expander) walkItem(item ast.GenItem, env ast.ParamEnv) {
	switch item.Kind {
	case ast.GenInstance:
		x.emit(*item.Inst)
	case ast.GenIf:
		x.walkIf(item.If, env)
	case ast.GenFor:
		x.walkFor(item.For, env)
	case ast.GenCase:
		x.walkCase(item.Case, env)
	}
}

func (x *expander) walkIf(g *ast.GenIfDecl, env ast.ParamEnv) {
	body := g.Then
	//
	if ast.EvalInt(g.Cond, env, x.d) == 0 {
		body = g.Else
	}
	//
	if g.Label.Valid() {
		x.push(g.Label.String())
		defer x.pop()
	}
	//
	x.walkItems(body, env)
}

func (x *expander) walkFor(g *ast.GenForDecl, env ast.ParamEnv) {
	if x.fatalUnknownBound &&
		!(paramsResolvable(g.Start, env) && paramsResolvable(g.Limit, env) && paramsResolvable(g.Step, env)) {
		x.err = errors.Errorf("unknown parameter in gen-for bound in %s", x.module)
		return
	}
	//
	start := ast.EvalInt(g.Start, env, x.d)
	limit := ast.EvalInt(g.Limit, env, x.d)
	step := ast.EvalInt(g.Step, env, x.d)
	//
	if step == 0 {
		x.d.Errorf(diag.ZeroStep, "gen-for step is zero in %s", x.module)
		return
	}
	//
	label := defaultGenLabel
	//
	if g.Label.Valid() {
		label = g.Label.String()
	}
	// The iteration index counts emitted iterations from zero regardless
	// of start value or step size.
	iter := 0
	//
	for i := start; (step > 0 && i < limit) || (step < 0 && i > limit); i += step {
		scoped := env.Clone()
		scoped[g.LoopVar] = i
		//
		x.push(label + "_" + strconv.Itoa(iter))
		x.walkItems(g.Body, scoped)
		x.pop()
		//
		iter++
	}
}

func (x *expander) walkCase(g *ast.GenCaseDecl, env ast.ParamEnv) {
	selector := ast.EvalInt(g.Expr, env, x.d)
	//
	item := x.selectCaseItem(g, selector, env)
	if item == nil {
		return
	}
	//
	label := defaultGenLabel
	//
	if item.Label.Valid() {
		label = item.Label.String()
	}
	//
	x.push(label)
	x.walkItems(item.Body, env)
	x.pop()
}

// selectCaseItem picks the first arm whose choice list contains the
// selector value, falling back to the first default arm.
func (x *expander) selectCaseItem(g *ast.GenCaseDecl, selector int64, env ast.ParamEnv) *ast.GenCaseItem {
	for i := range g.Items {
		for _, choice := range g.Items[i].Choices {
			if ast.EvalInt(choice, env, x.d) == selector {
				return &g.Items[i]
			}
		}
	}
	//
	for i := range g.Items {
		if g.Items[i].IsDefault {
			return &g.Items[i]
		}
	}
	//
	return nil
}

func (x *expander) push(segment string) {
	x.stack = append(x.stack, segment)
}

func (x *expander) pop() {
	x.stack = x.stack[:len(x.stack)-1]
}
