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
	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/util/diag"
)

// LinkInstances expands the spec's generate constructs and binds every
// resulting instance: the callee is specialised (recursively through the
// library cache) and each connection is width-checked and recorded as a
// bit-atom vector in the parent's scope.  Linking records bindings only;
// it never unites bits across the instance boundary, so the parent's
// connectivity continues to reflect parent-internal aliasing alone.
//
// Unknown modules, unknown ports and width mismatches skip the offending
// instance or connection and are reported on the sink.  The errors
// returned are a cyclic instantiation and, when the library's
// FatalUnknownGenBound knob is set, a generate-for bound that references
// an unbound parameter.
func LinkInstances(spec *ModuleSpec, declLib ast.DeclLibrary, lib *Library, d *diag.Sink) error {
	spec.Instances = nil
	//
	if spec.Decl == nil {
		return nil
	}
	//
	flat, err := expandGeneratesWith(lib.config, spec, spec.Decl, d)
	if err != nil {
		return err
	}
	//
	for i := range flat {
		idecl := &flat[i]
		//
		calleeDecl, ok := declLib.Lookup(idecl.TargetModule)
		if !ok {
			d.Errorf(diag.UnknownModule, "unknown module '%s' for instance %s in module %s",
				idecl.TargetModule, idecl.Name, spec.Name)
			//
			continue
		}
		// Evaluate overrides in the parent's environment.  Overriding a
		// parameter the callee never declared is suspicious but permitted.
		overrides := make(ast.ParamEnv, len(idecl.ParamOverrides))
		//
		for name, expr := range idecl.ParamOverrides {
			if _, declared := calleeDecl.ParamDefaults[name]; !declared {
				d.Warnf(diag.UnknownParameter, "override '%s' is not a parameter of module %s",
					name, calleeDecl.Name)
			}
			//
			overrides[name] = ast.EvalInt(expr, spec.Env, d)
		}
		//
		callee, err := lib.GetOrCreateSpec(calleeDecl, overrides, d)
		if err != nil {
			return err
		}
		//
		inst := Instance{Name: idecl.Name, Callee: callee}
		//
		for _, conn := range idecl.Conns {
			formalIdx := callee.FindPortIndex(conn.Formal)
			//
			if formalIdx < 0 {
				d.Errorf(diag.UnknownPort, "unknown formal port '%s' on instance %s in module %s",
					conn.Formal, idecl.Name, spec.Name)
				//
				continue
			}
			//
			formalWidth := callee.Ports[formalIdx].Width()
			actual := Flatten(conn.Actual, spec, d)
			//
			if uint32(len(actual)) != formalWidth {
				d.Errorf(diag.WidthMismatch,
					"width mismatch binding %s.%s: formal=%d actual=%d (actual=%s)",
					idecl.Name, conn.Formal, formalWidth, len(actual), conn.Actual)
				//
				continue
			}
			//
			inst.Connections = append(inst.Connections, PortBinding{
				FormalIndex: uint32(formalIdx),
				Actual:      actual,
			})
		}
		//
		spec.Instances = append(spec.Instances, inst)
	}
	//
	spec.state = Linked
	//
	return nil
}
