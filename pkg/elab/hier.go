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
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// ScopePath addresses a module within a specialised hierarchy as the
// sequence of child-instance indices from the root.
type ScopePath []uint32

// String renders the path as slash-separated indices, or "<root>" for
// the empty path.
func (p ScopePath) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	//
	segs := make([]string, len(p))
	//
	for i, idx := range p {
		segs[i] = strconv.FormatUint(uint64(idx), 10)
	}
	//
	return strings.Join(segs, "/")
}

// PinKey identifies a port on the module reached by following a scope
// path from some root.
type PinKey struct {
	Scope     ScopePath
	PortIndex uint32
}

// MakePinKey walks the scope path from top and resolves the named port
// on the terminal module.  Failures (index out of range, missing callee,
// unknown port) are reported and yield ok == false.
func MakePinKey(top *ModuleSpec, scope ScopePath, portName sym.Symbol, d *diag.Sink) (PinKey, bool) {
	cur := top
	//
	for depth, idx := range scope {
		if int(idx) >= len(cur.Instances) {
			d.Errorf(diag.ScopeOutOfRange, "scope path index %d out of range at depth %d", idx, depth)
			return PinKey{}, false
		}
		//
		inst := &cur.Instances[idx]
		//
		if inst.Callee == nil {
			d.Errorf(diag.NullCalleeRef, "null callee at depth %d", depth)
			return PinKey{}, false
		}
		//
		cur = inst.Callee
	}
	//
	portIdx := cur.FindPortIndex(portName)
	//
	if portIdx < 0 {
		d.Errorf(diag.UnknownPort, "no port '%s' on module %s", portName, cur.Name)
		return PinKey{}, false
	}
	//
	return PinKey{Scope: slices.Clone(scope), PortIndex: uint32(portIdx)}, true
}

// WalkDepthFirst visits top and then, in declared order, every reachable
// child specialisation, passing each visit the scope path used to reach
// it.  The walk is read-only and revisits a shared specialisation once
// per distinct path.
func WalkDepthFirst(top *ModuleSpec, visit func(ScopePath, *ModuleSpec)) {
	walkRecur(top, nil, visit)
}

func walkRecur(spec *ModuleSpec, scope ScopePath, visit func(ScopePath, *ModuleSpec)) {
	visit(scope, spec)
	//
	for i := range spec.Instances {
		if callee := spec.Instances[i].Callee; callee != nil {
			walkRecur(callee, append(slices.Clone(scope), uint32(i)), visit)
		}
	}
}

// DumpInstanceTree writes the hierarchy below top, with each instance's
// bindings rendered as bit-atom vectors.
func DumpInstanceTree(top *ModuleSpec, w io.Writer) {
	dumpRecur(top, w, nil, 0)
}

func dumpRecur(spec *ModuleSpec, w io.Writer, scope ScopePath, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(w, "%sModule '%s' scope=%s\n", pad, spec.Name, scope)
	//
	if len(spec.Instances) != 0 {
		fmt.Fprintf(w, "%sInstances (%d):\n", strings.Repeat(" ", indent+2), len(spec.Instances))
	}
	//
	for idx := range spec.Instances {
		inst := &spec.Instances[idx]
		//
		calleeName := "<null>"
		//
		if inst.Callee != nil {
			calleeName = inst.Callee.Name.String()
		}
		//
		fmt.Fprintf(w, "%s[%d] %s : %s\n", strings.Repeat(" ", indent+4), idx, inst.Name, calleeName)
		//
		if len(inst.Connections) != 0 {
			fmt.Fprintf(w, "%sConnections:\n", strings.Repeat(" ", indent+6))
			//
			for i := range inst.Connections {
				b := &inst.Connections[i]
				p := &inst.Callee.Ports[b.FormalIndex]
				//
				atoms := make([]string, len(b.Actual))
				for k, a := range b.Actual {
					atoms[k] = a.String()
				}
				//
				fmt.Fprintf(w, "%s%s (%s) <= [%s]\n", strings.Repeat(" ", indent+8),
					p.Name, p.Dir, strings.Join(atoms, ", "))
			}
		}
		//
		if inst.Callee != nil {
			dumpRecur(inst.Callee, w, append(slices.Clone(scope), uint32(idx)), indent+4)
		}
	}
}
