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
	"sort"
	"strconv"
	"strings"

	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/net"
	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/pkg/errors"
)

// Config carries the elaboration knobs.  The defaults reproduce the
// standard behaviour; both switches exist because reasonable front ends
// disagree on them.
type Config struct {
	// TieConstRHS records constant right-hand-side bits as tied instead of
	// silently ignoring them.  The tied bits are collected on the library,
	// per spec key (see Library.TiedBits), and still never enter the
	// union-find.
	TieConstRHS bool
	// FatalUnknownGenBound treats an unknown parameter in a generate-for
	// bound as fatal rather than evaluating it to zero (which silently
	// yields a zero-trip loop).
	FatalUnknownGenBound bool
}

// DefaultConfig returns the standard knob settings.
func DefaultConfig() Config {
	return Config{}
}

// TiedBit records a bit whose net is tied to a constant by an assignment.
type TiedBit struct {
	Bit   net.BitId
	Value bool
}

// MakeModuleKey produces the canonical cache key for a specialisation:
// the module name alone when the binding is empty, otherwise
// "name#p1=v1,p2=v2,..." with parameter names in ascending textual order
// and values in decimal.
func MakeModuleKey(name string, env ast.ParamEnv) string {
	if len(env) == 0 {
		return name
	}
	//
	type binding struct {
		name  string
		value int64
	}
	//
	bindings := make([]binding, 0, len(env))
	//
	for s, v := range env {
		bindings = append(bindings, binding{s.String(), v})
	}
	//
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].name < bindings[j].name })
	//
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('#')
	//
	for i, b := range bindings {
		if i != 0 {
			sb.WriteByte(',')
		}
		//
		sb.WriteString(b.name)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatInt(b.value, 10))
	}
	//
	return sb.String()
}

// Library owns every specialisation produced from one elaboration
// universe, keyed canonically.  Child instances point at specs owned by
// the same library, so references stay valid exactly as long as the
// library does.  A library must not be shared between goroutines.
type Library struct {
	config Config
	specs  map[string]*ModuleSpec
	// keys in insertion order, for deterministic iteration.
	keys []string
	// tied bits per spec key, populated only under TieConstRHS.
	tied map[string][]TiedBit
	// linking marks specialisations whose link pass is in progress; a
	// request for one of these is a cyclic instantiation.
	linking map[string]bool
}

// NewLibrary constructs an empty library with default configuration.
func NewLibrary() *Library {
	return NewLibraryWith(DefaultConfig())
}

// NewLibraryWith constructs an empty library with the given knobs.
func NewLibraryWith(config Config) *Library {
	return &Library{
		config:  config,
		specs:   make(map[string]*ModuleSpec),
		tied:    make(map[string][]TiedBit),
		linking: make(map[string]bool),
	}
}

// Size returns the number of cached specialisations.
func (l *Library) Size() int {
	return len(l.specs)
}

// Keys returns the canonical keys in insertion order.
func (l *Library) Keys() []string {
	return l.keys
}

// Lookup resolves a canonical key to its specialisation.
func (l *Library) Lookup(key string) (*ModuleSpec, bool) {
	s, ok := l.specs[key]
	return s, ok
}

// TiedBits returns the constant-tied bits recorded for the given key, if
// the TieConstRHS knob was enabled.
func (l *Library) TiedBits(key string) []TiedBit {
	return l.tied[key]
}

// GetOrCreateSpec returns the specialisation of decl under its defaults
// updated by overrides, building and caching it on first request.  The
// spec is inserted into the library before its assigns are wired, so that
// recursive specialisation during wiring observes the in-progress entry
// rather than recursing forever.
func (l *Library) GetOrCreateSpec(decl *ast.ModuleDecl, overrides ast.ParamEnv, d *diag.Sink) (*ModuleSpec, error) {
	env := decl.ParamDefaults.Clone()
	//
	if env == nil {
		env = ast.ParamEnv{}
	}
	//
	env.Update(overrides)
	//
	key := MakeModuleKey(decl.Name.String(), env)
	// A request for a specialisation whose own link pass is still running
	// is a cyclic instantiation; construction is aborted before anything
	// is inserted into the library.
	if l.linking[key] {
		d.Errorf(diag.CyclicInstantiation, "cyclic instantiation of %s", key)
		return nil, errors.Errorf("cyclic instantiation of %s", key)
	}
	//
	if s, ok := l.specs[key]; ok {
		return s, nil
	}
	//
	spec := buildSpec(decl, env, d)
	// Insert before wiring, deliberately.
	l.specs[key] = spec
	l.keys = append(l.keys, key)
	//
	spec.state = WiringAssigns
	l.wireAssigns(spec, key, d)
	//
	return spec, nil
}

// buildSpec evaluates every declared range under env and allocates the
// bit map.  On return the spec is in state AllocatingBits with its
// reverse map populated and no unions performed.
func buildSpec(decl *ast.ModuleDecl, env ast.ParamEnv, d *diag.Sink) *ModuleSpec {
	spec := &ModuleSpec{
		Name:      decl.Name,
		Decl:      decl,
		Env:       env,
		portIndex: make(map[sym.Symbol]uint32, len(decl.Ports)),
		wireIndex: make(map[sym.Symbol]uint32, len(decl.Wires)),
	}
	//
	portWidths := make([]uint32, len(decl.Ports))
	//
	for i := range decl.Ports {
		p := &decl.Ports[i]
		msb := int32(ast.EvalInt(p.Net.Msb, env, d))
		lsb := int32(ast.EvalInt(p.Net.Lsb, env, d))
		//
		spec.Ports = append(spec.Ports, PortSpec{Name: p.Name, Dir: p.Dir, Msb: msb, Lsb: lsb})
		spec.portIndex[p.Name] = uint32(i)
		portWidths[i] = spec.Ports[i].Width()
	}
	//
	wireWidths := make([]uint32, len(decl.Wires))
	//
	for i := range decl.Wires {
		w := &decl.Wires[i]
		msb := int32(ast.EvalInt(w.Net.Msb, env, d))
		lsb := int32(ast.EvalInt(w.Net.Lsb, env, d))
		//
		spec.Wires = append(spec.Wires, WireSpec{Name: w.Name, Msb: msb, Lsb: lsb})
		spec.wireIndex[w.Name] = uint32(i)
		wireWidths[i] = spec.Wires[i].Width()
	}
	//
	spec.BitMap.Build(portWidths, wireWidths)
	//
	return spec
}

// wireAssigns applies every continuous assignment of the spec's
// declaration, in declared order.  Mismatched widths skip the whole
// assignment; a constant LHS bit skips just that bit; a constant RHS bit
// creates no alias (but is recorded when TieConstRHS is set).
func (l *Library) wireAssigns(spec *ModuleSpec, key string, d *diag.Sink) {
	for i := range spec.Decl.Assigns {
		asg := &spec.Decl.Assigns[i]
		//
		lhs := Flatten(asg.Lhs, spec, d)
		rhs := Flatten(asg.Rhs, spec, d)
		//
		if len(lhs) != len(rhs) {
			d.Errorf(diag.WidthMismatch,
				"assign width mismatch in module %s (lhs=%s width=%d, rhs=%s width=%d)",
				spec.Name, asg.Lhs, len(lhs), asg.Rhs, len(rhs))
			//
			continue
		}
		//
		for k := range lhs {
			lb, rb := lhs[k], rhs[k]
			//
			if !lb.Connectable() {
				d.Errorf(diag.NonAssignableLhs,
					"assign target bit %d of %s is a constant", k, asg.Lhs)
				//
				continue
			}
			//
			if !rb.Connectable() {
				if l.config.TieConstRHS {
					l.tied[key] = append(l.tied[key],
						TiedBit{Bit: atomBitId(spec, lb), Value: rb.Kind == Const1})
				}
				// Constants never enter the union-find.
				continue
			}
			//
			spec.BitMap.Alias(atomBitId(spec, lb), atomBitId(spec, rb))
		}
	}
}

// atomBitId translates a connectable atom to its bit identifier within
// the spec, or net.InvalidBit when it does not resolve.
func atomBitId(spec *ModuleSpec, a BitAtom) net.BitId {
	switch a.Kind {
	case PortBit:
		return spec.PortBit(a.Owner, a.Offset)
	case WireBit:
		return spec.WireBit(a.Owner, a.Offset)
	default:
		return net.InvalidBit
	}
}

// Elaborate specialises the root declaration under the given overrides,
// then links the entire reachable instance tree top-down, freezing every
// produced spec.  The returned library owns all of them.  The only error
// is a cyclic instantiation, which aborts the pass.
func Elaborate(root *ast.ModuleDecl, overrides ast.ParamEnv, declLib ast.DeclLibrary,
	d *diag.Sink) (*ModuleSpec, *Library, error) {
	return ElaborateWith(DefaultConfig(), root, overrides, declLib, d)
}

// ElaborateWith is Elaborate with explicit knobs.
func ElaborateWith(config Config, root *ast.ModuleDecl, overrides ast.ParamEnv,
	declLib ast.DeclLibrary, d *diag.Sink) (*ModuleSpec, *Library, error) {
	lib := NewLibraryWith(config)
	//
	spec, err := lib.GetOrCreateSpec(root, overrides, d)
	if err != nil {
		return nil, nil, err
	}
	//
	if err := lib.linkTree(spec, declLib, d); err != nil {
		return nil, nil, err
	}
	// The full top-down link pass is complete: freeze everything.
	for _, key := range lib.keys {
		lib.specs[key].state = Frozen
	}
	//
	return spec, lib, nil
}

// linkTree links spec and then every callee spec it produced, depth
// first.  A specialisation requested while its own link pass is still in
// progress is a cyclic instantiation and aborts the elaboration.
func (l *Library) linkTree(spec *ModuleSpec, declLib ast.DeclLibrary, d *diag.Sink) error {
	key := MakeModuleKey(spec.Name.String(), spec.Env)
	//
	if spec.state >= Linked {
		return nil
	}
	//
	l.linking[key] = true
	defer delete(l.linking, key)
	//
	if err := LinkInstances(spec, declLib, l, d); err != nil {
		return errors.Wrapf(err, "linking %s", key)
	}
	//
	for i := range spec.Instances {
		if callee := spec.Instances[i].Callee; callee != nil {
			if err := l.linkTree(callee, declLib, d); err != nil {
				return err
			}
		}
	}
	//
	return nil
}
