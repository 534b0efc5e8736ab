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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullElaborationInvariants elaborates the scenario hierarchy and
// checks the structural invariants over every produced specialisation.
func TestFullElaborationInvariants(t *testing.T) {
	declLib, top := scenarioLibrary()
	d := diag.NewSink(nil)
	//
	_, lib, err := Elaborate(top, nil, declLib, d)
	require.NoError(t, err)
	//
	for _, key := range lib.Keys() {
		spec, ok := lib.Lookup(key)
		require.True(t, ok)
		// Width consistency.
		for i := range spec.Ports {
			p := &spec.Ports[i]
			assert.Equal(t, ast.WidthFromRange(int64(p.Msb), int64(p.Lsb)), int64(p.Width()))
			assert.GreaterOrEqual(t, p.Width(), uint32(1))
		}
		// Connectivity size equals the sum of port and wire widths.
		var total uint32
		//
		for i := range spec.Ports {
			total += spec.Ports[i].Width()
		}
		//
		for i := range spec.Wires {
			total += spec.Wires[i].Width()
		}
		//
		assert.Equal(t, total, spec.BitMap.Size())
		// Every connection's actual length equals its formal width.
		for i := range spec.Instances {
			inst := &spec.Instances[i]
			require.NotNil(t, inst.Callee)
			//
			for _, b := range inst.Connections {
				assert.Equal(t, int(inst.Callee.Ports[b.FormalIndex].Width()), len(b.Actual))
			}
		}
	}
}

// TestStateLifecycle verifies the specialisation state machine across a
// staged (non-convenience) elaboration.
func TestStateLifecycle(t *testing.T) {
	declLib, top := scenarioLibrary()
	lib := NewLibrary()
	//
	spec, err := lib.GetOrCreateSpec(top, nil, nil)
	require.NoError(t, err)
	// Construction leaves the spec wired but unlinked.
	assert.Equal(t, WiringAssigns, spec.State())
	assert.Empty(t, spec.Instances)
	//
	require.NoError(t, LinkInstances(spec, declLib, lib, nil))
	assert.Equal(t, Linked, spec.State())
	assert.Len(t, spec.Instances, 5)
	// The convenience wrapper freezes everything on return.
	frozen, _, err := Elaborate(top, nil, declLib, nil)
	require.NoError(t, err)
	assert.Equal(t, Frozen, frozen.State())
}

// TestRelinkIsIdempotent re-links an already linked spec and expects the
// same instance list.
func TestRelinkIsIdempotent(t *testing.T) {
	declLib, top := scenarioLibrary()
	lib := NewLibrary()
	//
	spec, err := lib.GetOrCreateSpec(top, nil, nil)
	require.NoError(t, err)
	//
	require.NoError(t, LinkInstances(spec, declLib, lib, nil))
	first := len(spec.Instances)
	//
	require.NoError(t, LinkInstances(spec, declLib, lib, nil))
	assert.Equal(t, first, len(spec.Instances))
	assert.Equal(t, 2, lib.Size())
}

// TestDiamondHierarchy elaborates a three-level design where two
// mid-level modules share a leaf specialisation.
func TestDiamondHierarchy(t *testing.T) {
	n := sym.Intern("DH_N")
	//
	leaf := &ast.ModuleDecl{
		Name:          sym.Intern("DhLeaf"),
		ParamDefaults: ast.ParamEnv{n: 4},
		Ports: []ast.PortDecl{{
			Name: sym.Intern("d"),
			Dir:  ast.In,
			Net: ast.NetDecl{
				Msb: ast.IntSub(ast.IntParam(n), ast.IntLit(1)),
				Lsb: ast.IntLit(0),
			},
		}},
	}
	//
	midOf := func(name string) *ast.ModuleDecl {
		return &ast.ModuleDecl{
			Name:  sym.Intern(name),
			Wires: []ast.WireDecl{wire(name+"_w", 3, 0)},
			Instances: []ast.InstanceDecl{{
				Name:         sym.Intern("uLeaf"),
				TargetModule: leaf.Name,
				Conns:        []ast.ConnDecl{conn("d", ast.BVId(sym.Intern(name + "_w")))},
			}},
		}
	}
	//
	midA := midOf("DhMidA")
	midB := midOf("DhMidB")
	//
	top := &ast.ModuleDecl{
		Name: sym.Intern("DhTop"),
		Instances: []ast.InstanceDecl{
			{Name: sym.Intern("ua"), TargetModule: midA.Name},
			{Name: sym.Intern("ub"), TargetModule: midB.Name},
		},
	}
	//
	declLib := ast.DeclLibrary{}
	declLib.Add(leaf)
	declLib.Add(midA)
	declLib.Add(midB)
	declLib.Add(top)
	//
	topSpec, lib, err := Elaborate(top, nil, declLib, nil)
	require.NoError(t, err)
	// Top, two mids and one shared leaf specialisation.
	assert.Equal(t, 4, lib.Size())
	//
	leafA := topSpec.Instances[0].Callee.Instances[0].Callee
	leafB := topSpec.Instances[1].Callee.Instances[0].Callee
	assert.Same(t, leafA, leafB)
	// The walker sees the shared leaf once per path.
	var leaves int
	//
	WalkDepthFirst(topSpec, func(scope ScopePath, s *ModuleSpec) {
		if s.Name == leaf.Name {
			leaves++
			assert.Len(t, scope, 2)
		}
	})
	//
	assert.Equal(t, 2, leaves)
}

// TestAscendingRangeEquivalence checks that logically equivalent designs
// with opposite range orientations label and connect bits identically.
func TestAscendingRangeEquivalence(t *testing.T) {
	buildSwap := func(name string, msb, lsb int64) *ast.ModuleDecl {
		pin := sym.Intern(name + "_in")
		pout := sym.Intern(name + "_out")
		//
		return &ast.ModuleDecl{
			Name: sym.Intern(name),
			Ports: []ast.PortDecl{
				{Name: pin, Dir: ast.In, Net: ast.Net(msb, lsb)},
				{Name: pout, Dir: ast.Out, Net: ast.Net(msb, lsb)},
			},
			Assigns: []ast.AssignDecl{{
				Lhs: ast.BVId(pout),
				Rhs: ast.BVConcat(ast.BVRange(pin, 3, 0), ast.BVRange(pin, 7, 4)),
			}},
		}
	}
	//
	down := specOf(t, buildSwap("SwapDown", 7, 0), nil)
	up := specOf(t, buildSwap("SwapUp", 0, 7), nil)
	// Same group structure either way.
	assert.Len(t, down.BitMap.Groups(), 8)
	assert.Len(t, up.BitMap.Groups(), 8)
	dIn, dOut := sym.Intern("SwapDown_in"), sym.Intern("SwapDown_out")
	uIn, uOut := sym.Intern("SwapUp_in"), sym.Intern("SwapUp_out")
	// The least significant output bit is fed by absolute input bit 4 in
	// both orientations (offset 4 descending, offset 3 ascending).
	assert.Equal(t, down.NetId(down.PortBit(dIn, 4)), down.NetId(down.PortBit(dOut, 0)))
	assert.Equal(t, up.NetId(up.PortBit(uIn, 3)), up.NetId(up.PortBit(uOut, 0)))
	// Labels use declared absolute indices in both.
	assert.Equal(t, "port SwapDown_in[4]", down.RenderBit(down.PortBit(dIn, 4)))
	assert.Equal(t, "port SwapUp_in[4]", up.RenderBit(up.PortBit(uIn, 3)))
}
