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

// Package elab is the elaboration pipeline: module declarations are
// specialised under parameter bindings into bit-level ModuleSpecs,
// generate constructs unrolled, instances linked with width-checked
// port bindings, and continuous assigns folded into the per-bit
// union-find connectivity.  A Library owns every specialisation
// produced from one elaboration universe and caches them by canonical
// key.
package elab

import (
	"fmt"
	"io"

	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/net"
	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// State tracks a specialisation through its lifecycle.  Transitions are
// strictly forward: bits are allocated, assigns wired, instances linked,
// and finally the spec is frozen for read-only use.
type State uint8

const (
	// AllocatingBits means the bit map has been sized but no uniting has
	// occurred yet.
	AllocatingBits State = iota
	// WiringAssigns means continuous assigns are being applied.
	WiringAssigns
	// Linked means the instance list is populated and connectivity final.
	Linked
	// Frozen means the enclosing elaboration has returned; the spec is now
	// read-only.
	Frozen
)

// PortSpec is a port with its range bounds evaluated under the owning
// specialisation's environment.  Widths are stable for the lifetime of
// the spec.
type PortSpec struct {
	Name sym.Symbol
	Dir  ast.Direction
	Msb  int32
	Lsb  int32
}

// Width returns the number of bits this port spans.
func (p *PortSpec) Width() uint32 {
	return uint32(ast.WidthFromRange(int64(p.Msb), int64(p.Lsb)))
}

// WireSpec is a wire with evaluated range bounds.
type WireSpec struct {
	Name sym.Symbol
	Msb  int32
	Lsb  int32
}

// Width returns the number of bits this wire spans.
func (w *WireSpec) Width() uint32 {
	return uint32(ast.WidthFromRange(int64(w.Msb), int64(w.Lsb)))
}

// PortBinding records one linked connection: which formal port of the
// callee, and the actual bits (in the parent's scope) bound to it.  The
// actual vector's length always equals the formal port's width.
type PortBinding struct {
	FormalIndex uint32
	Actual      BitVector
}

// Instance is a linked child instantiation within a specialisation.  The
// callee pointer refers into the same library that owns the parent.
type Instance struct {
	Name        sym.Symbol
	Callee      *ModuleSpec
	Connections []PortBinding
}

// ModuleSpec is an elaborated, specialised, bit-level view of a module:
// evaluated port and wire shapes, the bit allocation table with its
// connectivity, and the linked child instances.
type ModuleSpec struct {
	Name sym.Symbol
	// Decl points back at the declaration this spec was elaborated from.
	Decl *ast.ModuleDecl
	// Env is the effective parameter binding of this specialisation.
	Env ast.ParamEnv
	//
	Ports []PortSpec
	Wires []WireSpec
	//
	portIndex map[sym.Symbol]uint32
	wireIndex map[sym.Symbol]uint32
	//
	BitMap net.BitMap
	//
	Instances []Instance
	//
	state State
}

// State returns the current lifecycle state.
func (s *ModuleSpec) State() State {
	return s.state
}

// FindPortIndex returns the index of the named port, or -1.
func (s *ModuleSpec) FindPortIndex(name sym.Symbol) int {
	if i, ok := s.portIndex[name]; ok {
		return int(i)
	}
	//
	return -1
}

// FindWireIndex returns the index of the named wire, or -1.
func (s *ModuleSpec) FindWireIndex(name sym.Symbol) int {
	if i, ok := s.wireIndex[name]; ok {
		return int(i)
	}
	//
	return -1
}

// PortBit returns the identifier of bit offset (LSB-first) of the named
// port, or net.InvalidBit if the name or offset does not resolve.
func (s *ModuleSpec) PortBit(name sym.Symbol, offset uint32) net.BitId {
	idx := s.FindPortIndex(name)
	//
	if idx < 0 || offset >= s.Ports[idx].Width() {
		return net.InvalidBit
	}
	//
	return s.BitMap.PortBit(idx, offset)
}

// WireBit returns the identifier of bit offset (LSB-first) of the named
// wire, or net.InvalidBit if the name or offset does not resolve.
func (s *ModuleSpec) WireBit(name sym.Symbol, offset uint32) net.BitId {
	idx := s.FindWireIndex(name)
	//
	if idx < 0 || offset >= s.Wires[idx].Width() {
		return net.InvalidBit
	}
	//
	return s.BitMap.WireBit(idx, offset)
}

// NetId returns the canonical net of the given bit.
func (s *ModuleSpec) NetId(b net.BitId) net.NetId {
	return s.BitMap.NetId(b)
}

// RenderBit produces the canonical label of a bit: "port <name>[<idx>]"
// or "wire <name>[<idx>]", where <idx> is the declared absolute bit index
// (so logically equivalent bits label identically whether the range was
// declared ascending or descending).
func (s *ModuleSpec) RenderBit(b net.BitId) string {
	owner, ok := s.BitMap.OwnerOf(b)
	//
	if !ok {
		return fmt.Sprintf("<out-of-range:%d>", b)
	}
	//
	if owner.Kind == net.OwnerPort {
		p := &s.Ports[owner.Index]
		return fmt.Sprintf("port %s[%d]", p.Name, absIndex(p.Msb, p.Lsb, owner.Offset))
	}
	//
	w := &s.Wires[owner.Index]
	//
	return fmt.Sprintf("wire %s[%d]", w.Name, absIndex(w.Msb, w.Lsb, owner.Offset))
}

// absIndex translates an LSB-first offset back to the declared absolute
// bit index for the given range orientation.
func absIndex(msb, lsb int32, offset uint32) int32 {
	if msb >= lsb {
		return lsb + int32(offset)
	}
	//
	return lsb - int32(offset)
}

// DumpLayout writes a human-readable table of this spec's ports and
// wires.
func (s *ModuleSpec) DumpLayout(w io.Writer) {
	fmt.Fprintf(w, "ModuleSpec %s layout:\n", s.Name)
	fmt.Fprintf(w, "  Ports:\n")
	//
	for i := range s.Ports {
		p := &s.Ports[i]
		fmt.Fprintf(w, "    [%d] %s dir=%s range=[%d:%d] width=%d\n",
			i, p.Name, p.Dir, p.Msb, p.Lsb, p.Width())
	}
	//
	fmt.Fprintf(w, "  Wires:\n")
	//
	for i := range s.Wires {
		ws := &s.Wires[i]
		fmt.Fprintf(w, "    [%d] %s range=[%d:%d] width=%d\n",
			i, ws.Name, ws.Msb, ws.Lsb, ws.Width())
	}
}

// DumpConnectivity writes every connectivity group of this spec, one
// group per line, bits rendered with their declared labels.
func (s *ModuleSpec) DumpConnectivity(w io.Writer) {
	groups := s.BitMap.Groups()
	fmt.Fprintf(w, "Connectivity groups (%d):\n", len(groups))
	//
	for _, grp := range groups {
		fmt.Fprintf(w, "  { ")
		//
		for i, b := range grp {
			if i != 0 {
				fmt.Fprintf(w, ", ")
			}
			//
			fmt.Fprintf(w, "%s", s.RenderBit(b))
		}
		//
		fmt.Fprintf(w, " }\n")
	}
}
