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
	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// Flatten converts a bit-vector expression, in the context of the given
// specialisation, to its LSB-first sequence of bit atoms.  Failures are
// reported on the sink and recover to an empty vector, so a failed part
// never poisons the surrounding expression.
func Flatten(e ast.BVExpr, spec *ModuleSpec, d *diag.Sink) BitVector {
	switch e.Kind {
	case ast.BVIdent:
		return flattenId(e.Name, spec, d)
	case ast.BVConstant:
		return flattenConst(e, d)
	case ast.BVConcatenation:
		return flattenConcat(e, spec, d)
	case ast.BVSlicing:
		return flattenSlice(e, spec, d)
	default:
		// Bit-vector arithmetic is recognised but not supported in wiring.
		d.Errorf(diag.FeatureUnsupported, "operator '%s' not supported in wiring context", e.Op)
		return nil
	}
}

// WidthOf computes the bit width of an expression under the given
// specialisation: declared width for ports, wires and sized constants,
// minimal value width for unsized constants, sum of parts for
// concatenations and evaluated bound distance for slices.  Unknown names
// and operators have width zero.
func WidthOf(e ast.BVExpr, spec *ModuleSpec) uint32 {
	switch e.Kind {
	case ast.BVIdent:
		if idx := spec.FindPortIndex(e.Name); idx >= 0 {
			return spec.Ports[idx].Width()
		}
		//
		if idx := spec.FindWireIndex(e.Name); idx >= 0 {
			return spec.Wires[idx].Width()
		}
		//
		return 0
	case ast.BVConstant:
		if e.Width > 0 {
			return uint32(e.Width)
		}
		//
		return uint32(ast.MinimalWidth(e.Value))
	case ast.BVConcatenation:
		var sum uint32
		//
		for _, p := range e.Parts {
			sum += WidthOf(p, spec)
		}
		//
		return sum
	case ast.BVSlicing:
		msb := ast.EvalInt(e.Msb, spec.Env, nil)
		lsb := ast.EvalInt(e.Lsb, spec.Env, nil)
		//
		return uint32(ast.WidthFromRange(msb, lsb))
	default:
		return 0
	}
}

func flattenId(name sym.Symbol, spec *ModuleSpec, d *diag.Sink) BitVector {
	if idx := spec.FindPortIndex(name); idx >= 0 {
		return ownedBits(PortBit, name, spec.Ports[idx].Width())
	}
	//
	if idx := spec.FindWireIndex(name); idx >= 0 {
		return ownedBits(WireBit, name, spec.Wires[idx].Width())
	}
	//
	d.Errorf(diag.UnknownIdentifier, "unknown identifier '%s' in module %s", name, spec.Name)
	//
	return nil
}

func ownedBits(kind BitAtomKind, owner sym.Symbol, width uint32) BitVector {
	v := make(BitVector, width)
	//
	for i := uint32(0); i < width; i++ {
		v[i] = BitAtom{Kind: kind, Owner: owner, Offset: i}
	}
	//
	return v
}

func flattenConst(e ast.BVExpr, d *diag.Sink) BitVector {
	if e.Width <= 0 {
		d.Errorf(diag.WidthlessConstant, "constant %s has no width", e)
		return nil
	}
	//
	v := make(BitVector, e.Width)
	//
	for i := 0; i < e.Width; i++ {
		v[i] = ConstAtom((e.Value>>uint(i))&1 == 1, uint32(i))
	}
	//
	return v
}

func flattenConcat(e ast.BVExpr, spec *ModuleSpec, d *diag.Sink) BitVector {
	var out BitVector
	// Parts are MSB-first, output is LSB-first, hence reverse order.
	for i := len(e.Parts) - 1; i >= 0; i-- {
		out = append(out, Flatten(e.Parts[i], spec, d)...)
	}
	//
	return out
}

func flattenSlice(e ast.BVExpr, spec *ModuleSpec, d *diag.Sink) BitVector {
	var (
		kind  BitAtomKind
		msb   int32
		lsb   int32
		width uint32
	)
	//
	if idx := spec.FindPortIndex(e.Name); idx >= 0 {
		kind, msb, lsb, width = PortBit, spec.Ports[idx].Msb, spec.Ports[idx].Lsb, spec.Ports[idx].Width()
	} else if idx := spec.FindWireIndex(e.Name); idx >= 0 {
		kind, msb, lsb, width = WireBit, spec.Wires[idx].Msb, spec.Wires[idx].Lsb, spec.Wires[idx].Width()
	} else {
		d.Errorf(diag.UnknownIdentifier, "unknown identifier '%s' in slice", e.Name)
		return nil
	}
	//
	sliceMsb := ast.EvalInt(e.Msb, spec.Env, d)
	sliceLsb := ast.EvalInt(e.Lsb, spec.Env, d)
	lo, hi := sliceLsb, sliceMsb
	//
	if lo > hi {
		lo, hi = hi, lo
	}
	//
	v := make(BitVector, 0, hi-lo+1)
	// Ascending absolute indices yield an LSB-first vector once each index
	// is translated through the owner's declared orientation.
	for abs := lo; abs <= hi; abs++ {
		off := ownerOffset(msb, lsb, abs)
		//
		if off < 0 || uint32(off) >= width {
			d.Errorf(diag.SliceOutOfRange, "slice %s out of range on '%s' [%d:%d]", e, e.Name, msb, lsb)
			return nil
		}
		//
		v = append(v, BitAtom{Kind: kind, Owner: e.Name, Offset: uint32(off)})
	}
	//
	return v
}

// ownerOffset maps a declared absolute bit index to the owner's LSB-first
// offset, respecting range orientation.
func ownerOffset(msb, lsb int32, abs int64) int64 {
	if msb >= lsb {
		return abs - int64(lsb)
	}
	//
	return int64(lsb) - abs
}
