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

	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// BitAtomKind classifies a single bit's provenance.
type BitAtomKind uint8

const (
	// PortBit is a bit of a declared port.
	PortBit BitAtomKind = iota
	// WireBit is a bit of a declared wire.
	WireBit
	// Const0 is a constant zero bit.
	Const0
	// Const1 is a constant one bit.
	Const1
)

// BitAtom identifies one bit by owner and LSB-first offset within the
// owner's declared range.  Offset zero is always the least significant
// bit, regardless of the declared range's orientation.  Constant atoms
// carry the invalid symbol and never enter the union-find.
type BitAtom struct {
	Kind   BitAtomKind
	Owner  sym.Symbol
	Offset uint32
}

// ConstAtom returns the atom for a single constant bit.
func ConstAtom(bit bool, offset uint32) BitAtom {
	kind := Const0
	//
	if bit {
		kind = Const1
	}
	//
	return BitAtom{Kind: kind, Owner: sym.Invalid, Offset: offset}
}

// Connectable reports whether this atom names a real storage bit, i.e.
// one which can participate in connectivity.
func (a BitAtom) Connectable() bool {
	return a.Kind == PortBit || a.Kind == WireBit
}

// String renders this atom for diagnostics and dumps.
func (a BitAtom) String() string {
	switch a.Kind {
	case PortBit:
		return fmt.Sprintf("port %s[off %d]", a.Owner, a.Offset)
	case WireBit:
		return fmt.Sprintf("wire %s[off %d]", a.Owner, a.Offset)
	case Const1:
		return "1"
	default:
		return "0"
	}
}

// BitVector is an LSB-first sequence of bit atoms.
type BitVector = []BitAtom
