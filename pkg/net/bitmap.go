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
package net

// OwnerKind distinguishes port bits from wire bits in the reverse map.
type OwnerKind uint8

const (
	// OwnerPort marks a bit belonging to a port.
	OwnerPort OwnerKind = iota
	// OwnerWire marks a bit belonging to a wire.
	OwnerWire
)

// BitOwner locates a bit within its declared owner: which port or wire it
// belongs to, and its LSB-first offset within that owner's range.
type BitOwner struct {
	Kind   OwnerKind
	Index  uint32
	Offset uint32
}

// BitMap is the per-specialisation allocation table.  It assigns every
// port bit and wire bit a contiguous range of identifiers (ports first,
// in declared order, then wires), wraps the connectivity structure, and
// maintains the reverse bit-to-owner lookup.
type BitMap struct {
	conn     Connectivity
	portBase []BitId
	wireBase []BitId
	reverse  []BitOwner
}

// Build allocates identifier ranges for the given port and wire widths,
// in order, and materialises the reverse map.  Any previous state is
// discarded.
func (m *BitMap) Build(portWidths, wireWidths []uint32) {
	*m = BitMap{
		portBase: make([]BitId, len(portWidths)),
		wireBase: make([]BitId, len(wireWidths)),
	}
	//
	for i, w := range portWidths {
		m.portBase[i] = m.conn.AllocRange(w)
	}
	//
	for i, w := range wireWidths {
		m.wireBase[i] = m.conn.AllocRange(w)
	}
	//
	m.reverse = make([]BitOwner, m.conn.Size())
	//
	for i, w := range portWidths {
		for k := uint32(0); k < w; k++ {
			m.reverse[m.portBase[i]+k] = BitOwner{OwnerPort, uint32(i), k}
		}
	}
	//
	for i, w := range wireWidths {
		for k := uint32(0); k < w; k++ {
			m.reverse[m.wireBase[i]+k] = BitOwner{OwnerWire, uint32(i), k}
		}
	}
}

// PortBit returns the identifier of bit k (LSB-first) of the given port.
func (m *BitMap) PortBit(portIndex int, k uint32) BitId {
	if portIndex < 0 || portIndex >= len(m.portBase) {
		return InvalidBit
	}
	//
	return m.portBase[portIndex] + k
}

// WireBit returns the identifier of bit k (LSB-first) of the given wire.
func (m *BitMap) WireBit(wireIndex int, k uint32) BitId {
	if wireIndex < 0 || wireIndex >= len(m.wireBase) {
		return InvalidBit
	}
	//
	return m.wireBase[wireIndex] + k
}

// Alias unites two bits into one net.
func (m *BitMap) Alias(a, b BitId) {
	m.conn.Unite(a, b)
}

// NetId returns the canonical net of the given bit.
func (m *BitMap) NetId(b BitId) NetId {
	return m.conn.Find(b)
}

// OwnerOf resolves a bit identifier back to its declared owner.
func (m *BitMap) OwnerOf(b BitId) (BitOwner, bool) {
	if b >= uint32(len(m.reverse)) {
		return BitOwner{}, false
	}
	//
	return m.reverse[b], true
}

// Size returns the number of allocated bits.
func (m *BitMap) Size() uint32 {
	return m.conn.Size()
}

// Groups enumerates all bits grouped by net.
func (m *BitMap) Groups() [][]BitId {
	return m.conn.CollectGroups()
}
