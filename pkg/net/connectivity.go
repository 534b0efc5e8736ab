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

// Package net provides the bit-level connectivity core: a growable
// union-find over dense bit identifiers, and the per-specialisation
// allocation table mapping ports and wires onto contiguous identifier
// ranges.
package net

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// BitId is a dense index into the connectivity universe of a single
// module specialisation.
type BitId = uint32

// NetId is the canonical representative of a connected group of bits.
// Two bits are electrically equivalent exactly when they share a NetId.
// NetId values live in the same numeric space as BitId.
type NetId = uint32

// InvalidBit is returned by addressing operations which fail to resolve.
// It lies outside every allocated range, so feeding it back into Unite is
// a harmless no-op.
const InvalidBit BitId = math.MaxUint32

// Connectivity is a growable union-find over bit identifiers.  Bits are
// allocated in contiguous ranges and united by rank-balanced merging with
// path compression on find.
type Connectivity struct {
	parent []BitId
	rank   []uint32
}

// AllocRange extends the universe by n fresh singleton bits and returns
// the identifier of the first.  Allocation is contiguous: the new bits
// are base..base+n-1.
func (c *Connectivity) AllocRange(n uint32) BitId {
	base := BitId(len(c.parent))
	//
	for i := uint32(0); i < n; i++ {
		c.parent = append(c.parent, base+i)
		c.rank = append(c.rank, 0)
	}
	//
	return base
}

// Size returns the number of allocated bits.
func (c *Connectivity) Size() uint32 {
	return uint32(len(c.parent))
}

// Find returns the canonical net of the given bit, compressing the path
// as it goes.  An unallocated identifier is its own net.
func (c *Connectivity) Find(b BitId) NetId {
	if b >= c.Size() {
		return b
	}
	//
	if c.parent[b] != b {
		c.parent[b] = c.Find(c.parent[b])
	}
	//
	return c.parent[b]
}

// Unite merges the nets of a and b.  A no-op when either identifier is
// out of range or when they are already united.
func (c *Connectivity) Unite(a, b BitId) {
	if a >= c.Size() || b >= c.Size() {
		return
	}
	//
	ra, rb := c.Find(a), c.Find(b)
	//
	if ra == rb {
		return
	}
	//
	if c.rank[ra] < c.rank[rb] {
		ra, rb = rb, ra
	}
	//
	c.parent[rb] = ra
	//
	if c.rank[ra] == c.rank[rb] {
		c.rank[ra]++
	}
}

// CollectGroups enumerates every live bit grouped by net.  Groups are
// ordered by ascending root identifier, and bits within a group ascend.
func (c *Connectivity) CollectGroups() [][]BitId {
	n := c.Size()
	// Mark which identifiers are roots.
	roots := bitset.New(uint(n))
	//
	for i := BitId(0); i < n; i++ {
		roots.Set(uint(c.Find(i)))
	}
	// Assign a dense group slot to each root, ascending.
	slot := make(map[NetId]int, int(roots.Count()))
	groups := make([][]BitId, 0, int(roots.Count()))
	//
	for r, ok := roots.NextSet(0); ok; r, ok = roots.NextSet(r + 1) {
		slot[NetId(r)] = len(groups)
		groups = append(groups, nil)
	}
	//
	for i := BitId(0); i < n; i++ {
		g := slot[c.Find(i)]
		groups[g] = append(groups[g], i)
	}
	//
	return groups
}
