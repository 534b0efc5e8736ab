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
package vis

import (
	"testing"

	"github.com/hdltools/go-netelab/pkg/elab"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentsSingleOwner(t *testing.T) {
	w := sym.Intern("seg_w")
	//
	actual := elab.BitVector{
		{Kind: elab.WireBit, Owner: w, Offset: 0},
		{Kind: elab.WireBit, Owner: w, Offset: 1},
		{Kind: elab.WireBit, Owner: w, Offset: 2},
	}
	//
	segs := segmentsForBinding(actual)
	require.Len(t, segs, 1)
	assert.Equal(t, "seg_w", segs[0].ownerId)
	assert.Equal(t, []BitMap{{0, 0}, {1, 1}, {2, 2}}, segs[0].mapping)
}

func TestSegmentsSplitOnOwnerChange(t *testing.T) {
	a := sym.Intern("seg_a")
	b := sym.Intern("seg_b")
	// A nibble of a, then a nibble of b, as a swap concat would produce.
	var actual elab.BitVector
	//
	for k := uint32(4); k < 8; k++ {
		actual = append(actual, elab.BitAtom{Kind: elab.WireBit, Owner: a, Offset: k})
	}
	//
	for k := uint32(0); k < 4; k++ {
		actual = append(actual, elab.BitAtom{Kind: elab.WireBit, Owner: b, Offset: k})
	}
	//
	segs := segmentsForBinding(actual)
	require.Len(t, segs, 2)
	assert.Equal(t, "seg_a", segs[0].ownerId)
	assert.Equal(t, []BitMap{{4, 0}, {5, 1}, {6, 2}, {7, 3}}, segs[0].mapping)
	assert.Equal(t, "seg_b", segs[1].ownerId)
	assert.Equal(t, []BitMap{{0, 4}, {1, 5}, {2, 6}, {3, 7}}, segs[1].mapping)
}

func TestSegmentsSkipConstants(t *testing.T) {
	w := sym.Intern("seg_c")
	//
	actual := elab.BitVector{
		{Kind: elab.WireBit, Owner: w, Offset: 0},
		elab.ConstAtom(true, 1),
		elab.ConstAtom(false, 2),
		{Kind: elab.WireBit, Owner: w, Offset: 3},
	}
	//
	segs := segmentsForBinding(actual)
	require.Len(t, segs, 2)
	// Formal bit positions are preserved across the constant gap.
	assert.Equal(t, []BitMap{{0, 0}}, segs[0].mapping)
	assert.Equal(t, []BitMap{{3, 3}}, segs[1].mapping)
}

func TestSegmentsSplitOnKindChange(t *testing.T) {
	n := sym.Intern("seg_k")
	// Same owner symbol, different atom kinds must not merge.
	actual := elab.BitVector{
		{Kind: elab.PortBit, Owner: n, Offset: 0},
		{Kind: elab.WireBit, Owner: n, Offset: 1},
	}
	//
	segs := segmentsForBinding(actual)
	require.Len(t, segs, 2)
}
