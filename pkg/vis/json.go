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

// Package vis exports an elaborated module specialisation as a JSON view
// document for downstream visualisers: one node per wire, port and
// instance, one edge per contiguous segment of an instance port binding.
package vis

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/elab"
)

// Pin describes one formal port of an instance node.
type Pin struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Dir   string `json:"dir"`
	Width int    `json:"width"`
}

// Node is a wire, port or instance in the view graph.
type Node struct {
	Id     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Dir    string `json:"dir,omitempty"`
	Module string `json:"module,omitempty"`
	Msb    *int32 `json:"msb,omitempty"`
	Lsb    *int32 `json:"lsb,omitempty"`
	Pins   []Pin  `json:"pins,omitempty"`
}

// BitMap maps one actual bit onto one formal bit within an edge.
type BitMap struct {
	FromBit int `json:"fromBit"`
	ToBit   int `json:"toBit"`
}

// Edge connects a wire-or-port node with an instance pin, carrying the
// per-bit mapping of one contiguous segment of the binding.
type Edge struct {
	Id      string   `json:"id"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Width   int      `json:"width"`
	Label   string   `json:"label"`
	Mapping []BitMap `json:"mapping"`
}

// Endpoint names a node and bit for a timing path.
type Endpoint struct {
	Node string `json:"node"`
	Bit  int    `json:"bit"`
}

// Arc is one hop of a timing path.
type Arc struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	BitFrom int     `json:"bitFrom"`
	BitTo   int     `json:"bitTo"`
	Delay   float64 `json:"delay"`
	Label   string  `json:"label"`
}

// TimingPath is an externally computed path overlaid on the view.
type TimingPath struct {
	Id    string   `json:"id"`
	Name  string   `json:"name"`
	Slack float64  `json:"slack"`
	Delay float64  `json:"delay"`
	Start Endpoint `json:"start"`
	End   Endpoint `json:"end"`
	Arcs  []Arc    `json:"arcs"`
}

// View is the exported document.
type View struct {
	Key         string       `json:"key"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges"`
	TimingPaths []TimingPath `json:"timingPaths"`
}

// BuildView exports the given specialisation.
func BuildView(spec *elab.ModuleSpec) *View {
	view := &View{
		Key:         spec.Name.String(),
		Title:       spec.Name.String(),
		Description: "Module view exported from ModuleSpec (ports, wires, instances, pins, and edges).",
		Nodes:       buildNodes(spec),
		Edges:       buildEdges(spec),
		TimingPaths: []TimingPath{},
	}
	//
	return view
}

// AddTimingPaths appends externally computed timing paths to a view.
func (v *View) AddTimingPaths(paths ...TimingPath) {
	v.TimingPaths = append(v.TimingPaths, paths...)
}

// Write serialises the view as indented JSON.
func (v *View) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	//
	return enc.Encode(v)
}

func pinId(inst *elab.Instance, formal *elab.PortSpec) string {
	return inst.Name.String() + "." + formal.Name.String()
}

func buildNodes(spec *elab.ModuleSpec) []Node {
	nodes := make([]Node, 0, len(spec.Wires)+len(spec.Ports)+len(spec.Instances))
	//
	for i := range spec.Wires {
		w := &spec.Wires[i]
		msb, lsb := w.Msb, w.Lsb
		nodes = append(nodes, Node{
			Id: w.Name.String(), Type: "wire", Name: w.Name.String(),
			Msb: &msb, Lsb: &lsb,
		})
	}
	//
	for i := range spec.Ports {
		p := &spec.Ports[i]
		msb, lsb := p.Msb, p.Lsb
		nodes = append(nodes, Node{
			Id: p.Name.String(), Type: "port", Name: p.Name.String(),
			Dir: p.Dir.String(), Msb: &msb, Lsb: &lsb,
		})
	}
	//
	for i := range spec.Instances {
		inst := &spec.Instances[i]
		node := Node{
			Id: inst.Name.String(), Type: "instance", Name: inst.Name.String(),
			Module: "<null>", Pins: []Pin{},
		}
		//
		if inst.Callee != nil {
			node.Module = inst.Callee.Name.String()
			//
			for j := range inst.Callee.Ports {
				fp := &inst.Callee.Ports[j]
				node.Pins = append(node.Pins, Pin{
					Id:    pinId(inst, fp),
					Name:  fp.Name.String(),
					Dir:   fp.Dir.String(),
					Width: int(fp.Width()),
				})
			}
		}
		//
		nodes = append(nodes, node)
	}
	//
	return nodes
}

// segment is a maximal run of binding bits sharing one owner and kind.
type segment struct {
	ownerId string
	mapping []BitMap
}

// segmentsForBinding splits a binding's actual vector into contiguous
// per-owner runs, skipping constant bits.
func segmentsForBinding(actual elab.BitVector) []segment {
	var segs []segment
	//
	i := 0
	//
	for i < len(actual) {
		a0 := actual[i]
		//
		if !a0.Connectable() {
			i++
			continue
		}
		//
		s := segment{ownerId: a0.Owner.String()}
		//
		j := i
		//
		for ; j < len(actual); j++ {
			ax := actual[j]
			//
			if ax.Kind != a0.Kind || ax.Owner != a0.Owner {
				break
			}
			//
			s.mapping = append(s.mapping, BitMap{FromBit: int(ax.Offset), ToBit: j})
		}
		//
		segs = append(segs, s)
		i = j
	}
	//
	return segs
}

func buildEdges(spec *elab.ModuleSpec) []Edge {
	edges := []Edge{}
	//
	for i := range spec.Instances {
		inst := &spec.Instances[i]
		//
		if inst.Callee == nil {
			continue
		}
		//
		for _, pb := range inst.Connections {
			formal := &inst.Callee.Ports[pb.FormalIndex]
			pin := pinId(inst, formal)
			//
			for segIdx, s := range segmentsForBinding(pb.Actual) {
				// Inputs flow owner -> pin; outputs pin -> owner; inout is
				// drawn owner -> pin.
				from, to := s.ownerId, pin
				dirTag := "in"
				//
				if formal.Dir == ast.Out {
					from, to = pin, s.ownerId
					dirTag = "out"
				}
				//
				edges = append(edges, Edge{
					Id: fmt.Sprintf("e_%s_%s_%d_%s",
						inst.Name, formal.Name, segIdx, dirTag),
					From:    from,
					To:      to,
					Width:   len(s.mapping),
					Label:   from + " -> " + to,
					Mapping: s.mapping,
				})
			}
		}
	}
	//
	return edges
}
