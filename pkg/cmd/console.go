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
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hdltools/go-netelab/internal/demo"
	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/elab"
	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/spf13/cobra"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open a line-oriented console over the elaborated demo design.",
	Long: `Elaborate the demo design and open an interactive console for
	inspecting specialisations, ports, wires and bit-level connectivity,
	with a persistent selection and undo.  Type 'help' for the command
	list.`,
	Run: func(cmd *cobra.Command, args []string) {
		top, lib := elaborateDemo(cmd)
		declLib, topDecl := demo.Design()
		//
		c := newConsole(top, lib, os.Stdin, os.Stdout)
		c.declLib, c.topDecl = declLib, topDecl
		c.run()
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// selRef identifies a selected port or wire: the owning specialisation's
// canonical key and the entity's name, both interned.
type selRef struct {
	specKey sym.Symbol
	name    sym.Symbol
}

// selection is the console's persistent selection state.
type selection struct {
	primary sym.Symbol
	modules []sym.Symbol
	ports   []selRef
	wires   []selRef
}

// clone returns an independent copy, for undo snapshots.
func (s *selection) clone() selection {
	return selection{
		primary: s.primary,
		modules: append([]sym.Symbol(nil), s.modules...),
		ports:   append([]selRef(nil), s.ports...),
		wires:   append([]selRef(nil), s.wires...),
	}
}

func (s *selection) hasModule(key sym.Symbol) bool {
	for _, k := range s.modules {
		if k == key {
			return true
		}
	}
	//
	return false
}

func (s *selection) addModule(key sym.Symbol) {
	if !s.hasModule(key) {
		s.modules = append(s.modules, key)
	}
	//
	if !s.primary.Valid() {
		s.primary = key
	}
}

func hasRef(refs []selRef, ref selRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	//
	return false
}

func addRef(refs []selRef, ref selRef) []selRef {
	if hasRef(refs, ref) {
		return refs
	}
	//
	return append(refs, ref)
}

func removeRef(refs []selRef, ref selRef) []selRef {
	out := refs[:0]
	//
	for _, r := range refs {
		if r != ref {
			out = append(out, r)
		}
	}
	//
	return out
}

// console is the interactive command loop.
type console struct {
	top *elab.ModuleSpec
	lib *elab.Library
	in  *bufio.Scanner
	out io.Writer
	// declaration universe for re-elaboration via the 'elab' command.
	declLib ast.DeclLibrary
	topDecl *ast.ModuleDecl
	//
	sel     selection
	history []string
	undo    []selection
}

func newConsole(top *elab.ModuleSpec, lib *elab.Library, in io.Reader, out io.Writer) *console {
	return &console{top: top, lib: lib, in: bufio.NewScanner(in), out: out}
}

func (c *console) run() {
	fmt.Fprintf(c.out, "go-netelab console; 'help' lists commands, 'exit' leaves.\n")
	//
	for {
		fmt.Fprintf(c.out, "> ")
		//
		if !c.in.Scan() {
			return
		}
		//
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		//
		if !c.dispatch(line) {
			return
		}
	}
}

// dispatch executes one command line, returning false to leave the loop.
func (c *console) dispatch(line string) bool {
	args := strings.Fields(line)
	cmd, args := args[0], args[1:]
	//
	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		c.cmdHelp()
	case "specs":
		c.cmdSpecs()
	case "ports":
		c.cmdPorts(args)
	case "wires":
		c.cmdWires(args)
	case "query":
		c.cmdQuery(args)
	case "select":
		c.snapshot(line)
		c.cmdSelect(args)
	case "invert":
		c.snapshot(line)
		c.cmdInvert(args)
	case "selection":
		c.cmdSelection()
	case "elab":
		c.cmdElab(args)
	case "dump":
		c.cmdDump(args)
	case "tree":
		elab.DumpInstanceTree(c.top, c.out)
	case "history":
		for i, h := range c.history {
			fmt.Fprintf(c.out, "  [%d] %s\n", i, h)
		}
	case "undo":
		c.cmdUndo()
	default:
		fmt.Fprintf(c.out, "unknown command '%s'; try 'help'\n", cmd)
	}
	//
	return true
}

// snapshot records the pre-state of a mutating command for undo, and the
// command itself for history.
func (c *console) snapshot(line string) {
	c.undo = append(c.undo, c.sel.clone())
	c.history = append(c.history, line)
}

func (c *console) cmdHelp() {
	fmt.Fprint(c.out, `commands:
  specs                       list specialisations by canonical key
  ports <key>                 list ports of a specialisation
  wires <key>                 list wires of a specialisation
  query <key> <name>          show per-bit net ids of a port or wire
  select module <key>         add a specialisation to the selection
  select port <key> <name>    add a port to the selection
  select wire <key> <name>    add a wire to the selection
  select clear                clear the whole selection
  invert <key>                invert the port/wire selection within a spec
  selection                   show the current selection
  elab [NAME=VALUE ...]       re-elaborate the design under new overrides
  dump <key>                  dump layout and connectivity of a spec
  tree                        dump the linked instance tree
  history                     list mutating commands issued so far
  undo                        revert the last mutating command
  exit                        leave the console
`)
}

// lookupSpec resolves a canonical key argument.
func (c *console) lookupSpec(key string) *elab.ModuleSpec {
	spec, ok := c.lib.Lookup(key)
	//
	if !ok {
		fmt.Fprintf(c.out, "no specialisation '%s'; see 'specs'\n", key)
		return nil
	}
	//
	return spec
}

func (c *console) cmdSpecs() {
	for _, key := range c.lib.Keys() {
		spec, _ := c.lib.Lookup(key)
		fmt.Fprintf(c.out, "  %s (%d ports, %d wires, %d instances)\n",
			key, len(spec.Ports), len(spec.Wires), len(spec.Instances))
	}
}

func (c *console) cmdPorts(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "usage: ports <key>\n")
		return
	}
	//
	spec := c.lookupSpec(args[0])
	if spec == nil {
		return
	}
	//
	for i := range spec.Ports {
		p := &spec.Ports[i]
		fmt.Fprintf(c.out, "  [%d] %s dir=%s range=[%d:%d] width=%d\n",
			i, p.Name, p.Dir, p.Msb, p.Lsb, p.Width())
	}
}

func (c *console) cmdWires(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "usage: wires <key>\n")
		return
	}
	//
	spec := c.lookupSpec(args[0])
	if spec == nil {
		return
	}
	//
	for i := range spec.Wires {
		w := &spec.Wires[i]
		fmt.Fprintf(c.out, "  [%d] %s range=[%d:%d] width=%d\n",
			i, w.Name, w.Msb, w.Lsb, w.Width())
	}
}

func (c *console) cmdQuery(args []string) {
	if len(args) != 2 {
		fmt.Fprintf(c.out, "usage: query <key> <name>\n")
		return
	}
	//
	spec := c.lookupSpec(args[0])
	if spec == nil {
		return
	}
	//
	name := sym.Intern(args[1])
	//
	var width uint32
	//
	isPort := spec.FindPortIndex(name) >= 0
	//
	switch {
	case isPort:
		width = spec.Ports[spec.FindPortIndex(name)].Width()
	case spec.FindWireIndex(name) >= 0:
		width = spec.Wires[spec.FindWireIndex(name)].Width()
	default:
		fmt.Fprintf(c.out, "no port or wire '%s' in %s\n", args[1], args[0])
		return
	}
	//
	for k := uint32(0); k < width; k++ {
		var bit uint32
		//
		if isPort {
			bit = spec.PortBit(name, k)
		} else {
			bit = spec.WireBit(name, k)
		}
		//
		fmt.Fprintf(c.out, "  %s net=%d\n", spec.RenderBit(bit), spec.NetId(bit))
	}
}

func (c *console) cmdSelect(args []string) {
	if len(args) == 1 && args[0] == "clear" {
		c.sel = selection{}
		return
	}
	//
	if len(args) < 2 {
		fmt.Fprintf(c.out, "usage: select module <key> | select port <key> <name> | select wire <key> <name> | select clear\n")
		return
	}
	//
	key := sym.Intern(args[1])
	//
	if spec := c.lookupSpec(args[1]); spec == nil {
		return
	}
	//
	switch args[0] {
	case "module":
		c.sel.addModule(key)
	case "port", "wire":
		if len(args) != 3 {
			fmt.Fprintf(c.out, "usage: select %s <key> <name>\n", args[0])
			return
		}
		//
		ref := selRef{specKey: key, name: sym.Intern(args[2])}
		//
		if args[0] == "port" {
			c.sel.ports = addRef(c.sel.ports, ref)
		} else {
			c.sel.wires = addRef(c.sel.wires, ref)
		}
	default:
		fmt.Fprintf(c.out, "unknown selection kind '%s'\n", args[0])
	}
}

// cmdInvert flips the port and wire selection within one specialisation:
// selected entities drop out, unselected ones enter.
func (c *console) cmdInvert(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "usage: invert <key>\n")
		return
	}
	//
	spec := c.lookupSpec(args[0])
	if spec == nil {
		return
	}
	//
	key := sym.Intern(args[0])
	//
	for i := range spec.Ports {
		ref := selRef{specKey: key, name: spec.Ports[i].Name}
		//
		if hasRef(c.sel.ports, ref) {
			c.sel.ports = removeRef(c.sel.ports, ref)
		} else {
			c.sel.ports = addRef(c.sel.ports, ref)
		}
	}
	//
	for i := range spec.Wires {
		ref := selRef{specKey: key, name: spec.Wires[i].Name}
		//
		if hasRef(c.sel.wires, ref) {
			c.sel.wires = removeRef(c.sel.wires, ref)
		} else {
			c.sel.wires = addRef(c.sel.wires, ref)
		}
	}
}

func (c *console) cmdSelection() {
	fmt.Fprintf(c.out, "primary: %s\n", c.sel.primary)
	fmt.Fprintf(c.out, "modules (%d):\n", len(c.sel.modules))
	//
	for _, k := range c.sel.modules {
		fmt.Fprintf(c.out, "  %s\n", k)
	}
	//
	fmt.Fprintf(c.out, "ports (%d):\n", len(c.sel.ports))
	//
	for _, r := range c.sel.ports {
		fmt.Fprintf(c.out, "  %s.%s\n", r.specKey, r.name)
	}
	//
	fmt.Fprintf(c.out, "wires (%d):\n", len(c.sel.wires))
	//
	for _, r := range c.sel.wires {
		fmt.Fprintf(c.out, "  %s.%s\n", r.specKey, r.name)
	}
}

func (c *console) cmdDump(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "usage: dump <key>\n")
		return
	}
	//
	spec := c.lookupSpec(args[0])
	if spec == nil {
		return
	}
	//
	spec.DumpLayout(c.out)
	spec.DumpConnectivity(c.out)
}

// cmdElab re-elaborates the declaration universe under fresh overrides,
// replacing the console's library and dropping the selection (its spec
// keys may no longer exist).
func (c *console) cmdElab(args []string) {
	if c.topDecl == nil {
		fmt.Fprintf(c.out, "no declaration library attached\n")
		return
	}
	//
	overrides := ast.ParamEnv{}
	//
	for _, item := range args {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			fmt.Fprintf(c.out, "malformed override %q (expected NAME=VALUE)\n", item)
			return
		}
		//
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			fmt.Fprintf(c.out, "malformed value %q: %v\n", value, err)
			return
		}
		//
		overrides[sym.Intern(name)] = v
	}
	//
	sink := diag.NewSink(c.out)
	//
	top, lib, err := elab.Elaborate(c.topDecl, overrides, c.declLib, sink)
	if err != nil {
		fmt.Fprintf(c.out, "elaboration failed: %v\n", err)
		return
	}
	//
	c.top, c.lib = top, lib
	c.sel = selection{}
	c.undo = nil
	//
	fmt.Fprintf(c.out, "elaborated %d specialisation(s)\n", lib.Size())
}

func (c *console) cmdUndo() {
	if len(c.undo) == 0 {
		fmt.Fprintf(c.out, "nothing to undo\n")
		return
	}
	//
	c.sel = c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	//
	if len(c.history) != 0 {
		fmt.Fprintf(c.out, "undone: %s\n", c.history[len(c.history)-1])
		c.history = c.history[:len(c.history)-1]
	}
}
