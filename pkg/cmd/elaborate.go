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
	"fmt"
	"os"

	"github.com/hdltools/go-netelab/internal/demo"
	"github.com/hdltools/go-netelab/pkg/elab"
	"github.com/hdltools/go-netelab/pkg/util/diag"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// elaborateCmd represents the elaborate command
var elaborateCmd = &cobra.Command{
	Use:   "elaborate",
	Short: "Elaborate the demo design and dump the result.",
	Long: `Elaborate the demo design under the given parameter overrides and
	dump the specialised layout, the bit-level connectivity groups and the
	linked instance tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		layout := getFlag(cmd, "layout")
		conn := getFlag(cmd, "connectivity")
		tree := getFlag(cmd, "tree")
		// With no selection, dump everything.
		if !layout && !conn && !tree {
			layout, conn, tree = true, true, true
		}
		//
		top, lib := elaborateDemo(cmd)
		log.Debugf("elaborated %d specialisation(s)", lib.Size())
		//
		if layout {
			for _, key := range lib.Keys() {
				spec, _ := lib.Lookup(key)
				spec.DumpLayout(os.Stdout)
			}
		}
		//
		if conn {
			for _, key := range lib.Keys() {
				spec, _ := lib.Lookup(key)
				fmt.Printf("ModuleSpec %s:\n", key)
				spec.DumpConnectivity(os.Stdout)
			}
		}
		//
		if tree {
			elab.DumpInstanceTree(top, os.Stdout)
		}
	},
}

// elaborateDemo elaborates the demo design under the command's parameter
// overrides, exiting on a fatal (cyclic) elaboration error.
func elaborateDemo(cmd *cobra.Command) (*elab.ModuleSpec, *elab.Library) {
	declLib, topDecl := demo.Design()
	sink := diag.NewSink(os.Stderr)
	//
	top, lib, err := elab.Elaborate(topDecl, getParamOverrides(cmd), declLib, sink)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	if n := sink.Errors(); n != 0 {
		log.Warnf("%d item(s) skipped during elaboration", n)
	}
	//
	return top, lib
}

func init() {
	rootCmd.AddCommand(elaborateCmd)
	elaborateCmd.Flags().Bool("layout", false, "dump port/wire layout per specialisation")
	elaborateCmd.Flags().Bool("connectivity", false, "dump connectivity groups per specialisation")
	elaborateCmd.Flags().Bool("tree", false, "dump the linked instance tree")
}
