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
	"io"
	"os"

	"github.com/hdltools/go-netelab/pkg/vis"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the elaborated demo design as a JSON view.",
	Long: `Elaborate the demo design and export the top specialisation as a
	JSON view document (nodes for wires, ports and instances; edges for
	instance port bindings) for downstream visualisers.`,
	Run: func(cmd *cobra.Command, args []string) {
		top, _ := elaborateDemo(cmd)
		view := vis.BuildView(top)
		//
		var out io.Writer = os.Stdout
		//
		if filename := getString(cmd, "output"); filename != "" {
			f, err := os.Create(filename)
			if err != nil {
				fmt.Println(errors.Wrap(err, "creating output file"))
				os.Exit(2)
			}
			//
			defer f.Close()
			out = f
		}
		//
		if err := view.Write(out); err != nil {
			fmt.Println(errors.Wrap(err, "writing view"))
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "write the view to a file instead of stdout")
}
