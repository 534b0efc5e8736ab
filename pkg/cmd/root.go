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
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/hdltools/go-netelab/pkg/ast"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when linking with -ldflags "-X", but *not* when
// installing via "go install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "go-netelab",
	Short: "A bit-level elaborator for parameterised module hierarchies.",
	Long: `A bit-level elaborator for parameterised module hierarchies:
	module declarations are specialised under parameter bindings, generate
	constructs unrolled, instances linked with width-checked bindings and
	continuous assigns folded into per-bit connectivity.  Declarations are
	built in memory; the bundled demo design is used by all subcommands.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("go-netelab ")
			if Version != "" {
				// Set at link time via -ldflags "-X"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		} else {
			fmt.Println(cmd.UsageString())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().StringArrayP("param", "p", nil,
		"override a top-level parameter (NAME=VALUE); repeatable")
}

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected string flag, or exit if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Parse the repeatable --param flag into a parameter binding.
func getParamOverrides(cmd *cobra.Command) ast.ParamEnv {
	raw, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	overrides := ast.ParamEnv{}
	//
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			fmt.Printf("malformed parameter override %q (expected NAME=VALUE)\n", item)
			os.Exit(2)
		}
		//
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			fmt.Printf("malformed parameter value %q: %v\n", value, err)
			os.Exit(2)
		}
		//
		overrides[sym.Intern(name)] = v
	}
	//
	return overrides
}
