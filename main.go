/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Command lega keeps monorepo manifests in sync with what the sources
// actually import.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/lega/cmd/check"
	"bennypowers.dev/lega/cmd/graph"
	"bennypowers.dev/lega/cmd/sync"
	"bennypowers.dev/lega/cmd/version"
)

var (
	cpuprofile     string
	cpuprofileFile *os.File
	rootCmd        = &cobra.Command{
		Use:   "lega",
		Short: "Keep workspace manifests in sync with source imports",
		Long: `lega scans a JS/TS monorepo, resolves which workspace packages each
project imports, and keeps package.json dependencies and tsconfig.json
paths and references in sync with the sources.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				cpuprofileFile = f
				if err := pprof.StartCPUProfile(f); err != nil {
					closeErr := f.Close()
					return errors.Join(
						fmt.Errorf("could not start CPU profile: %w", err),
						closeErr,
					)
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofileFile != nil {
				pprof.StopCPUProfile()
				if err := cpuprofileFile.Close(); err != nil {
					return fmt.Errorf("closing CPU profile: %w", err)
				}
			}
			return nil
		},
	}
)

func init() {
	// Root flags (persistent across all commands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write CPU profile to file")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add commands
	rootCmd.AddCommand(sync.Cmd)
	rootCmd.AddCommand(check.Cmd)
	rootCmd.AddCommand(graph.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
