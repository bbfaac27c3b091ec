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

// Command rechunk moves modules matching bucket rules out of a build's
// initial chunks into shared chunks.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/rechunk/cmd/inject"
	"bennypowers.dev/rechunk/cmd/run"
	"bennypowers.dev/rechunk/cmd/scan"
	"bennypowers.dev/rechunk/cmd/validate"
	"bennypowers.dev/rechunk/cmd/version"
)

var (
	cpuprofile     string
	cpuprofileFile *os.File
	rootCmd        = &cobra.Command{
		Use:   "rechunk",
		Short: "Move modules out of initial chunks into shared bucket chunks",
		Long: `rechunk re-partitions a build's chunk graph. Modules of initial chunks that
match a configured bucket move into one shared chunk per bucket, and the
entrypoints and parents of the new chunks are repaired so the graph stays
loadable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(viper.GetString("log-level")); err != nil {
				return err
			}
			return startProfile(cpuprofile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return stopProfile()
		},
	}
)

func init() {
	// Root flags (persistent across all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Bucket config file (default: rechunk.{yaml,yml,json,jsonc,toml} in the current directory)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file (default: stdout)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write CPU profile to file")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("RECHUNK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Add commands
	rootCmd.AddCommand(run.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(inject.Cmd)
	rootCmd.AddCommand(scan.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

// setupLogging installs a console logger on stderr at the given level.
func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}

// startProfile starts CPU profiling into path, if set.
func startProfile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return errors.Join(fmt.Errorf("could not start CPU profile: %w", err), f.Close())
	}
	cpuprofileFile = f
	return nil
}

func stopProfile() error {
	if cpuprofileFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	f := cpuprofileFile
	cpuprofileFile = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing CPU profile: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
