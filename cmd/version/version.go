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

// Package version provides the version command for rechunk.
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"bennypowers.dev/rechunk/internal/version"
)

// Cmd prints the version rechunk was built as.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the rechunk version and the build it came from.

--short prints only the version, for scripts. --format json prints every
known build field.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	Cmd.Flags().Bool("short", false, "Print only the version")
}

func run(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	short, _ := cmd.Flags().GetBool("short")
	w := cmd.OutOrStdout()

	switch {
	case short:
		_, err := fmt.Fprintln(w, version.GetVersion())
		return err
	case format == "json":
		out, err := json.MarshalIndent(version.GetBuildInfo(), "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling version info: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case format == "text":
		return writeText(w)
	default:
		return fmt.Errorf("invalid format %q: must be one of text, json", format)
	}
}

// writeText prints the full version, then the known build fields.
func writeText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "rechunk %s\n", version.GetFullVersion()); err != nil {
		return err
	}
	info := version.GetBuildInfo()
	for _, key := range []string{"buildTime", "goVersion"} {
		if v := info[key]; v != "" && v != "unknown" {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", key, v); err != nil {
				return err
			}
		}
	}
	if info["gitDirty"] == "dirty" && !slices.Contains([]string{"", "unknown"}, info["gitCommit"]) {
		_, err := fmt.Fprintln(w, "  built from a modified working tree")
		return err
	}
	return nil
}
