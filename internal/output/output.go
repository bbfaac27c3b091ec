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

// Package output provides shared output utilities for rechunk CLI commands.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"bennypowers.dev/rechunk/fs"
)

// Write sends data to stdout, or to the file named by viper's "output" flag,
// creating its directory as needed.
func Write(osfs fs.FileSystem, data []byte) error {
	if outputPath := viper.GetString("output"); outputPath != "" {
		if err := osfs.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := osfs.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		return nil
	}
	_, err := os.Stdout.Write(data)
	return err
}
