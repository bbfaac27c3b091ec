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

package report

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"bennypowers.dev/rechunk/chunkgraph"
)

// Diff returns a unified diff between the listings of two graph states.
// It returns an empty string when nothing changed.
func Diff(before, after *chunkgraph.Stats) (string, error) {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Listing(before)),
		B:        difflib.SplitLines(Listing(after)),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("diffing chunk graphs: %w", err)
	}
	return s, nil
}
