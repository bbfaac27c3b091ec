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
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"bennypowers.dev/rechunk/bucket"
	"bennypowers.dev/rechunk/chunkgraph"
)

// Table writes one row per chunk: name, module count, parents, and
// entrypoints.
func Table(w io.Writer, g *chunkgraph.Graph) {
	rows := make([][]string, 0, len(g.Chunks()))
	for _, c := range g.Chunks() {
		rows = append(rows, []string{
			c.String(),
			strconv.Itoa(len(c.Modules())),
			join(c.Parents()),
			join(c.Entrypoints()),
		})
	}
	render(w, []string{"Chunk", "Modules", "Parents", "Entrypoints"}, rows)
}

// Buckets writes one row per bucket in priority order.
func Buckets(w io.Writer, reg *bucket.Registry) {
	rows := make([][]string, 0, reg.Len())
	for i, b := range reg.Buckets() {
		only := "*"
		if names := b.Only(); names != nil {
			only = strings.Join(names, ", ")
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			b.Name(),
			b.Pattern(),
			only,
			strings.Join(b.Except(), ", "),
		})
	}
	render(w, []string{"#", "Bucket", "Pattern", "Only", "Except"}, rows)
}

func render(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
}

func join[T interface{ String() string }](items []T) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.String()
	}
	return strings.Join(names, ", ")
}
