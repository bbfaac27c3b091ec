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
package bucket

import (
	"errors"
	"fmt"
	"strings"
)

// usage is appended to every configuration error.
const usage = `use buckets: [{name: "vendor", test: "node_modules/"}]`

var (
	ErrMissingName    = errors.New("a name is required for each bucket")
	ErrMissingTest    = errors.New("a test, glob, or match predicate is required for each bucket")
	ErrAmbiguousTest  = errors.New("only one of test, glob, or match may be set")
	ErrDuplicateName  = errors.New("bucket names must be unique")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrEmptyChunkName = errors.New("chunk names must not be empty")
	ErrEmptyOnly      = errors.New("only must list at least one chunk name when present")
)

// ConfigurationError reports an invalid bucket specification.
type ConfigurationError struct {
	Index  int    // Position of the bucket in the configured list, or -1
	Bucket string // Bucket name, if known
	Field  string // Offending field
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid rechunk configuration: ")
	b.WriteString(usage)
	b.WriteString(" > ")
	if e.Index >= 0 {
		fmt.Fprintf(&b, "bucket #%d", e.Index)
		if e.Bucket != "" {
			fmt.Fprintf(&b, " (%q)", e.Bucket)
		}
		b.WriteString(": ")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
