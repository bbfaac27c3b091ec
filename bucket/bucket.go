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

// Package bucket provides the ordered registry of module selection rules.
// A bucket pairs a predicate over a module's resource path with optional
// allow and deny lists of initial chunk names. Registry order is match
// priority: the first bucket that matches a module and admits its chunk wins.
package bucket

import (
	"fmt"
	"slices"
)

// Spec is a raw bucket specification, as written in code or decoded from a
// config file. Exactly one of Test, Glob, or Match must be set.
type Spec struct {
	// Name names the bucket and the chunk created for it.
	Name string `mapstructure:"name" json:"name"`
	// Test is a regular expression searched for in the module resource.
	Test string `mapstructure:"test" json:"test,omitempty"`
	// Glob is a doublestar pattern matched against the module resource.
	Glob string `mapstructure:"glob" json:"glob,omitempty"`
	// Match is an already compiled predicate.
	Match Matcher `mapstructure:"-" json:"-"`
	// Only restricts the bucket to these initial chunk names. Nil means every
	// chunk; a non-nil empty list is rejected.
	Only []string `mapstructure:"only" json:"only,omitempty"`
	// Except excludes these initial chunk names. Except wins over Only.
	Except []string `mapstructure:"except" json:"except,omitempty"`
}

// Bucket is a validated selection rule.
type Bucket struct {
	name    string
	pattern string
	match   Matcher
	only    []string // nil when absent
	except  []string
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// Pattern describes the bucket predicate as configured, e.g. "test: node_modules/".
func (b *Bucket) Pattern() string {
	return b.pattern
}

// Only returns the allowlist, or nil when the bucket applies to every chunk.
func (b *Bucket) Only() []string {
	return slices.Clone(b.only)
}

// Except returns the denylist.
func (b *Bucket) Except() []string {
	return slices.Clone(b.except)
}

// Matches reports whether the bucket predicate accepts the module resource.
func (b *Bucket) Matches(resource string) bool {
	return b.match(resource)
}

// Allows reports whether modules of the named chunk may be routed to this
// bucket. The denylist is consulted first, so a chunk named in both lists
// is excluded.
func (b *Bucket) Allows(chunkName string) bool {
	if slices.Contains(b.except, chunkName) {
		return false
	}
	if b.only != nil && !slices.Contains(b.only, chunkName) {
		return false
	}
	return true
}

// Registry is the immutable, ordered list of buckets.
type Registry struct {
	buckets []*Bucket
}

// New validates specs in order and returns the registry. Construction is
// atomic: on the first invalid spec it returns a *ConfigurationError and no
// registry.
func New(specs []Spec) (*Registry, error) {
	buckets := make([]*Bucket, 0, len(specs))
	seen := make(map[string]bool, len(specs))

	for i, spec := range specs {
		b, err := newBucket(i, spec)
		if err != nil {
			return nil, err
		}
		if seen[b.name] {
			return nil, &ConfigurationError{Index: i, Bucket: b.name, Field: "name", Err: ErrDuplicateName}
		}
		seen[b.name] = true
		buckets = append(buckets, b)
	}

	return &Registry{buckets: buckets}, nil
}

func newBucket(i int, spec Spec) (*Bucket, error) {
	if spec.Name == "" {
		return nil, &ConfigurationError{Index: i, Field: "name", Err: ErrMissingName}
	}

	match, err := compileMatcher(spec)
	if err != nil {
		return nil, &ConfigurationError{Index: i, Bucket: spec.Name, Field: "test", Err: err}
	}

	if spec.Only != nil && len(spec.Only) == 0 {
		return nil, &ConfigurationError{Index: i, Bucket: spec.Name, Field: "only", Err: ErrEmptyOnly}
	}
	only, err := normalizeNames(spec.Only)
	if err != nil {
		return nil, &ConfigurationError{Index: i, Bucket: spec.Name, Field: "only", Err: err}
	}
	except, err := normalizeNames(spec.Except)
	if err != nil {
		return nil, &ConfigurationError{Index: i, Bucket: spec.Name, Field: "except", Err: err}
	}
	if except == nil {
		except = []string{}
	}

	return &Bucket{
		name:    spec.Name,
		pattern: describe(spec),
		match:   match,
		only:    only,
		except:  except,
	}, nil
}

func describe(spec Spec) string {
	switch {
	case spec.Test != "":
		return "test: " + spec.Test
	case spec.Glob != "":
		return "glob: " + spec.Glob
	default:
		return "match: func"
	}
}

// normalizeNames copies a chunk name list, dropping duplicates.
// A nil list stays nil.
func normalizeNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, ErrEmptyChunkName
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Buckets returns the buckets in priority order.
func (r *Registry) Buckets() []*Bucket {
	return slices.Clone(r.buckets)
}

// Len returns the number of buckets.
func (r *Registry) Len() int {
	return len(r.buckets)
}

// Lookup returns the first bucket, in priority order, that matches the module
// resource and allows the chunk. Buckets whose chunk filters reject the chunk
// are skipped, so a later matching bucket can still take the module; the
// search does not stop at the first bucket whose test matches. Returns nil if
// no bucket survives.
func (r *Registry) Lookup(resource, chunkName string) *Bucket {
	for _, b := range r.buckets {
		if !b.Matches(resource) {
			continue
		}
		if !b.Allows(chunkName) {
			continue
		}
		return b
	}
	return nil
}

// String returns a short description of the bucket for logs and tables.
func (b *Bucket) String() string {
	return fmt.Sprintf("%s(only=%v except=%v)", b.name, b.only, b.except)
}
