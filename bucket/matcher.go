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
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher reports whether a module resource belongs to a bucket.
type Matcher func(resource string) bool

// compileMatcher turns the pattern fields of a spec into a single predicate.
// Patterns are compiled here, once, rather than on every match.
func compileMatcher(spec Spec) (Matcher, error) {
	set := 0
	for _, given := range []bool{spec.Test != "", spec.Glob != "", spec.Match != nil} {
		if given {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, ErrMissingTest
	case set > 1:
		return nil, ErrAmbiguousTest
	}

	switch {
	case spec.Match != nil:
		return spec.Match, nil
	case spec.Glob != "":
		return GlobMatcher(spec.Glob)
	default:
		return RegexpMatcher(spec.Test)
	}
}

// RegexpMatcher compiles pattern and returns a predicate that reports whether
// the pattern occurs anywhere in the resource.
func RegexpMatcher(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return re.MatchString, nil
}

// GlobMatcher validates a doublestar pattern and returns a predicate that
// matches it against the whole resource path.
func GlobMatcher(pattern string) (Matcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, doublestar.ErrBadPattern)
	}
	return func(resource string) bool {
		// The pattern was validated above, so the error is always nil.
		ok, _ := doublestar.Match(pattern, resource)
		return ok
	}, nil
}
