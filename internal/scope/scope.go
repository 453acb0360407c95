// Package scope builds the trace predicate: the decision of whether a
// source unit belongs to the measurement, and under which canonical name
// its covered lines are attributed.
//
// The tracer core memoizes decisions per unit identifier, so nothing here
// sits on the event hot path; canonicalization cost is paid once per unit.
package scope

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"covtrace/internal/tracer"
)

// Canonical returns the canonical form of a unit identifier: NFC-normalized,
// slash-separated, with redundant path components removed. Hosts hand out
// unit identifiers in whatever form their loader produced; canonicalizing
// keeps one unit from being counted under two spellings.
func Canonical(unit string) string {
	unit = norm.NFC.String(unit)
	unit = strings.ReplaceAll(unit, "\\", "/")
	return path.Clean(unit)
}

// Matcher decides which source units are measured. The zero value accepts
// every non-synthetic unit.
type Matcher struct {
	include []string // canonical root prefixes; empty means everything
	omit    []string // canonical prefixes to skip
}

// NewMatcher creates a Matcher accepting units under any of the include
// roots (all units, if none are given) and rejecting units under any omit
// prefix. Omit wins over include.
func NewMatcher(include, omit []string) *Matcher {
	m := &Matcher{}
	for _, root := range include {
		if root != "" {
			m.include = append(m.include, Canonical(root))
		}
	}
	for _, prefix := range omit {
		if prefix != "" {
			m.omit = append(m.omit, Canonical(prefix))
		}
	}
	return m
}

// Match returns the canonical trace tag for unit, or NoTag if the unit is
// outside the measurement.
func (m *Matcher) Match(unit string) tracer.Tag {
	name := Canonical(unit)

	// Synthetic units ("<string>", "<stdin>", ...) have no source to
	// report against; tracing them produces data nothing can consume.
	if strings.HasPrefix(name, "<") {
		return tracer.NoTag
	}
	for _, prefix := range m.omit {
		if underPrefix(name, prefix) {
			return tracer.NoTag
		}
	}
	if len(m.include) > 0 {
		for _, root := range m.include {
			if underPrefix(name, root) {
				return tracer.Tag(name)
			}
		}
		return tracer.NoTag
	}
	return tracer.Tag(name)
}

// Predicate adapts the Matcher to the tracer's predicate contract.
func (m *Matcher) Predicate() tracer.Predicate {
	return func(unit string, _ tracer.Frame) (tracer.Tag, error) {
		return m.Match(unit), nil
	}
}

// underPrefix reports whether name equals prefix or lives underneath it as
// a path component boundary ("src/ab" is not under "src/a").
func underPrefix(name, prefix string) bool {
	if name == prefix {
		return true
	}
	return strings.HasPrefix(name, prefix+"/")
}
