package discovery

import (
	"path"
	"strings"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Filter selects test cases by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters case names by pattern using wildcard matching.
// Supports patterns like "*(ChromeTests)" or "*Download*"; a pattern without
// wildcards matches any name containing it.
func (f *Filter) FilterByName(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}

	var filtered []string
	for _, name := range names {
		if f.Match(name, pattern) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// Match reports whether a single case name matches pattern
func (f *Filter) Match(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	// Case names hold no '/', so path.Match sees the whole name
	if matched, err := path.Match(pattern, name); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") {
		// Fall back to an ordered substring match, so "*User*Test" also finds
		// names with brackets that path.Match would read as a class
		rest := name
		hasPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasPart = true
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
		}
		return hasPart
	}

	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}

// FilterGroups keeps only the cases whose names match pattern. Groups left
// without cases are dropped.
func (f *Filter) FilterGroups(groups []domain.TestGroup, pattern string) []domain.TestGroup {
	if pattern == "" {
		return groups
	}

	var filtered []domain.TestGroup
	for _, g := range groups {
		var cases []domain.TestCase
		for _, c := range g.Cases() {
			if f.Match(c.Name(), pattern) {
				cases = append(cases, c)
			}
		}
		if len(cases) > 0 {
			filtered = append(filtered, domain.Group{GroupName: g.Name(), Members: cases})
		}
	}
	return filtered
}
