package discovery

import (
	"context"
	"testing"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	names := []string{
		"TestTitle (ChromeTests)",
		"TestDownloadFile (ChromeTests)",
		"TestDownloadFile (FirefoxTests#2)",
		"TestAcceptLanguages (FirefoxTests#2)",
	}

	tests := []struct {
		name     string
		names    []string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			names:    names,
			pattern:  "",
			expected: 4,
		},
		{
			name:     "wildcard pattern matches suffix",
			names:    names,
			pattern:  "*(ChromeTests)",
			expected: 2,
		},
		{
			name:     "wildcard pattern matches substring",
			names:    names,
			pattern:  "*Download*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			names:    names,
			pattern:  "FirefoxTests#2",
			expected: 2,
		},
		{
			name:     "ordered parts",
			names:    names,
			pattern:  "*Download*Firefox*",
			expected: 1,
		},
		{
			name:     "question mark",
			names:    names,
			pattern:  "TestTitle (?hromeTests)",
			expected: 1,
		},
		{
			name:     "no matches",
			names:    names,
			pattern:  "*EdgeTests*",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.names, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d: %v", tt.expected, len(result), result)
			}
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty name list", func(t *testing.T) {
		result := filter.FilterByName([]string{}, "*Tests*")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("only wildcards", func(t *testing.T) {
		result := filter.FilterByName([]string{"TestTitle (EdgeTests)"}, "**")
		if len(result) != 1 {
			t.Errorf("expected 1 match, got %d", len(result))
		}
	})
}

func group(name string, cases ...string) domain.TestGroup {
	g := domain.Group{GroupName: name}
	for _, c := range cases {
		g.Members = append(g.Members, domain.CaseFunc{
			CaseName: c + " (" + name + ")",
			Fn:       func(context.Context) domain.Result { return domain.Result{} },
		})
	}
	return g
}

func TestFilter_FilterGroups(t *testing.T) {
	filter := NewFilter()
	groups := []domain.TestGroup{
		group("FirefoxTests", "TestTitle", "TestAcceptLanguages"),
		group("ChromeTests", "TestTitle", "TestPlayVideo"),
		group("EdgeTests", "TestPlayVideo"),
	}

	if got := filter.FilterGroups(groups, ""); len(got) != 3 {
		t.Fatalf("empty pattern: expected 3 groups, got %d", len(got))
	}

	got := filter.FilterGroups(groups, "TestTitle*")
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	for i, want := range []string{"FirefoxTests", "ChromeTests"} {
		if got[i].Name() != want {
			t.Errorf("group %d: expected %s, got %s", i, want, got[i].Name())
		}
		if n := len(got[i].Cases()); n != 1 {
			t.Errorf("group %s: expected 1 case, got %d", want, n)
		}
	}

	if got := filter.FilterGroups(groups, "*Safari*"); len(got) != 0 {
		t.Errorf("expected no groups, got %d", len(got))
	}
}
