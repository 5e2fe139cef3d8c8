package feed

import (
	"regexp"
	"strings"
)

// Matcher tests titles against exclusion patterns. Patterns are
// case-insensitive regular expressions; one that does not compile is
// matched as a plain substring instead.
type Matcher struct {
	res       []*regexp.Regexp
	substrs   []string
	hasFilter bool
}

func NewMatcher(patterns ...[]string) *Matcher {
	m := &Matcher{}
	for _, list := range patterns {
		for _, p := range list {
			if strings.TrimSpace(p) == "" {
				continue
			}
			m.hasFilter = true
			if re, err := regexp.Compile("(?i)" + p); err == nil {
				m.res = append(m.res, re)
				continue
			}
			m.substrs = append(m.substrs, strings.ToLower(p))
		}
	}
	return m
}

// Match reports whether title hits any pattern.
func (m *Matcher) Match(title string) bool {
	if !m.hasFilter {
		return false
	}
	for _, re := range m.res {
		if re.MatchString(title) {
			return true
		}
	}
	lower := strings.ToLower(title)
	for _, s := range m.substrs {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// MergeExclude returns base followed by the entries of extra not already
// present, with duplicates dropped.
func MergeExclude(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}
	return result
}
