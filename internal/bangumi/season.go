package bangumi

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	seasonCJKDigits = regexp.MustCompile(`第\s*(\d+)\s*[季期]`)
	seasonCJKWords  = regexp.MustCompile(`第\s*([零一二三四五六七八九十]+)\s*[季期]`)
	seasonEnglish   = regexp.MustCompile(`(?i)\bSeason\s*(\d+)\b`)
	seasonOrdinal   = regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)\s+Season\b`)
	seasonShort     = regexp.MustCompile(`(?i)\bS(\d{1,2})\b`)

	// Applied by StripSeason. Order matters: the longer forms go first.
	seasonMarkers = []*regexp.Regexp{
		regexp.MustCompile(`\s*第\s*[零一二三四五六七八九十\d]+\s*[季期]`),
		regexp.MustCompile(`(?i)\s*\b\d+(?:st|nd|rd|th)\s+Season\b`),
		regexp.MustCompile(`(?i)\s*\bSeason\s*\d+\b`),
		regexp.MustCompile(`(?i)\s*\bS\d{1,2}\b`),
	}
)

var cjkDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// ParseSeason finds a season number in a show name. It recognises 第二季,
// 第2季, Season 2, 2nd Season and S2.
func ParseSeason(name string) (int, bool) {
	if m := seasonCJKDigits.FindStringSubmatch(name); m != nil {
		return atoiPositive(m[1])
	}
	if m := seasonCJKWords.FindStringSubmatch(name); m != nil {
		n := parseCJKNumber(m[1])
		return n, n > 0
	}
	for _, re := range []*regexp.Regexp{seasonEnglish, seasonOrdinal, seasonShort} {
		if m := re.FindStringSubmatch(name); m != nil {
			return atoiPositive(m[1])
		}
	}
	return 0, false
}

// StripSeason removes season markers from a show name.
func StripSeason(name string) string {
	for _, re := range seasonMarkers {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

func atoiPositive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseCJKNumber handles 一 through 九十九.
func parseCJKNumber(s string) int {
	total, current := 0, 0
	for _, r := range s {
		if r == '十' {
			if current == 0 {
				current = 1
			}
			total += current * 10
			current = 0
			continue
		}
		d, ok := cjkDigits[r]
		if !ok {
			return 0
		}
		current = d
	}
	return total + current
}
