package feed

import (
	"regexp"
	"strconv"
)

// Release titles name the episode in many ways. Patterns are tried in
// order; the first capture wins.
var episodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`第\s*(\d+(?:\.\d+)?)\s*[话話集]`),
	regexp.MustCompile(`(?i)S\d{1,2}\s?E(\d{1,4}(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)\s-\s(\d{1,4}(?:\.\d+)?)(?:v\d+)?(?:\s|\[|\(|【|$)`),
	regexp.MustCompile(`(?i)\bEP?\s?(\d{1,4}(?:\.\d+)?)(?:v\d+)?\b`),
	regexp.MustCompile(`(?i)[\[【]\s*(\d{1,3}(?:\.\d+)?)\s*(?:v\d+)?\s*(?:END|完)?\s*[\]】]`),
	regexp.MustCompile(`#(\d{1,4}(?:\.\d+)?)`),
}

// ParseEpisode extracts the episode number from a release title.
func ParseEpisode(title string) (float64, bool) {
	for _, re := range episodePatterns {
		m := re.FindStringSubmatch(title)
		if len(m) < 2 {
			continue
		}
		ep, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return ep, true
	}
	return 0, false
}
