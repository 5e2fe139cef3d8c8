package bangumi

import (
	"regexp"
	"strings"
	"time"

	"github.com/pders01/anirss/internal/storage"
)

var ovaNameRegex = regexp.MustCompile(`(?i)\b(?:OVA|OAD|Movie)\b|剧场版|劇場版`)

// isOva reports subjects that are not episodic TV and skip offset
// inference, by platform or by a marker in either name.
func isOva(subject *Subject) bool {
	switch strings.TrimSpace(subject.Platform) {
	case "OVA", "OAD", "剧场版", "Movie":
		return true
	}
	return ovaNameRegex.MatchString(subject.Name) || ovaNameRegex.MatchString(subject.NameCN)
}

// Apply merges subject metadata into sub. Fields the subscription already
// carries from its own provider win over the catalog, except the season,
// which follows the catalog name when it names one.
func Apply(subject *Subject, sub *storage.Subscription) {
	if subject == nil || sub == nil {
		return
	}

	name := subject.DisplayName()
	if strings.TrimSpace(sub.Title) == "" {
		sub.Title = name
	}
	if season, ok := ParseSeason(name); ok {
		sub.Season = storage.IntPtr(season)
	}

	if date := subject.AirDate(); !date.IsZero() {
		sub.Year = date.Year()
		sub.Month = int(date.Month())
		sub.Week = isoWeekday(date)
	}

	sub.Score = subject.Rating.Score
	sub.TotalEpisodes = subject.TotalEpisodes
	if sub.TotalEpisodes == 0 {
		sub.TotalEpisodes = subject.Eps
	}

	if image := subject.Images.Large; image != "" {
		sub.Image = image
	} else if sub.Image == "" {
		sub.Image = subject.Images.Common
	}

	if subject.ID > 0 {
		sub.BgmURL = SubjectURL(subject.ID)
	}
	if isOva(subject) {
		sub.Ova = true
	}
}

// isoWeekday numbers Monday 1 through Sunday 7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
