// Package download works out where a subscription's episodes are saved.
package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/pders01/anirss/internal/config"
	"github.com/pders01/anirss/internal/storage"
)

// Template variables. Unknown ${names} are left in place.
const (
	VarTitle        = "title"
	VarSeason       = "season"
	VarSeasonFormat = "seasonFormat"
	VarLetter       = "letter"
	VarYear         = "year"
	VarSubgroup     = "subgroup"
)

const defaultSeasonFormat = "%02d"

type PathResolver struct {
	template     string
	ovaTemplate  string
	seasonFormat string
}

func NewPathResolver(cfg config.DownloadConfig) *PathResolver {
	r := &PathResolver{
		template:     strings.TrimSpace(cfg.PathTemplate),
		ovaTemplate:  strings.TrimSpace(cfg.OvaPathTemplate),
		seasonFormat: cfg.SeasonFormat,
	}
	if r.ovaTemplate == "" {
		r.ovaTemplate = r.template
	}
	if !validSeasonFormat(r.seasonFormat) {
		r.seasonFormat = defaultSeasonFormat
	}
	return r
}

// Paths returns the download folder for sub followed by the same folder
// without its season component, for layouts that keep every season of a
// show together. OVA records have a single path.
func (r *PathResolver) Paths(sub *storage.Subscription) []string {
	vars := r.vars(sub)
	expand := func(tmpl string) string {
		return filepath.Clean(os.Expand(tmpl, func(name string) string {
			if v, ok := vars[name]; ok {
				return v
			}
			return "${" + name + "}"
		}))
	}

	if sub.Ova {
		return []string{expand(r.ovaTemplate)}
	}

	primary := expand(r.template)
	paths := []string{primary}

	dir, last := filepath.Split(filepath.Clean(r.template))
	if dir != "" && mentionsSeason(last) {
		if fallback := expand(dir); fallback != primary {
			paths = append(paths, fallback)
		}
	}
	return paths
}

func (r *PathResolver) vars(sub *storage.Subscription) map[string]string {
	season := sub.SeasonNumber()
	year := ""
	if sub.Year > 0 {
		year = strconv.Itoa(sub.Year)
	}
	return map[string]string{
		VarTitle:        sub.Title,
		VarSeason:       strconv.Itoa(season),
		VarSeasonFormat: fmt.Sprintf(r.seasonFormat, season),
		VarLetter:       Letter(sub.Title),
		VarYear:         year,
		VarSubgroup:     sub.Subgroup,
	}
}

// validSeasonFormat accepts formats that render one integer cleanly.
func validSeasonFormat(format string) bool {
	if !strings.Contains(format, "%") {
		return false
	}
	return !strings.Contains(fmt.Sprintf(format, 1), "%!")
}

func mentionsSeason(segment string) bool {
	return strings.Contains(segment, "${"+VarSeason+"}") ||
		strings.Contains(segment, "${"+VarSeasonFormat+"}")
}

// Letter is the index folder for a title: its upper-cased first Latin
// letter, "0" for a leading digit and "#" for anything else.
func Letter(title string) string {
	title = width.Fold.String(strings.TrimSpace(title))
	for _, r := range title {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			return string(unicode.ToUpper(r))
		case unicode.IsDigit(r):
			return "0"
		default:
			return "#"
		}
	}
	return "#"
}
