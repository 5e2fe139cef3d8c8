package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Characters that cannot appear in a path segment on any of the platforms
// download folders end up on.
var unsafeSymbols = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

var spaces = regexp.MustCompile(`\s+`)

// CleanTitle turns a display title into something usable as a folder name.
// Full-width ASCII is folded to half width first so that a full-width colon
// is stripped like an ASCII one.
func CleanTitle(title string) string {
	title = norm.NFC.String(width.Fold.String(title))
	title = unsafeSymbols.ReplaceAllString(title, " ")
	title = spaces.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
