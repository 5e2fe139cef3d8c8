package textutil

import "golang.org/x/text/width"

const ellipsis = "…"

// cells returns the terminal width of r. East Asian wide runes take two.
func cells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	n := 0
	for _, r := range s {
		n += cells(r)
	}
	return n
}

// TruncateEnd shortens s to at most limit cells, appending an ellipsis if
// truncation occurs.
func TruncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if Width(s) <= limit {
		return s
	}
	if limit <= 1 {
		return ellipsis
	}
	budget := limit - 1
	out := make([]rune, 0, len(s))
	for _, r := range s {
		w := cells(r)
		if w > budget {
			break
		}
		budget -= w
		out = append(out, r)
	}
	return string(out) + ellipsis
}

// TruncateMiddle keeps the start and end of s with a single ellipsis in the
// middle. Used for URLs and paths where both ends carry meaning.
func TruncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if Width(s) <= limit {
		return s
	}
	if limit <= 1 {
		return ellipsis
	}
	r := []rune(s)
	keep := limit - 1
	leftBudget := keep / 2
	rightBudget := keep - leftBudget

	left := 0
	for left < len(r) && cells(r[left]) <= leftBudget {
		leftBudget -= cells(r[left])
		left++
	}
	right := len(r)
	for right > left && cells(r[right-1]) <= rightBudget {
		rightBudget -= cells(r[right-1])
		right--
	}
	return string(r[:left]) + ellipsis + string(r[right:])
}
