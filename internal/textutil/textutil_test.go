package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"葬送的芙莉莲", "葬送的芙莉莲"},
		{"Re:ゼロから始める異世界生活", "Re ゼロから始める異世界生活"},
		{"Re：ゼロから始める異世界生活", "Re ゼロから始める異世界生活"},
		{"Fate/stay night", "Fate stay night"},
		{`Who? "Me" <you> | them*`, "Who Me you them"},
		{"  Ｆｒｉｅｒｅｎ  ", "Frieren"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.in))
		})
	}
}

func TestTruncateEnd(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"no truncation", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ascii", "hello world", 6, "hello…"},
		{"zero", "hello", 0, ""},
		{"one", "hello", 1, "…"},
		{"wide runes", "葬送的芙莉莲", 7, "葬送的…"},
		{"wide rune does not split", "葬送的芙莉莲", 6, "葬送…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateEnd(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, Width(got), max(tt.limit, 0))
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "https://example.com", TruncateMiddle("https://example.com", 40))
	assert.Equal(t, "abc…xyz", TruncateMiddle("abcdefghijklmnopqrstuvwxyz", 7))
	assert.Equal(t, "…", TruncateMiddle("abcdef", 1))
	assert.Equal(t, "", TruncateMiddle("abcdef", -1))
	assert.LessOrEqual(t, Width(TruncateMiddle("葬送的芙莉莲第二季", 9)), 9)
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 5, Width("hello"))
	assert.Equal(t, 4, Width("葬送"))
	assert.Equal(t, 0, Width(""))
}
