package bangumi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeason(t *testing.T) {
	tests := []struct {
		name   string
		season int
		ok     bool
	}{
		{"葬送的芙莉莲 第二季", 2, true},
		{"进击的巨人 第3季", 3, true},
		{"某科学的超电磁炮 第十一季", 11, true},
		{"银魂 第二十季", 20, true},
		{"Kaguya-sama Season 2", 2, true},
		{"Mushoku Tensei 2nd Season", 2, true},
		{"Spy x Family S2", 2, true},
		{"鬼灭之刃 第2期", 2, true},
		{"葬送的芙莉莲", 0, false},
		{"Steins;Gate 0", 0, false},
		{"第零季", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			season, ok := ParseSeason(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.season, season)
		})
	}
}

func TestStripSeason(t *testing.T) {
	assert.Equal(t, "葬送的芙莉莲", StripSeason("葬送的芙莉莲 第二季"))
	assert.Equal(t, "Mushoku Tensei", StripSeason("Mushoku Tensei 2nd Season"))
	assert.Equal(t, "Kaguya-sama", StripSeason("Kaguya-sama Season 2"))
	assert.Equal(t, "Spy x Family", StripSeason("Spy x Family S2"))
	assert.Equal(t, "Frieren", StripSeason("Frieren"))
}
