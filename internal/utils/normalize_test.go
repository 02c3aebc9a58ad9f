package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "musculacao livre", Fold("  Musculação \t Livre "))
	assert.Equal(t, "", Fold("   "))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Jiu-Jitsu Brasileiro": "jiu-jitsu-brasileiro",
		"  Pilates & Yoga  ":   "pilates-yoga",
		"Ginástica_Funcional":  "ginastica-funcional",
		"!!!":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Yoga", "yoga ", "", "Crossfit", "Natação"})
	assert.Equal(t, []string{"crossfit", "natacao", "yoga"}, got)
}

func TestSearchTokens(t *testing.T) {
	got := SearchTokens("Academia São Jorge", "a", "jorge")
	assert.Equal(t, []string{"academia sao jorge", "academia", "sao", "jorge", "a"}, got)
}

func TestTrimMax(t *testing.T) {
	assert.Equal(t, "ação", TrimMax(" ação e reação ", 4))
	assert.Equal(t, "ok", TrimMax("ok", 10))
	assert.True(t, IsBlank(" \n"))
}
