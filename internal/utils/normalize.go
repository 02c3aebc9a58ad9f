package utils

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wsRe      = regexp.MustCompile(`\s+`)
	multiDash = regexp.MustCompile(`-+`)
)

// Fold lowercases s, collapses whitespace and strips diacritics, so
// "Musculação  Livre" becomes "musculacao livre".
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = wsRe.ReplaceAllString(strings.TrimSpace(out), " ")
	return strings.ToLower(out)
}

func Slugify(name string) string {
	folded := Fold(name)
	if folded == "" {
		return ""
	}
	b := make([]rune, 0, len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b = append(b, r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b = append(b, '-')
		}
	}
	out := multiDash.ReplaceAllString(string(b), "-")
	return strings.Trim(out, "-")
}

// NormalizeTags slugifies tags, dropping blanks and duplicates. The result is sorted.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		s := Slugify(t)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SearchTokens returns each folded input plus its words of two or more letters.
func SearchTokens(strs ...string) []string {
	tokens := make([]string, 0)
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		tokens = append(tokens, s)
	}
	for _, s := range strs {
		folded := Fold(s)
		add(folded)
		for _, word := range strings.Fields(folded) {
			if len([]rune(word)) >= 2 {
				add(word)
			}
		}
	}
	return tokens
}

// TrimMax trims s and cuts it to at most max runes.
func TrimMax(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
