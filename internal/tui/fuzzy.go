package tui

import (
	"unicode"
	"unicode/utf8"
)

// fuzzyScore reports whether every rune of query appears in target in
// order, ignoring case, and how well it matched. Runs of adjacent matches,
// a match on the first rune and matches right after a separator score
// higher.
func fuzzyScore(query, target string) (int, bool) {
	if query == "" {
		return 0, true
	}

	q := []rune(query)
	qi, score, run := 0, 0, 0
	prev := rune(0)
	for i, r := range target {
		if qi == len(q) {
			break
		}
		if unicode.ToLower(r) != unicode.ToLower(q[qi]) {
			run = 0
			prev = r
			continue
		}
		qi++
		run++
		score += run
		switch {
		case i == 0:
			score += 3
		case prev == ' ' || prev == '-' || prev == '_' || prev == '/':
			score += 2
		}
		prev = r
	}
	return score, qi == utf8.RuneCountInString(query)
}
