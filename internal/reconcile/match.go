// Package reconcile turns raw imported rows into reviewable candidate shifts: roster name
// matching, date and time normalisation, role inference, bulk remediation and the commit gate.
package reconcile

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mozillazg/go-pinyin"
	"github.com/rotadesk/rota/backend/internal/domain"
)

// DefaultThreshold is the score a fuzzy candidate must exceed to be accepted.
const DefaultThreshold = 15

const (
	scoreContains        = 20
	scoreFirstTokenExact = 10
	scoreFirstTokenPart  = 8
	scoreLastTokenExact  = 10
	scoreLastTokenPart   = 8
)

// typo tolerance for single tokens: one edit, on tokens of at least three letters
const (
	maxTokenEdits   = 1
	minTypoTokenLen = 3
)

type candidate struct {
	user  *domain.User
	names []string // normalised full name, plus its romanised form for Han names
}

// Matcher resolves free-text names against a staff roster.
type Matcher struct {
	candidates []candidate
	threshold  int
}

func NewMatcher(roster []*domain.User, threshold int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	m := &Matcher{threshold: threshold}
	for _, u := range roster {
		c := candidate{user: u, names: []string{normalizeName(u.FullName)}}
		if containsHan(u.FullName) {
			c.names = append(c.names, romanise(u.FullName))
		}
		m.candidates = append(m.candidates, c)
	}
	return m
}

// Match returns the matched user's id, domain.MatchOpen for an empty name, or
// domain.MatchUnknown when nobody on the roster is close enough.
func (m *Matcher) Match(rawName string) string {
	input := normalizeName(rawName)
	if input == "" {
		return domain.MatchOpen
	}

	for _, c := range m.candidates {
		for _, name := range c.names {
			if name == input {
				return c.user.ID
			}
		}
	}

	best, bestScore := "", 0
	for _, c := range m.candidates {
		for _, name := range c.names {
			if s := score(input, name); s > bestScore {
				best, bestScore = c.user.ID, s
			}
		}
	}

	if bestScore > m.threshold {
		return best
	}
	return domain.MatchUnknown
}

// score rates how likely input refers to name. Both arguments are already normalised.
func score(input, name string) int {
	s := 0
	if strings.Contains(name, input) {
		s += scoreContains
	}

	in, full := strings.Fields(input), strings.Fields(name)
	if len(in) == 0 || len(full) == 0 {
		return s
	}

	switch inFirst, fullFirst := in[0], full[0]; {
	case inFirst == fullFirst:
		s += scoreFirstTokenExact
	case strings.Contains(inFirst, fullFirst) || strings.Contains(fullFirst, inFirst) || nearToken(inFirst, fullFirst):
		s += scoreFirstTokenPart
	}

	switch inLast, fullLast := in[len(in)-1], full[len(full)-1]; {
	case inLast == fullLast:
		s += scoreLastTokenExact
	case len(in) > 1 && nearToken(inLast, fullLast):
		s += scoreLastTokenPart
	}
	return s
}

// nearToken reports a single-letter typo ("bela" for "bella", "smth" for "smith").
func nearToken(a, b string) bool {
	if len([]rune(a)) < minTypoTokenLen || len([]rune(b)) < minTypoTokenLen {
		return false
	}
	return fuzzy.LevenshteinDistance(a, b) <= maxTokenEdits
}

var quotes = strings.NewReplacer(`"`, "", "'", "", "‘", "", "’", "", "“", "", "”", "", "`", "")

func normalizeName(name string) string {
	name = strings.ToLower(quotes.Replace(name))
	return strings.Join(strings.Fields(name), " ")
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// romanise spells a Han-character name in toneless pinyin, one token per character.
func romanise(name string) string {
	return strings.Join(pinyin.LazyConvert(name, nil), " ")
}
