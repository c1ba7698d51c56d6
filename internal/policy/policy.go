// Package policy holds the static moderation policy: an ordered list of
// banned terms matched as whole words, plus suspicious link patterns.
// A Set is built once at startup and never mutated.
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/edgard/guardbot/internal/config"
)

// ErrConfiguration is returned when the policy input is absent or malformed.
var ErrConfiguration = errors.New("invalid moderation policy")

// wordChars mirrors a Unicode-aware \w plus combining marks, so a term never
// matches inside a longer word in any script.
const wordChars = `\p{L}\p{M}\p{N}_`

type term struct {
	word string
	re   *regexp.Regexp
}

// Set is an immutable, compiled policy.
type Set struct {
	terms    []term
	patterns []*regexp.Regexp
}

// Load builds a Set from configuration.
func Load(cfg config.ModerationConfig) (*Set, error) {
	return New(cfg.BannedWords, cfg.SuspiciousPatterns)
}

// New compiles the given banned terms and suspicious patterns. Terms are
// case folded and keep their declared order; duplicates after folding are
// dropped. At least one term is required.
func New(terms []string, patterns []string) (*Set, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no banned terms configured", ErrConfiguration)
	}

	s := &Set{
		terms:    make([]term, 0, len(terms)),
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}

	seen := make(map[string]struct{}, len(terms))
	for i, raw := range terms {
		word := Fold(strings.TrimSpace(raw))
		if word == "" {
			return nil, fmt.Errorf("%w: banned term #%d is blank", ErrConfiguration, i+1)
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}

		re, err := regexp.Compile(`(?:^|[^` + wordChars + `])` + regexp.QuoteMeta(word) + `(?:$|[^` + wordChars + `])`)
		if err != nil {
			return nil, fmt.Errorf("%w: banned term %q: %w", ErrConfiguration, raw, err)
		}
		s.terms = append(s.terms, term{word: word, re: re})
	}

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: suspicious pattern %q: %w", ErrConfiguration, p, err)
		}
		s.patterns = append(s.patterns, re)
	}

	return s, nil
}

// Fold strips invisible format characters (zero-width spaces, joiners, soft
// hyphens) and applies Unicode case folding, so "SP\u200bAM" folds to
// "spam". Transformers are stateful, so a chain is built per call.
func Fold(s string) string {
	t := transform.Chain(runes.Remove(runes.In(unicode.Cf)), cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return cases.Fold().String(s)
	}
	return out
}

// Terms returns the folded banned terms in declared order.
func (s *Set) Terms() []string {
	out := make([]string, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.word
	}
	return out
}

// SuspiciousPatterns returns the suspicious link patterns in declared order.
func (s *Set) SuspiciousPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// MatchTerm reports the first banned term, in declared order, that occurs as
// a whole word in folded.
func (s *Set) MatchTerm(folded string) (string, bool) {
	for _, t := range s.terms {
		if t.re.MatchString(folded) {
			return t.word, true
		}
	}
	return "", false
}

// MatchSuspicious returns the first suspicious link found in folded.
func (s *Set) MatchSuspicious(folded string) (string, bool) {
	for _, re := range s.patterns {
		if m := re.FindString(folded); m != "" {
			return m, true
		}
	}
	return "", false
}
