// Package moderation classifies group messages against the banned-term
// policy and carries out the corrective action for violations: delete the
// message, post a warning, and remove the warning after a delay.
package moderation

import (
	"unicode/utf16"

	"github.com/edgard/guardbot/internal/policy"
)

// Verdict is the outcome of evaluating one message. The zero value is Clean.
type Verdict struct {
	// MatchedTerm is the banned term that matched, empty when clean.
	MatchedTerm string
	// SuspiciousLink is the first suspicious link noticed. It never affects
	// Violates.
	SuspiciousLink string
}

// Violates reports whether the message broke the policy.
func (v Verdict) Violates() bool {
	return v.MatchedTerm != ""
}

// Filter evaluates messages against a policy. It is safe for concurrent use.
type Filter struct {
	policy *policy.Set
}

// NewFilter returns a Filter backed by p.
func NewFilter(p *policy.Set) *Filter {
	return &Filter{policy: p}
}

// Evaluate classifies msg. It has no side effects.
func (f *Filter) Evaluate(msg Message) Verdict {
	if !msg.HasText() {
		return Verdict{}
	}

	folded := policy.Fold(msg.Text)
	if term, ok := f.policy.MatchTerm(folded); ok {
		return Verdict{MatchedTerm: term}
	}

	return Verdict{SuspiciousLink: f.suspiciousLink(msg, folded)}
}

func (f *Filter) suspiciousLink(msg Message, folded string) string {
	if link, ok := f.policy.MatchSuspicious(folded); ok {
		return link
	}

	for _, e := range msg.Entities {
		var candidate string
		switch e.Kind {
		case EntityURL:
			candidate = entityText(msg.Text, e)
		case EntityTextLink:
			candidate = e.URL
		default:
			continue
		}
		if link, ok := f.policy.MatchSuspicious(policy.Fold(candidate)); ok {
			return link
		}
	}

	return ""
}

// entityText extracts the span an entity covers. Out of range entities
// yield an empty string.
func entityText(text string, e Entity) string {
	units := utf16.Encode([]rune(text))
	if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
}
