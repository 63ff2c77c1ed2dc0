// internal/game/match.go
//
// Matching released selections against the level's answers.

package game

import (
	"slices"

	"github.com/samber/lo"
)

// Matcher records found answers in discovery order.
type Matcher struct {
	answers []string
	found   []string
}

func newMatcher(answers []string) Matcher {
	return Matcher{answers: slices.Clone(answers)}
}

// Submit adds word to the found list if it is an answer not yet found.
// Returns true only for a new find.
func (m *Matcher) Submit(word string) bool {
	if word == "" || !lo.Contains(m.answers, word) || lo.Contains(m.found, word) {
		return false
	}
	m.found = append(m.found, word)
	return true
}

// IsComplete reports whether every answer has been found.
func (m *Matcher) IsComplete() bool {
	return len(m.answers) > 0 && len(m.found) == len(m.answers)
}

// IsFound reports whether word has been found.
func (m *Matcher) IsFound(word string) bool {
	return lo.Contains(m.found, word)
}

// Found returns the found words in discovery order.
func (m *Matcher) Found() []string {
	return slices.Clone(m.found)
}

// Remaining returns the answers not found yet, in answer-list order.
func (m *Matcher) Remaining() []string {
	return lo.Filter(m.answers, func(a string, _ int) bool {
		return !lo.Contains(m.found, a)
	})
}
