// internal/game/hint.go
//
// Hint budget and letter reveals.
//
// A hint attempt picks a random unsolved answer, then a random unrevealed
// character offset within it. The attempt always consumes one credit once the
// guard (credits left, puzzle not completed) has passed, even when there was
// nothing left to reveal.

package game

import (
	"unicode/utf8"

	"github.com/zyedidia/generic/mapset"
)

// Hinter tracks hints used and the revealed offsets per answer.
type Hinter struct {
	used     int
	revealed map[string]mapset.Set[int]
}

func newHinter() Hinter {
	return Hinter{revealed: make(map[string]mapset.Set[int])}
}

// Used returns the number of hints consumed.
func (h *Hinter) Used() int { return h.used }

// Remaining returns the hint credits left.
func (h *Hinter) Remaining() int { return MaxHints - h.used }

// Tier returns the hint indicator tier: 5 down to 1 by remaining credits,
// 0 when no credits are left and the hint action is disabled.
func (h *Hinter) Tier() int {
	r := h.Remaining()
	if r < 0 {
		return 0
	}
	return r
}

// Reset clears hints used and every reveal.
func (h *Hinter) Reset() {
	h.used = 0
	h.revealed = make(map[string]mapset.Set[int])
}

// IsRevealed reports whether offset of answer has been revealed.
func (h *Hinter) IsRevealed(answer string, offset int) bool {
	set, ok := h.revealed[answer]
	return ok && set.Has(offset)
}

// RevealedCount returns how many offsets of answer are revealed.
func (h *Hinter) RevealedCount(answer string) int {
	set, ok := h.revealed[answer]
	if !ok {
		return 0
	}
	return set.Size()
}

// FullyRevealed reports whether every offset of every answer is revealed.
func (h *Hinter) FullyRevealed(answers []string) bool {
	if len(answers) == 0 {
		return false
	}
	for _, a := range answers {
		if h.RevealedCount(a) < utf8.RuneCountInString(a) {
			return false
		}
	}
	return true
}

// reveal spends one credit on the remaining answers. The caller checks the guard.
func (h *Hinter) reveal(rng Rand, remaining []string) Hint {
	defer func() { h.used++ }()

	if len(remaining) == 0 {
		return Hint{}
	}
	answer := remaining[rng.IntN(len(remaining))]

	var hidden []int
	for i := 0; i < utf8.RuneCountInString(answer); i++ {
		if !h.IsRevealed(answer, i) {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return Hint{Answer: answer}
	}
	offset := hidden[rng.IntN(len(hidden))]

	set, ok := h.revealed[answer]
	if !ok {
		set = mapset.New[int]()
		h.revealed[answer] = set
	}
	set.Put(offset)
	return Hint{Answer: answer, Offset: offset, Revealed: true}
}
