// internal/game/engine.go
//
// Game session for a single word search puzzle.
// Responsibilities:
//   - Load a level (difficulty + level id) from the puzzle catalog.
//   - Route pointer events into the selection and submit released words.
//   - Spend hints and reveal letters.
//   - Track state transitions: idle → playing → completed.
//
// Notes:
//   - A Session is not safe for concurrent use; callers serialise access.
//   - Every load validates before mutating, so a failed Start/NewGame/ChangeDifficulty
//     leaves the previous puzzle untouched.
//   - Completion also triggers when hints alone have revealed every letter of
//     every answer, even if none of the words were submitted.
package game

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/wordsearch/internal/puzzles"
)

// ErrCellOutOfRange is returned for pointer events on an index outside the grid.
var ErrCellOutOfRange = errors.New("cell out of range")

// ErrUnknownPointerEvent is returned for pointer events the engine does not know.
var ErrUnknownPointerEvent = errors.New("unknown pointer event")

// Session holds the state of one puzzle instance and the reset hooks used
// when the player changes level or difficulty.
type Session struct {
	ID          string
	Difficulty  string
	LevelID     string
	GridSize    int
	Letters     []string
	Answers     []string
	StartedAt   time.Time
	CompletedAt time.Time

	catalog   puzzles.Catalog
	rng       Rand
	now       func() time.Time
	selection Selection
	matcher   Matcher
	hints     Hinter
	spent     int // hints requested on this level, survives ResetHints
	completed bool
	message   string
}

// NewSession constructs an idle session bound to a catalog and random source.
func NewSession(catalog puzzles.Catalog, rng Rand) *Session {
	return &Session{
		ID:      uuid.NewString(),
		catalog: catalog,
		rng:     rng,
		now:     time.Now,
		hints:   newHinter(),
	}
}

// State reports the coarse lifecycle state.
func (s *Session) State() State {
	switch {
	case s.GridSize == 0:
		return StateIdle
	case s.completed:
		return StateCompleted
	default:
		return StatePlaying
	}
}

// Start loads the given level and resets all per-puzzle state.
func (s *Session) Start(difficulty, levelID string) error {
	lvl, size, err := s.catalog.Level(difficulty, levelID)
	if err != nil {
		return err
	}
	s.load(difficulty, levelID, lvl, size)
	return nil
}

// NewGame picks a uniformly random level of difficulty and starts it.
func (s *Session) NewGame(difficulty string) error {
	id, lvl, size, err := s.pickLevel(difficulty)
	if err != nil {
		return err
	}
	s.load(difficulty, id, lvl, size)
	return nil
}

// ChangeDifficulty resets hints then starts a new random level of difficulty.
func (s *Session) ChangeDifficulty(difficulty string) error {
	id, lvl, size, err := s.pickLevel(difficulty)
	if err != nil {
		return err
	}
	s.ResetHints()
	s.load(difficulty, id, lvl, size)
	return nil
}

// ResetHints clears hints used and revealed letters. Found words and the
// completion flag are kept.
func (s *Session) ResetHints() {
	s.hints.Reset()
}

// ResetGameState clears found words, hints, reveals, completion and any
// drag in progress, keeping the current level.
func (s *Session) ResetGameState() {
	s.selection = newSelection(s.GridSize)
	s.matcher = newMatcher(s.Answers)
	s.hints.Reset()
	s.completed = false
	s.message = ""
	s.CompletedAt = time.Time{}
}

// Pointer applies a raw pointer event. For a release it returns the word that
// was newly found, if any.
func (s *Session) Pointer(ev PointerEvent, index int) (string, error) {
	switch ev {
	case PointerDown:
		c, err := s.cell(index)
		if err != nil {
			return "", err
		}
		s.selection.Begin(c)
	case PointerEnter:
		if !s.selection.Dragging() {
			return "", nil
		}
		c, err := s.cell(index)
		if err != nil {
			return "", err
		}
		s.selection.Extend(c)
	case PointerUp, PointerLeave:
		return s.Release(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPointerEvent, ev)
	}
	return "", nil
}

// Release ends the drag and submits the selected letters.
// Returns the word if it was newly found.
func (s *Session) Release() string {
	if !s.selection.Dragging() {
		s.selection.Cancel()
		return ""
	}
	word := s.selection.End()
	if !s.matcher.Submit(word) {
		return ""
	}
	if s.matcher.IsComplete() {
		s.complete()
	}
	return word
}

// RequestHint spends one hint credit. ok is false when the request was a
// no-op (no credits left, puzzle completed or not started).
func (s *Session) RequestHint() (h Hint, ok bool) {
	if s.State() != StatePlaying || s.hints.Used() >= MaxHints {
		return Hint{}, false
	}
	h = s.hints.reveal(s.rng, s.matcher.Remaining())
	s.spent++
	if h.Answer != "" {
		h.AnswerIx = slices.Index(s.Answers, h.Answer)
	}
	if s.hints.FullyRevealed(s.Answers) || s.matcher.IsComplete() {
		s.complete()
	}
	return h, true
}

// HintsSpent returns every hint credit spent on the current level, including
// those given back by ResetHints. Only loading a level clears it.
func (s *Session) HintsSpent() int { return s.spent }

// RemainingHintCredits returns MaxHints minus hints used.
func (s *Session) RemainingHintCredits() int { return s.hints.Remaining() }

// HintsUsed returns the hints used since the last ResetHints.
func (s *Session) HintsUsed() int { return s.hints.Used() }

// FoundWords returns the found words in discovery order.
func (s *Session) FoundWords() []string { return s.matcher.Found() }

// Completed reports whether the puzzle is completed.
func (s *Session) Completed() bool { return s.completed }

// Message returns the congratulatory message, "" until completion.
func (s *Session) Message() string { return s.message }

// Selection returns the current drag path.
func (s *Session) Selection() []Cell { return s.selection.Cells() }

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool { return s.selection.Dragging() }

// FullyRevealed reports whether hints have revealed every answer letter.
func (s *Session) FullyRevealed() bool { return s.hints.FullyRevealed(s.Answers) }

// View snapshots the session for rendering. Unrevealed answer letters are
// never included.
func (s *Session) View() View {
	answers := lo.Map(s.Answers, func(a string, _ int) AnswerView {
		found := s.matcher.IsFound(a)
		runes := []rune(a)
		boxes := make([]string, len(runes))
		for i, r := range runes {
			if found || s.hints.IsRevealed(a, i) {
				boxes[i] = string(r)
			}
		}
		return AnswerView{Length: len(runes), Boxes: boxes, Found: found}
	})
	return View{
		GameID:         s.ID,
		State:          s.State(),
		Difficulty:     s.Difficulty,
		Level:          s.LevelID,
		GridSize:       s.GridSize,
		Letters:        slices.Clone(s.Letters),
		Selection:      s.selection.Cells(),
		Dragging:       s.selection.Dragging(),
		Answers:        answers,
		FoundWords:     s.matcher.Found(),
		HintsUsed:      s.hints.Used(),
		HintsRemaining: s.hints.Remaining(),
		HintTier:       s.hints.Tier(),
		Completed:      s.completed,
		Message:        s.message,
	}
}

// pickLevel draws a level id for difficulty without touching session state.
func (s *Session) pickLevel(difficulty string) (string, puzzles.Level, int, error) {
	ids := s.catalog.LevelIDs(difficulty)
	if len(ids) == 0 {
		return "", puzzles.Level{}, 0, fmt.Errorf("game: %q: %w", difficulty, puzzles.ErrNoLevelsForDifficulty)
	}
	id := ids[s.rng.IntN(len(ids))]
	lvl, size, err := s.catalog.Level(difficulty, id)
	if err != nil {
		return "", puzzles.Level{}, 0, err
	}
	return id, lvl, size, nil
}

// load installs a validated level and resets per-puzzle state.
func (s *Session) load(difficulty, id string, lvl puzzles.Level, size int) {
	s.Difficulty = difficulty
	s.LevelID = id
	s.GridSize = size
	s.Letters = slices.Clone(lvl.Letters)
	s.Answers = slices.Clone(lvl.Answers)
	s.StartedAt = s.now()
	s.spent = 0
	s.ResetGameState()
}

// complete transitions to completed once and picks a message.
func (s *Session) complete() {
	if s.completed {
		return
	}
	s.completed = true
	s.message = Messages[s.rng.IntN(len(Messages))]
	s.CompletedAt = s.now()
}

// cell resolves a grid index to a Cell.
func (s *Session) cell(index int) (Cell, error) {
	if index < 0 || index >= len(s.Letters) {
		return Cell{}, fmt.Errorf("%w: %d", ErrCellOutOfRange, index)
	}
	return Cell{Letter: s.Letters[index], Index: index}, nil
}
