package game

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/robalobadob/wordsearch/internal/puzzles"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// testCatalog has one level per difficulty so random picks are deterministic.
func testCatalog() puzzles.Catalog {
	return puzzles.Catalog{
		"easy": {
			"cat": {
				Letters: []string{"C", "A", "T", "X", "X", "X", "X", "X", "X"},
				Answers: []string{"CAT"},
			},
		},
		"medium": {
			"pair": {
				Letters: []string{
					"C", "A", "T", "X",
					"D", "O", "G", "X",
					"X", "X", "X", "X",
					"X", "X", "X", "X",
				},
				Answers: []string{"CAT", "DOG"},
			},
		},
		"hard": {
			"big": {
				Letters: []string{
					"P", "L", "A", "N", "T",
					"R", "I", "V", "E", "R",
					"A", "B", "C", "D", "E",
					"I", "S", "L", "E", "F",
					"N", "O", "T", "E", "S",
				},
				Answers: []string{"PLANT", "RIVER", "RAIN", "NOTES"},
			},
		},
	}
}

func newTestSession(t *testing.T, difficulty string) *Session {
	t.Helper()
	s := NewSession(testCatalog(), newTestRand())
	if err := s.NewGame(difficulty); err != nil {
		t.Fatalf("NewGame(%s): %v", difficulty, err)
	}
	return s
}

func drag(t *testing.T, s *Session, indexes ...int) string {
	t.Helper()
	if _, err := s.Pointer(PointerDown, indexes[0]); err != nil {
		t.Fatalf("down: %v", err)
	}
	for _, ix := range indexes[1:] {
		if _, err := s.Pointer(PointerEnter, ix); err != nil {
			t.Fatalf("enter %d: %v", ix, err)
		}
	}
	word, err := s.Pointer(PointerUp, 0)
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	return word
}

func TestCatScenario(t *testing.T) {
	s := newTestSession(t, "easy")
	if s.State() != StatePlaying || s.GridSize != 3 {
		t.Fatalf("expected playing 3x3, got %s %d", s.State(), s.GridSize)
	}

	if got := drag(t, s, 0, 1, 2); got != "CAT" {
		t.Fatalf("expected CAT to be found, got %q", got)
	}
	if !slices.Equal(s.FoundWords(), []string{"CAT"}) {
		t.Fatalf("unexpected found words %v", s.FoundWords())
	}
	if !s.Completed() || s.State() != StateCompleted {
		t.Fatal("expected game completed")
	}
	if !slices.Contains(Messages, s.Message()) {
		t.Fatalf("message %q not in known set", s.Message())
	}
	if s.Dragging() || len(s.Selection()) != 0 {
		t.Fatal("selection should be cleared after release")
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	s := newTestSession(t, "medium")
	drag(t, s, 0, 1, 2)
	if again := drag(t, s, 0, 1, 2); again != "" {
		t.Fatalf("second submission should not report a new find, got %q", again)
	}
	if len(s.FoundWords()) != 1 {
		t.Fatalf("expected 1 found word, got %v", s.FoundWords())
	}
	if s.Completed() {
		t.Fatal("one of two answers should not complete the game")
	}

	// Discovery order, not answer-list order.
	s2 := newTestSession(t, "medium")
	drag(t, s2, 4, 5, 6)
	drag(t, s2, 0, 1, 2)
	if !slices.Equal(s2.FoundWords(), []string{"DOG", "CAT"}) {
		t.Fatalf("expected discovery order, got %v", s2.FoundWords())
	}
	if !s2.Completed() {
		t.Fatal("expected completion after both words")
	}
}

func TestWrongAndSingleCellSelections(t *testing.T) {
	s := newTestSession(t, "easy")
	if got := drag(t, s, 0); got != "" {
		t.Fatalf("single letter should not match, got %q", got)
	}
	if got := drag(t, s, 2, 1, 0); got != "" {
		t.Fatalf("reversed word should not match, got %q", got)
	}
	if len(s.FoundWords()) != 0 {
		t.Fatalf("expected nothing found, got %v", s.FoundWords())
	}
}

func TestOneLetterAnswer(t *testing.T) {
	cat := puzzles.Catalog{"tiny": {"1": {
		Letters: []string{"A", "B", "C", "D"},
		Answers: []string{"A", "BD"},
	}}}
	s := NewSession(cat, newTestRand())
	if err := s.Start("tiny", "1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := drag(t, s, 0); got != "A" {
		t.Fatalf("expected one-letter answer A, got %q", got)
	}
}

func TestLeaveEndsDrag(t *testing.T) {
	s := newTestSession(t, "easy")
	s.Pointer(PointerDown, 0)
	s.Pointer(PointerEnter, 1)
	s.Pointer(PointerEnter, 2)
	word, err := s.Pointer(PointerLeave, -1)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if word != "CAT" || s.Dragging() {
		t.Fatalf("leave should release the drag, got %q dragging=%v", word, s.Dragging())
	}

	// Enter events while not dragging are ignored.
	if _, err := s.Pointer(PointerEnter, 4); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if len(s.Selection()) != 0 {
		t.Fatal("enter without drag must not select")
	}
	// Release with no drag is a no-op.
	if word, _ := s.Pointer(PointerUp, 0); word != "" {
		t.Fatalf("expected empty release, got %q", word)
	}
}

func TestPointerErrors(t *testing.T) {
	s := newTestSession(t, "easy")
	if _, err := s.Pointer(PointerDown, 9); !errors.Is(err, ErrCellOutOfRange) {
		t.Fatalf("expected ErrCellOutOfRange, got %v", err)
	}
	if _, err := s.Pointer("tap", 0); !errors.Is(err, ErrUnknownPointerEvent) {
		t.Fatalf("expected ErrUnknownPointerEvent, got %v", err)
	}

	idle := NewSession(testCatalog(), newTestRand())
	if _, err := idle.Pointer(PointerDown, 0); !errors.Is(err, ErrCellOutOfRange) {
		t.Fatalf("idle session has no cells, got %v", err)
	}
}

func TestHintBudget(t *testing.T) {
	s := newTestSession(t, "medium")
	shown := 0
	for i := 0; i < MaxHints; i++ {
		h, ok := s.RequestHint()
		if !ok {
			t.Fatalf("hint %d refused", i)
		}
		if h.Revealed {
			shown++
		}
	}
	if s.RemainingHintCredits() != 0 || s.HintsUsed() != MaxHints {
		t.Fatalf("expected budget exhausted, remaining=%d", s.RemainingHintCredits())
	}
	if s.Completed() {
		t.Fatal("5 of 6 letters revealed must not complete")
	}

	before := s.View()
	if _, ok := s.RequestHint(); ok {
		t.Fatal("hint beyond budget must be a no-op")
	}
	after := s.View()
	if after.HintsUsed != before.HintsUsed || after.HintTier != 0 {
		t.Fatalf("unexpected state after no-op hint: %+v", after)
	}
	revealed := 0
	for _, a := range after.Answers {
		for _, b := range a.Boxes {
			if b != "" {
				revealed++
			}
		}
	}
	if revealed != shown || revealed == 0 {
		t.Fatalf("expected %d revealed letters, got %d", shown, revealed)
	}
}

func TestFullRevealWins(t *testing.T) {
	s := newTestSession(t, "easy")
	for i := 0; i < 3; i++ {
		if _, ok := s.RequestHint(); !ok {
			t.Fatalf("hint %d refused", i)
		}
	}
	if !s.FullyRevealed() {
		t.Fatal("expected all letters of CAT revealed")
	}
	if !s.Completed() {
		t.Fatal("full reveal should complete the game")
	}
	if len(s.FoundWords()) != 0 {
		t.Fatal("full reveal must not mark words as found")
	}
	if !slices.Contains(Messages, s.Message()) {
		t.Fatalf("message %q not in known set", s.Message())
	}
	if _, ok := s.RequestHint(); ok {
		t.Fatal("hint after completion must be a no-op")
	}
	if s.HintsUsed() != 3 {
		t.Fatalf("expected 3 hints used, got %d", s.HintsUsed())
	}
}

// firstRand always picks the first candidate.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func TestHintWithNothingLeftStillConsumesCredit(t *testing.T) {
	cat := puzzles.Catalog{"tiny": {"1": {
		Letters: []string{"A", "B", "C", "D"},
		Answers: []string{"A", "BD"},
	}}}
	s := NewSession(cat, firstRand{})
	if err := s.Start("tiny", "1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	h, ok := s.RequestHint()
	if !ok || !h.Revealed || h.Answer != "A" || h.Offset != 0 {
		t.Fatalf("unexpected first hint %+v ok=%v", h, ok)
	}
	// "A" is still unsolved and picked again, but has nothing left to reveal.
	h, ok = s.RequestHint()
	if !ok || h.Revealed {
		t.Fatalf("expected an empty hint, got %+v ok=%v", h, ok)
	}
	if s.HintsUsed() != 2 || s.RemainingHintCredits() != 3 {
		t.Fatalf("empty hint must still consume a credit, used=%d", s.HintsUsed())
	}
	if s.Completed() {
		t.Fatal("BD is not revealed, game must not be complete")
	}
}

func TestCompletionIsMonotonic(t *testing.T) {
	s := newTestSession(t, "easy")
	drag(t, s, 0, 1, 2)
	msg := s.Message()

	drag(t, s, 0, 1)
	s.ResetHints()
	s.RequestHint()
	if !s.Completed() || s.Message() != msg {
		t.Fatal("completion must not revert without a new game")
	}
	if !slices.Equal(s.FoundWords(), []string{"CAT"}) {
		t.Fatal("ResetHints must keep found words")
	}

	if err := s.NewGame("easy"); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if s.Completed() || s.Message() != "" || len(s.FoundWords()) != 0 {
		t.Fatal("NewGame must reset completion and found words")
	}
}

func TestChangeDifficultyScenario(t *testing.T) {
	s := newTestSession(t, "easy")
	s.RequestHint()
	s.RequestHint()
	if s.HintsUsed() != 2 {
		t.Fatalf("expected 2 hints used, got %d", s.HintsUsed())
	}

	if err := s.ChangeDifficulty("hard"); err != nil {
		t.Fatalf("ChangeDifficulty: %v", err)
	}
	v := s.View()
	if v.HintsUsed != 0 || v.HintsRemaining != MaxHints || v.HintTier != 5 {
		t.Fatalf("hints not reset: %+v", v)
	}
	if v.GridSize != 5 || len(v.Letters) != 25 || v.Difficulty != "hard" {
		t.Fatalf("expected 5x5 hard puzzle, got size %d letters %d", v.GridSize, len(v.Letters))
	}
	if len(v.FoundWords) != 0 || v.Completed {
		t.Fatal("stale state carried across difficulty change")
	}
	for _, a := range v.Answers {
		for _, b := range a.Boxes {
			if b != "" {
				t.Fatal("reveals carried across difficulty change")
			}
		}
	}
}

func TestLoadErrorsKeepLastGoodState(t *testing.T) {
	cat := testCatalog()
	cat["broken"] = map[string]puzzles.Level{
		"1": {Letters: []string{"A", "B"}, Answers: []string{"AB"}},
	}
	cat["empty"] = map[string]puzzles.Level{
		"1": {Letters: []string{"A", "B", "C", "D"}, Answers: nil},
	}
	s := NewSession(cat, newTestRand())
	if err := s.Start("easy", "cat"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.RequestHint()

	if err := s.NewGame("nightmare"); !errors.Is(err, puzzles.ErrNoLevelsForDifficulty) {
		t.Fatalf("expected ErrNoLevelsForDifficulty, got %v", err)
	}
	if err := s.ChangeDifficulty("broken"); !errors.Is(err, puzzles.ErrInvalidLevelData) {
		t.Fatalf("expected ErrInvalidLevelData, got %v", err)
	}
	if err := s.Start("empty", "1"); !errors.Is(err, puzzles.ErrInvalidLevelData) {
		t.Fatalf("expected ErrInvalidLevelData for empty answers, got %v", err)
	}
	if err := s.Start("easy", "nope"); !errors.Is(err, puzzles.ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}

	if s.Difficulty != "easy" || s.LevelID != "cat" || s.HintsUsed() != 1 {
		t.Fatalf("failed loads mutated the session: %s/%s hints=%d", s.Difficulty, s.LevelID, s.HintsUsed())
	}

	idle := NewSession(cat, newTestRand())
	idle.NewGame("nightmare")
	if idle.State() != StateIdle {
		t.Fatalf("failed first load should stay idle, got %s", idle.State())
	}
	if _, ok := idle.RequestHint(); ok {
		t.Fatal("hint on idle session must be a no-op")
	}
}

func TestResetGameState(t *testing.T) {
	s := newTestSession(t, "medium")
	drag(t, s, 0, 1, 2)
	s.RequestHint()
	s.Pointer(PointerDown, 4)

	s.ResetGameState()
	v := s.View()
	if len(v.FoundWords) != 0 || v.HintsUsed != 0 || v.Completed || v.Dragging {
		t.Fatalf("reset left state behind: %+v", v)
	}
	if v.Level != "pair" {
		t.Fatal("reset must keep the current level")
	}
}

func TestHintsSpentSurvivesResetHints(t *testing.T) {
	s := newTestSession(t, "medium")
	for range MaxHints {
		s.RequestHint()
	}
	s.ResetHints()
	s.RequestHint()

	if s.HintsUsed() != 1 {
		t.Fatalf("HintsUsed = %d, want 1", s.HintsUsed())
	}
	if s.HintsSpent() != MaxHints+1 {
		t.Fatalf("HintsSpent = %d, want %d", s.HintsSpent(), MaxHints+1)
	}

	if err := s.NewGame("medium"); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if s.HintsSpent() != 0 {
		t.Fatalf("loading a level must clear HintsSpent, got %d", s.HintsSpent())
	}
}

func TestViewHidesUnrevealedLetters(t *testing.T) {
	s := newTestSession(t, "medium")
	v := s.View()
	for _, a := range v.Answers {
		if a.Length != 3 || a.Found {
			t.Fatalf("unexpected answer view %+v", a)
		}
		for _, b := range a.Boxes {
			if b != "" {
				t.Fatal("answer letters leaked before reveal")
			}
		}
	}

	drag(t, s, 0, 1, 2)
	v = s.View()
	if !v.Answers[0].Found || !slices.Equal(v.Answers[0].Boxes, []string{"C", "A", "T"}) {
		t.Fatalf("found answer should be shown, got %+v", v.Answers[0])
	}
}

func TestHintReportsAnswerIndex(t *testing.T) {
	s := newTestSession(t, "medium")
	h, ok := s.RequestHint()
	if !ok {
		t.Fatal("hint refused")
	}
	if s.Answers[h.AnswerIx] != h.Answer {
		t.Fatalf("answer index %d does not match %q", h.AnswerIx, h.Answer)
	}
	if !s.hints.IsRevealed(h.Answer, h.Offset) {
		t.Fatal("reported offset is not revealed")
	}
}

func TestHintsSkipFoundWords(t *testing.T) {
	s := newTestSession(t, "medium")
	drag(t, s, 0, 1, 2)
	for i := 0; i < 3; i++ {
		h, _ := s.RequestHint()
		if h.Answer != "DOG" {
			t.Fatalf("hint targeted found word %q", h.Answer)
		}
	}
	// Found words are not counted as revealed: CAT has no revealed letters, so
	// the full-reveal path does not fire yet.
	if s.Completed() {
		t.Fatal("full reveal requires every answer's letters to be revealed")
	}
}
