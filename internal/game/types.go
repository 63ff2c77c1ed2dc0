// internal/game/types.go
//
// Core type definitions for the word search engine.
// Defines:
//   - Cell:  one grid position (letter + index).
//   - State: coarse session state (idle/playing/completed).
//   - Rand:  injected random source used for level, hint and message picks.
//   - View:  per-frame snapshot handed to the rendering side.

package game

// MaxHints is the hint budget per puzzle.
const MaxHints = 5

// Messages is the fixed set of congratulatory notices shown on completion.
var Messages = []string{
	"Well done!",
	"Awesome!",
	"You found all the words!",
	"You are on fire!",
	"Congratulations!",
}

// Cell identifies a grid position in a square grid of side gridSize.
// Row = Index / gridSize, Col = Index % gridSize.
type Cell struct {
	Letter string `json:"letter"`
	Index  int    `json:"index"`
}

// State is the coarse lifecycle of a session.
type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
)

// Rand is the random source a session draws from.
// *math/rand/v2.Rand satisfies it; tests pass a seeded PCG source.
type Rand interface {
	IntN(n int) int
}

// PointerEvent is a raw pointer event translated by the client.
type PointerEvent string

const (
	PointerDown  PointerEvent = "down"  // pointer pressed on a cell
	PointerEnter PointerEvent = "enter" // pointer moved into a cell
	PointerUp    PointerEvent = "up"    // pointer released anywhere
	PointerLeave PointerEvent = "leave" // pointer left the grid
)

// Hint describes the outcome of one hint request.
type Hint struct {
	Answer   string `json:"-"`
	AnswerIx int    `json:"answer"`   // position of the answer in the answer list
	Offset   int    `json:"offset"`   // character offset revealed
	Revealed bool   `json:"revealed"` // false when the attempt had nothing to reveal
}

// AnswerView is one answer box row. Boxes hold the letter if the word is
// found or the offset revealed, "" otherwise.
type AnswerView struct {
	Length int      `json:"length"`
	Boxes  []string `json:"boxes"`
	Found  bool     `json:"found"`
}

// View is everything the rendering side needs for one frame.
type View struct {
	GameID         string       `json:"gameId"`
	State          State        `json:"state"`
	Difficulty     string       `json:"difficulty"`
	Level          string       `json:"level"`
	GridSize       int          `json:"gridSize"`
	Letters        []string     `json:"letters"`
	Selection      []Cell       `json:"selection"`
	Dragging       bool         `json:"dragging"`
	Answers        []AnswerView `json:"answers"`
	FoundWords     []string     `json:"foundWords"`
	HintsUsed      int          `json:"hintsUsed"`
	HintsRemaining int          `json:"hintsRemaining"`
	HintTier       int          `json:"hintTier"`
	Completed      bool         `json:"completed"`
	Message        string       `json:"message,omitempty"`
}
