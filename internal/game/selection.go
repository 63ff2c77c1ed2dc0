// internal/game/selection.go
//
// Drag-path tracking over grid cells.
//
// Rules:
//   - Begin starts a new path and enters the dragging state.
//   - Extend only acts while dragging, ignores the current last cell and any
//     cell that is not a king's move away from it.
//   - Re-entering a cell already on the path truncates the path to end there.
//   - End leaves the dragging state, returns the path's letters and clears it.

package game

import "strings"

// Selection is the in-progress drag path.
type Selection struct {
	gridSize int
	cells    []Cell
	dragging bool
}

func newSelection(gridSize int) Selection {
	return Selection{gridSize: gridSize}
}

// Begin starts a new path at c, discarding any previous one.
func (s *Selection) Begin(c Cell) {
	s.cells = []Cell{c}
	s.dragging = true
}

// Extend applies the adjacency and backtrack rules for c.
// Returns true if the path changed.
func (s *Selection) Extend(c Cell) bool {
	if !s.dragging || len(s.cells) == 0 {
		return false
	}
	last := s.cells[len(s.cells)-1]
	if last.Index == c.Index || !Adjacent(last.Index, c.Index, s.gridSize) {
		return false
	}
	for i, prev := range s.cells {
		if prev.Index == c.Index {
			s.cells = s.cells[:i+1]
			return true
		}
	}
	s.cells = append(s.cells, c)
	return true
}

// End stops dragging and returns the selected letters; the path is cleared.
// Calling End while not dragging returns "".
func (s *Selection) End() string {
	var b strings.Builder
	for _, c := range s.cells {
		b.WriteString(c.Letter)
	}
	s.cells = nil
	s.dragging = false
	return b.String()
}

// Cancel stops dragging without producing a word.
func (s *Selection) Cancel() {
	s.cells = nil
	s.dragging = false
}

// Dragging reports whether a drag is in progress.
func (s *Selection) Dragging() bool { return s.dragging }

// Cells returns a copy of the current path in drag order.
func (s *Selection) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// Adjacent reports whether cells a and b are within one row and one column of
// each other on a grid of side gridSize (8-directional, distance ≤ 1).
func Adjacent(a, b, gridSize int) bool {
	if gridSize <= 0 {
		return false
	}
	dr := a/gridSize - b/gridSize
	dc := a%gridSize - b%gridSize
	return abs(dr) <= 1 && abs(dc) <= 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
