package game

import (
	"math/rand/v2"
	"testing"
)

func cellsAt(letters string, idx ...int) []Cell {
	out := make([]Cell, len(idx))
	for i, ix := range idx {
		out[i] = Cell{Letter: string(letters[ix]), Index: ix}
	}
	return out
}

func indexes(cells []Cell) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Index
	}
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAdjacent(t *testing.T) {
	cases := []struct {
		a, b, size int
		want       bool
	}{
		{0, 1, 3, true},
		{0, 4, 3, true},  // diagonal
		{0, 3, 3, true},  // below
		{0, 2, 3, false}, // two columns apart
		{2, 3, 3, false}, // row wrap is not adjacency
		{0, 8, 3, false},
		{12, 18, 5, true},
		{12, 24, 5, false},
		{0, 1, 0, false},
	}
	for _, tc := range cases {
		if got := Adjacent(tc.a, tc.b, tc.size); got != tc.want {
			t.Errorf("Adjacent(%d,%d,%d) = %v, want %v", tc.a, tc.b, tc.size, got, tc.want)
		}
	}
}

func TestSelectionBacktrack(t *testing.T) {
	const letters = "ABCDEFGHI"
	s := newSelection(3)
	c := cellsAt(letters, 0, 1, 2)
	s.Begin(c[0])
	s.Extend(c[1])
	s.Extend(c[2])
	if got := indexes(s.Cells()); !sameInts(got, []int{0, 1, 2}) {
		t.Fatalf("expected [0 1 2], got %v", got)
	}

	if !s.Extend(c[1]) {
		t.Fatal("backtrack should change the path")
	}
	if got := indexes(s.Cells()); !sameInts(got, []int{0, 1}) {
		t.Fatalf("expected backtrack to [0 1], got %v", got)
	}
	if word := s.End(); word != "AB" {
		t.Fatalf("expected AB, got %q", word)
	}
}

func TestSelectionIgnoresRepeatsAndJumps(t *testing.T) {
	const letters = "ABCDEFGHI"
	s := newSelection(3)
	all := cellsAt(letters, 0, 1, 2, 3, 4, 5, 6, 7, 8)

	if s.Extend(all[1]) {
		t.Fatal("extend before begin must be ignored")
	}

	s.Begin(all[4])
	if s.Extend(all[4]) {
		t.Fatal("re-entering the last cell must be ignored")
	}
	s.Extend(all[0])
	if s.Extend(all[8]) {
		t.Fatal("non-adjacent cell must be ignored")
	}
	if got := indexes(s.Cells()); !sameInts(got, []int{4, 0}) {
		t.Fatalf("expected [4 0], got %v", got)
	}

	// Backtracking onto a non-adjacent earlier cell is still subject to adjacency.
	s.Begin(all[0])
	s.Extend(all[1])
	s.Extend(all[2])
	s.Extend(all[5])
	s.Extend(all[8])
	if s.Extend(all[0]) {
		t.Fatal("earlier cell out of reach must be ignored")
	}
	if got := indexes(s.Cells()); !sameInts(got, []int{0, 1, 2, 5, 8}) {
		t.Fatalf("unexpected path %v", got)
	}
}

func TestSelectionEndWhenIdle(t *testing.T) {
	s := newSelection(3)
	if word := s.End(); word != "" {
		t.Fatalf("expected empty word, got %q", word)
	}
	if s.Dragging() {
		t.Fatal("should not be dragging")
	}
}

func TestSelectionPathStaysAdjacent(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, size := range []int{3, 4, 5} {
		s := newSelection(size)
		n := size * size
		for round := 0; round < 200; round++ {
			if round%25 == 0 {
				s.End()
				ix := rng.IntN(n)
				s.Begin(Cell{Letter: "X", Index: ix})
			}
			s.Extend(Cell{Letter: "X", Index: rng.IntN(n)})

			path := s.Cells()
			seen := map[int]bool{}
			for i, c := range path {
				if seen[c.Index] {
					t.Fatalf("size %d: duplicate index %d in %v", size, c.Index, indexes(path))
				}
				seen[c.Index] = true
				if i > 0 && !Adjacent(path[i-1].Index, c.Index, size) {
					t.Fatalf("size %d: non-adjacent step %v", size, indexes(path))
				}
			}
		}
	}
}
