// internal/puzzles/puzzles.go
//
// Puzzle catalog management for the game engine.
//
// Responsibilities:
//   - Load the catalog from an environment-provided file or fall back to the embedded default.
//   - Validate every level at load time (letter count vs grid size, non-empty answers).
//   - Supply lookups used by game sessions: LevelIDs, Level, GridSize, Stats.
//
// Catalog format (JSON):
//   { "<difficulty>": { "<levelId>": { "letters": [...], "answers": [...] } } }
//
// Initialization behavior (Init):
//   1. If PUZZLES_FILE is set, read and parse that file.
//   2. Otherwise parse the embedded assets/puzzles.json.
//
// Constraints:
//   • Letters length must equal gridSize² for the difficulty.
//   • Answers must be non-empty and distinct. Whether each answer is drawable
//     on the grid is left to the data authors.
//   • Initialization is run once (sync.Once).

package puzzles

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordsearch/assets"
)

var (
	// ErrInvalidLevelData is returned when a level's letters do not fill the grid
	// or its answer list is empty.
	ErrInvalidLevelData = errors.New("invalid level data")

	// ErrNoLevelsForDifficulty is returned when a difficulty has no registered levels.
	ErrNoLevelsForDifficulty = errors.New("no levels for difficulty")

	// ErrUnknownLevel is returned when a level id is not registered for a difficulty.
	ErrUnknownLevel = errors.New("unknown level")
)

// Difficulties lists the built-in difficulties in menu order.
var Difficulties = []string{"easy", "medium", "hard"}

// DefaultDifficulty is the difficulty loaded on first visit.
const DefaultDifficulty = "easy"

// GridSizes maps a difficulty to the side of its square grid.
// Difficulties missing from this map derive the side from the letter count.
var GridSizes = map[string]int{
	"easy":   3,
	"medium": 4,
	"hard":   5,
}

// Level is one pre-authored puzzle.
type Level struct {
	Letters []string `json:"letters"`
	Answers []string `json:"answers"`
}

// Catalog maps difficulty → level id → level.
type Catalog map[string]map[string]Level

var (
	initOnce   sync.Once
	catalog    Catalog
	initialErr error
)

// Init loads the catalog exactly once.
// Returns an error if the document cannot be read or any level is invalid.
func Init() error {
	initOnce.Do(func() {
		var (
			data []byte
			err  error
		)
		if path := os.Getenv("PUZZLES_FILE"); path != "" {
			data, err = os.ReadFile(path)
		} else {
			data, err = assets.DefaultPuzzles()
		}
		if err != nil {
			initialErr = fmt.Errorf("puzzles: read catalog: %w", err)
			return
		}
		catalog, initialErr = Parse(data)
	})
	return initialErr
}

// Default returns the catalog loaded by Init (nil before Init succeeds).
func Default() Catalog {
	return catalog
}

// Parse decodes a catalog document and validates every level.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("puzzles: decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every level of every difficulty.
func (c Catalog) Validate() error {
	for _, d := range c.DifficultyNames() {
		if len(c[d]) == 0 {
			return fmt.Errorf("puzzles: %q: %w", d, ErrNoLevelsForDifficulty)
		}
		for _, id := range c.LevelIDs(d) {
			if _, _, err := c.Level(d, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// DifficultyNames returns the catalog's difficulties: built-ins first in menu
// order, then any extra difficulties sorted by name.
func (c Catalog) DifficultyNames() []string {
	out := lo.Filter(Difficulties, func(d string, _ int) bool {
		_, ok := c[d]
		return ok
	})
	extra := lo.Filter(lo.Keys(c), func(d string, _ int) bool {
		return !slices.Contains(Difficulties, d)
	})
	slices.Sort(extra)
	return append(out, extra...)
}

// LevelIDs returns the level ids registered for a difficulty, sorted so that a
// seeded random pick is reproducible.
func (c Catalog) LevelIDs(difficulty string) []string {
	ids := lo.Keys(c[difficulty])
	slices.Sort(ids)
	return ids
}

// Level looks up and validates a single level, returning it with its grid side.
func (c Catalog) Level(difficulty, id string) (Level, int, error) {
	levels, ok := c[difficulty]
	if !ok || len(levels) == 0 {
		return Level{}, 0, fmt.Errorf("puzzles: %q: %w", difficulty, ErrNoLevelsForDifficulty)
	}
	lvl, ok := levels[id]
	if !ok {
		return Level{}, 0, fmt.Errorf("puzzles: %s/%s: %w", difficulty, id, ErrUnknownLevel)
	}
	size, err := validateLevel(difficulty, lvl)
	if err != nil {
		return Level{}, 0, fmt.Errorf("puzzles: %s/%s: %w", difficulty, id, err)
	}
	return lvl, size, nil
}

// Stats returns the number of levels per difficulty.
func (c Catalog) Stats() map[string]int {
	return lo.MapValues(c, func(levels map[string]Level, _ string) int {
		return len(levels)
	})
}

// GridSize returns the grid side for a difficulty holding n letters.
// Known difficulties use GridSizes; others must hold a perfect square.
func GridSize(difficulty string, n int) (int, error) {
	if size, ok := GridSizes[difficulty]; ok {
		if n != size*size {
			return 0, fmt.Errorf("%w: %d letters, want %d", ErrInvalidLevelData, n, size*size)
		}
		return size, nil
	}
	size := int(math.Sqrt(float64(n)))
	if n == 0 || size*size != n {
		return 0, fmt.Errorf("%w: %d letters is not a square grid", ErrInvalidLevelData, n)
	}
	return size, nil
}

// validateLevel enforces the letter/answer shape and returns the grid side.
func validateLevel(difficulty string, lvl Level) (int, error) {
	size, err := GridSize(difficulty, len(lvl.Letters))
	if err != nil {
		return 0, err
	}
	for i, l := range lvl.Letters {
		if strings.TrimSpace(l) == "" {
			return 0, fmt.Errorf("%w: empty letter at cell %d", ErrInvalidLevelData, i)
		}
	}
	if len(lvl.Answers) == 0 {
		return 0, fmt.Errorf("%w: no answers", ErrInvalidLevelData)
	}
	for i, a := range lvl.Answers {
		if a == "" {
			return 0, fmt.Errorf("%w: empty answer at %d", ErrInvalidLevelData, i)
		}
	}
	if len(lo.Uniq(lvl.Answers)) != len(lvl.Answers) {
		return 0, fmt.Errorf("%w: duplicate answers", ErrInvalidLevelData)
	}
	return size, nil
}
