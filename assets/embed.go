// assets/embed.go
//
// Embedded data shipped with the binary:
//   - puzzles.json: default puzzle catalog (difficulty → level → letters/answers).
//   - sql/*.sql:    schema migrations, applied in lexical order.

package assets

import (
	"embed"
)

//go:embed puzzles.json sql/*.sql
var FS embed.FS

// MigrationsDir is the directory inside FS holding *.sql migrations.
const MigrationsDir = "sql"

// DefaultPuzzles returns the raw embedded catalog document.
func DefaultPuzzles() ([]byte, error) {
	return FS.ReadFile("puzzles.json")
}
