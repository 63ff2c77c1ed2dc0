// internal/daily/daily.go
//
// Deterministic level choice for the daily puzzle: every player gets the same
// level of a difficulty on a given UTC date.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// LevelIndex returns a deterministic index for a date and difficulty using
// HMAC(salt, YYYY-MM-DD|difficulty) % levels.
func LevelIndex(date time.Time, difficulty, salt string, levels int) int {
	if levels <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + difficulty))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(levels))
}
