// Package clock abstracts time and id generation so progression logic is
// deterministic in tests.
package clock

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Real returns the actual current time
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// IDGenerator produces random suffixes for generated ids
type IDGenerator interface {
	// Suffix returns n lowercase hex characters
	Suffix(n int) string
}

// UUIDGenerator takes suffixes from random UUIDs
type UUIDGenerator struct{}

func (UUIDGenerator) Suffix(n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's calendar day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
