package clock_test

import (
	"testing"
	"time"

	"github.com/jeffanddom/organizex/internal/clock"
)

func TestCalendarHelpers(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

	if got := clock.StartOfDay(now); !got.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start of day: %v", got)
	}
	if got := clock.EndOfDay(now); !got.Equal(time.Date(2026, 10, 14, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("unexpected end of day: %v", got)
	}
	if got := clock.StartOfWeek(now); !got.Equal(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected Monday 12th, got %v", got)
	}

	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	if got := clock.StartOfWeek(sunday); !got.Equal(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected Sunday to belong to the week of the 12th, got %v", got)
	}

	if !clock.SameDay(now, now.Add(-15*time.Hour)) {
		t.Error("expected same day")
	}
	if clock.SameDay(now, now.Add(9*time.Hour)) {
		t.Error("expected next day")
	}
}

func TestUUIDGenerator(t *testing.T) {
	gen := clock.UUIDGenerator{}
	a, b := gen.Suffix(8), gen.Suffix(8)
	if len(a) != 8 || len(b) != 8 {
		t.Fatalf("expected 8 characters, got %q and %q", a, b)
	}
	if a == b {
		t.Error("expected distinct suffixes")
	}
}
