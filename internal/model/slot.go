package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot is a time range within a single day, in minutes since midnight.
type Slot struct {
	Start int
	End   int
}

// ParseSlot parses "HH:MM-HH:MM". The end must not precede the start of the
// day; duration policy is applied by the caller.
func ParseSlot(s string) (Slot, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Slot{}, fmt.Errorf("time slot %q: expected HH:MM-HH:MM", s)
	}
	from, err := parseClock(start)
	if err != nil {
		return Slot{}, fmt.Errorf("time slot %q: %w", s, err)
	}
	to, err := parseClock(end)
	if err != nil {
		return Slot{}, fmt.Errorf("time slot %q: %w", s, err)
	}
	return Slot{Start: from, End: to}, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("clock %q: invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock %q: invalid minute", s)
	}
	return h*60 + m, nil
}

// Duration returns the length of the slot. It is zero or negative for
// inverted ranges.
func (s Slot) Duration() time.Duration {
	return time.Duration(s.End-s.Start) * time.Minute
}

// String renders the canonical "HH:MM-HH:MM" form used as ledger key.
func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", s.Start/60, s.Start%60, s.End/60, s.End%60)
}
