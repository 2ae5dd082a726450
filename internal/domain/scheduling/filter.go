package scheduling

import "time"

// Window bounds which appointments the board surfaces, measured in days of
// lookahead from the start of today. The zero window still cuts the past;
// only WindowAll admits dates behind referenceNow.
type Window int

const (
	// WindowUpcoming keeps appointments from the start of today onward.
	WindowUpcoming Window = 0
	// WindowTwentyDays keeps appointments within the next twenty days,
	// both endpoints inclusive.
	WindowTwentyDays Window = 20
	// WindowAll keeps every appointment with a parseable date, past included.
	WindowAll Window = -1
)

var validWindows = map[Window]bool{
	WindowUpcoming:   true,
	WindowTwentyDays: true,
	WindowAll:        true,
}

// ParseWindow maps a configured day count onto a Window.
func ParseWindow(days int) (Window, error) {
	w := Window(days)
	if !validWindows[w] {
		return 0, ErrInvalidWindow
	}
	return w, nil
}

func (w Window) String() string {
	switch w {
	case WindowUpcoming:
		return "upcoming"
	case WindowTwentyDays:
		return "20d"
	case WindowAll:
		return "all"
	}
	return "invalid"
}

// InWindow reports whether a normalized date falls inside the window
// anchored at referenceNow. referenceNow is captured once per fetch cycle
// and reused for every appointment in that cycle, so a cycle straddling
// midnight stays internally consistent.
func InWindow(normalized, referenceNow time.Time, w Window) bool {
	if w == WindowAll {
		return true
	}
	start := startOfDay(referenceNow)
	if normalized.Before(start) {
		return false
	}
	if w == WindowUpcoming {
		return true
	}
	return !normalized.After(start.AddDate(0, 0, int(w)))
}
