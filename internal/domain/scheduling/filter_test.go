package scheduling

import (
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// ParseWindow
// ---------------------------------------------------------------------------

func TestParseWindow(t *testing.T) {
	tests := []struct {
		days int
		want Window
	}{
		{0, WindowUpcoming},
		{20, WindowTwentyDays},
		{-1, WindowAll},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.days)
		if err != nil {
			t.Errorf("ParseWindow(%d): unexpected error: %v", tt.days, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWindow(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}

	for _, days := range []int{1, 7, 30, -2} {
		if _, err := ParseWindow(days); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("ParseWindow(%d): expected ErrInvalidWindow, got %v", days, err)
		}
	}
}

func TestWindow_String(t *testing.T) {
	tests := []struct {
		w    Window
		want string
	}{
		{WindowUpcoming, "upcoming"},
		{WindowTwentyDays, "20d"},
		{WindowAll, "all"},
		{Window(99), "invalid"},
	}
	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// InWindow
// ---------------------------------------------------------------------------

// day returns midnight offset days from 2025-10-14.
func day(offset int) time.Time {
	return time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestInWindow_Upcoming(t *testing.T) {
	ref := time.Date(2025, 10, 14, 15, 4, 5, 0, time.UTC)

	if !InWindow(day(0), ref, WindowUpcoming) {
		t.Error("expected today in window even mid-afternoon")
	}
	if InWindow(day(-1), ref, WindowUpcoming) {
		t.Error("expected yesterday out of window")
	}
	if !InWindow(day(365), ref, WindowUpcoming) {
		t.Error("expected the far future in window")
	}
}

func TestInWindow_TwentyDays(t *testing.T) {
	ref := time.Date(2025, 10, 14, 15, 4, 5, 0, time.UTC)

	if !InWindow(day(0), ref, WindowTwentyDays) {
		t.Error("expected today in window")
	}
	if !InWindow(day(20), ref, WindowTwentyDays) {
		t.Error("expected day twenty in window, the bound is inclusive")
	}
	if InWindow(day(21), ref, WindowTwentyDays) {
		t.Error("expected day twenty-one out of window")
	}
	if InWindow(day(-1), ref, WindowTwentyDays) {
		t.Error("expected yesterday out of window")
	}
}

func TestInWindow_All(t *testing.T) {
	ref := time.Date(2025, 10, 14, 15, 4, 5, 0, time.UTC)

	for _, offset := range []int{-400, -1, 0, 20, 21, 365} {
		if !InWindow(day(offset), ref, WindowAll) {
			t.Errorf("expected offset %d in the all window", offset)
		}
	}
}

func TestInWindow_WidensMonotonically(t *testing.T) {
	// Everything the twenty-day window admits, the upcoming window admits;
	// everything upcoming admits, all admits. Switching to a wider window
	// never hides an appointment.
	ref := time.Date(2025, 10, 14, 15, 4, 5, 0, time.UTC)

	for _, offset := range []int{-400, -30, -1, 0, 1, 10, 19, 20, 21, 100} {
		d := day(offset)
		if InWindow(d, ref, WindowTwentyDays) && !InWindow(d, ref, WindowUpcoming) {
			t.Errorf("offset %d: in twenty-day window but not upcoming", offset)
		}
		if InWindow(d, ref, WindowUpcoming) && !InWindow(d, ref, WindowAll) {
			t.Errorf("offset %d: in upcoming window but not all", offset)
		}
	}
}
