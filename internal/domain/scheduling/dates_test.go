package scheduling

import (
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Hyphenated (ISO) dates
// ---------------------------------------------------------------------------

func TestNormalizeDate_ISO(t *testing.T) {
	ref := time.Date(2025, 11, 10, 15, 4, 5, 0, time.UTC)

	got, ok := NormalizeDate("2025-10-14", ref)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeDate_ISOIgnoresReferenceNow(t *testing.T) {
	// A hyphenated date resolves the same regardless of when it is read.
	refs := []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 10, 23, 59, 0, 0, time.UTC),
		time.Date(2031, 6, 15, 8, 0, 0, 0, time.UTC),
	}
	want := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	for _, ref := range refs {
		got, ok := NormalizeDate("2025-10-14", ref)
		if !ok {
			t.Fatalf("expected parse to succeed at ref %v", ref)
		}
		if !got.Equal(want) {
			t.Errorf("ref %v: got %v, want %v", ref, got, want)
		}
	}
}

func TestNormalizeDate_ISOInvalidCalendar(t *testing.T) {
	ref := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2025-02-30", "2025-04-31", "2025-13-01", "2025-00-10"} {
		if _, ok := NormalizeDate(raw, ref); ok {
			t.Errorf("expected %q to be unparseable", raw)
		}
	}
}

func TestNormalizeDate_HyphenMeansISOOnly(t *testing.T) {
	// Hyphenated strings never fall back to natural-language parsing.
	ref := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	for _, raw := range []string{"14-10-2025", "2025-1-2", "Oct-14-2025", "14th-Oct"} {
		if _, ok := NormalizeDate(raw, ref); ok {
			t.Errorf("expected %q to be unparseable", raw)
		}
	}
}

// ---------------------------------------------------------------------------
// Ordinal natural-language dates
// ---------------------------------------------------------------------------

func TestNormalizeDate_Ordinal(t *testing.T) {
	ref := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"14th Oct", time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"Oct 14", time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"14 October", time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"1st Nov", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"2nd Nov", time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)},
		{"3rd Nov", time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)},
		{"21st Dec", time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"22nd Dec", time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)},
		{"23rd Dec", time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.raw, ref)
		if !ok {
			t.Errorf("%q: expected parse to succeed", tt.raw)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeDate_OrdinalWithYear(t *testing.T) {
	// An explicit 4-digit year pins the date; token order does not matter and
	// a year in the past is taken at face value.
	ref := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"14th Oct 2024", time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"Oct 14 2026", time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"2027 Oct 14", time.Date(2027, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"Oct. 14, 2025", time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"29 Feb 2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.raw, ref)
		if !ok {
			t.Errorf("%q: expected parse to succeed", tt.raw)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeDate_YearRollsForward(t *testing.T) {
	// A January date read in November means the upcoming January, not last
	// winter's.
	ref := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	got, ok := NormalizeDate("14th Jan", ref)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeDate_RecentPastKeepsYear(t *testing.T) {
	// A date a few weeks back stays in the current year; only dates more than
	// six months behind roll forward.
	ref := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	got, ok := NormalizeDate("3rd Aug", ref)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeDate_SixMonthBoundary(t *testing.T) {
	ref := time.Date(2025, 11, 10, 18, 30, 0, 0, time.UTC)

	// Exactly six months back is still the current year.
	got, ok := NormalizeDate("10th May", ref)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if want := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("10th May: got %v, want %v", got, want)
	}

	// One day further rolls a year forward.
	got, ok = NormalizeDate("9th May", ref)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if want := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("9th May: got %v, want %v", got, want)
	}
}

func TestNormalizeDate_CaseAndSpelling(t *testing.T) {
	ref := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	want := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"14TH SEP", "14th sep", "14 Sept", "14 September", "sep 14"} {
		got, ok := NormalizeDate(raw, ref)
		if !ok {
			t.Errorf("%q: expected parse to succeed", raw)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%q: got %v, want %v", raw, got, want)
		}
	}
}

func TestNormalizeDate_MidnightInReferenceLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ref := time.Date(2025, 10, 1, 23, 0, 0, 0, ist)

	for _, raw := range []string{"14th Oct", "2025-10-14"} {
		got, ok := NormalizeDate(raw, ref)
		if !ok {
			t.Fatalf("%q: expected parse to succeed", raw)
		}
		if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
			t.Errorf("%q: expected midnight, got %v", raw, got)
		}
		if got.Location() != ist {
			t.Errorf("%q: expected the reference location, got %v", raw, got.Location())
		}
	}
}

// ---------------------------------------------------------------------------
// Unparseable input
// ---------------------------------------------------------------------------

func TestNormalizeDate_Unparseable(t *testing.T) {
	ref := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	cases := []string{
		"", "   ", "soon", "next week",

		// missing or duplicate tokens
		"14th", "Oct", "Oct Nov 14", "14 15 Oct", "Oct 14 2025 2026",

		// out-of-range or calendar-invalid days; the reference year is not
		// a leap year, so a bare Feb 29 has no home
		"0th Oct", "32nd Oct", "30th Feb 2025", "29th Feb",

		// unknown month token
		"14th Smarch",
	}
	for _, raw := range cases {
		if _, ok := NormalizeDate(raw, ref); ok {
			t.Errorf("expected %q to be unparseable", raw)
		}
	}
}
