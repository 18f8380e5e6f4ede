package normalization

import (
	"testing"
	"time"
)

var testToday = time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDeadline(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"iso", "2025-11-05", date(2025, time.November, 5), true},
		{"iso far future", "2099-01-01", date(2099, time.January, 1), true},
		{"iso padded", "  2027-03-01\t", date(2027, time.March, 1), true},
		{"day month future", "25/12", date(2026, time.December, 25), true},
		{"day month today", "18/10", date(2026, time.October, 18), true},
		{"day month passed rolls", "17/10", date(2027, time.October, 17), true},
		{"day month dash", "01-02", date(2027, time.February, 1), true},
		{"day month year", "05/11/2025", date(2025, time.November, 5), true},
		{"two digit year", "05/11/25", date(2025, time.November, 5), true},
		{"two digit year dash", "9-1-27", date(2027, time.January, 9), true},
		{"day first not month first", "03/04/2027", date(2027, time.April, 3), true},
		{"abbrev month", "5 Nov", date(2026, time.November, 5), true},
		{"full month", "05 November", date(2026, time.November, 5), true},
		{"abbrev passed rolls", "1 Jan", date(2027, time.January, 1), true},
		{"abbrev with year", "05 Nov 2025", date(2025, time.November, 5), true},
		{"full with year", "14 February 2028", date(2028, time.February, 14), true},
		{"month case insensitive", "3 MAR", date(2027, time.March, 3), true},

		{"empty", "", time.Time{}, false},
		{"whitespace", "   \t ", time.Time{}, false},
		{"garbage", "next tuesday", time.Time{}, false},
		{"day out of range for month", "31/04/2027", time.Time{}, false},
		{"iso invalid day", "2027-02-30", time.Time{}, false},
		{"iso year zero", "0000-01-01", time.Time{}, false},
		{"not leap year", "29/02/2027", time.Time{}, false},
		{"month thirteen", "12/13", time.Time{}, false},
		{"empty part", "5//11", time.Time{}, false},
		{"too many parts", "1/2/3/4", time.Time{}, false},
		{"textual bad day", "32 Jan", time.Time{}, false},
		{"textual short year", "5 Nov 25", time.Time{}, false},
		{"unknown month", "5 Novembre", time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeDeadline(tc.raw, testToday)
			if ok != tc.ok {
				t.Fatalf("raw=%q ok=%v want %v (got %v)", tc.raw, ok, tc.ok, got)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("raw=%q got=%s want=%s", tc.raw, got.Format(isoDateLayout), tc.want.Format(isoDateLayout))
			}
		})
	}
}

func TestNormalizeDeadlineLeapDayRollsOnlyWhenValid(t *testing.T) {
	// 29 Feb 2028 exists; from 2028-03-01 the roll lands on 2029, which has none.
	today := date(2028, time.March, 1)
	if _, ok := NormalizeDeadline("29/02", today); ok {
		t.Fatal("expected no deadline when the rolled date does not exist")
	}
	got, ok := NormalizeDeadline("29/02", date(2028, time.January, 10))
	if !ok || !got.Equal(date(2028, time.February, 29)) {
		t.Fatalf("got=%v ok=%v", got, ok)
	}
}

func TestNormalizeDeadlineTextualAndNumericAgree(t *testing.T) {
	a, okA := NormalizeDeadline("05 Nov 2025", testToday)
	b, okB := NormalizeDeadline("05/11/2025", testToday)
	if !okA || !okB || !a.Equal(b) {
		t.Fatalf("a=%v(%v) b=%v(%v)", a, okA, b, okB)
	}
}

func TestNormalizeDeadlineKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	got, ok := NormalizeDeadline("2027-01-02", time.Date(2026, time.October, 18, 23, 0, 0, 0, loc))
	if !ok || got.Location() != loc {
		t.Fatalf("got=%v ok=%v", got, ok)
	}
}

func TestNormalizeDeadlines(t *testing.T) {
	s := func(v string) *string { return &v }
	raws := []*string{s("2026-10-20"), nil, s("soon")}

	got := NormalizeDeadlines(raws, 4, testToday)
	if len(got) != 4 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0] == nil || !got[0].Equal(date(2026, time.October, 20)) {
		t.Fatalf("got[0]=%v", got[0])
	}
	for i := 1; i < 4; i++ {
		if got[i] != nil {
			t.Fatalf("got[%d]=%v, want nil", i, got[i])
		}
	}

	if short := NormalizeDeadlines(raws, 1, testToday); len(short) != 1 {
		t.Fatalf("extra deadlines must be ignored, len=%d", len(short))
	}
}

func TestToday(t *testing.T) {
	got := Today(testToday)
	if !got.Equal(date(2026, time.October, 18)) {
		t.Fatalf("got=%v", got)
	}
}
