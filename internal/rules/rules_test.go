package rules

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return &t
}

func TestAlternatives(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"single", "India", []string{"India"}},
		{"multiple", "India, Bengaluru,Mumbai", []string{"India", "Bengaluru", "Mumbai"}},
		{"blanks dropped", "India, ,,  ", []string{"India"}},
		{"all blank", " , ,", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rule{Pattern: tt.pattern}.Alternatives()
			if len(got) != len(tt.want) {
				t.Fatalf("Alternatives(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("alt[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpiredAt(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		expires *time.Time
		want    bool
	}{
		{"no expiry", nil, false},
		{"expires today still live", date(2026, time.March, 10), false},
		{"expired yesterday", date(2026, time.March, 9), true},
		{"expires tomorrow", date(2026, time.March, 11), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rule{Kind: KindCompany, Active: true, ExpiresAt: tt.expires}
			if got := r.ExpiredAt(now); got != tt.want {
				t.Errorf("ExpiredAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiryEndOfDayBoundary(t *testing.T) {
	r := Rule{Kind: KindCompany, Active: true, ExpiresAt: date(2026, time.March, 10)}

	lastMoment := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.Local)
	if r.ExpiredAt(lastMoment) {
		t.Error("rule should still be live at 23:59:59 on its expiry day")
	}
	nextDay := time.Date(2026, time.March, 11, 0, 0, 1, 0, time.Local)
	if !r.ExpiredAt(nextDay) {
		t.Error("rule should be expired just after midnight")
	}
	// expiry is independent of the active flag
	if !r.Usable(lastMoment) {
		t.Error("active non-expired rule should be usable")
	}
	r.Active = false
	if r.Usable(lastMoment) {
		t.Error("inactive rule should never be usable")
	}
}

func TestSeverityRank(t *testing.T) {
	if SeverityRed.Rank() <= SeverityAmber.Rank() {
		t.Error("red must outrank amber")
	}
	if SeverityAmber.Rank() <= SeverityGreen.Rank() {
		t.Error("amber must outrank green")
	}
}

func TestParseExpiry(t *testing.T) {
	if _, ok := ParseExpiry(""); ok {
		t.Error("blank expiry should not parse")
	}
	if _, ok := ParseExpiry("not-a-date"); ok {
		t.Error("junk expiry should not parse")
	}
	got, ok := ParseExpiry("2026-03-10")
	if !ok || got.Year() != 2026 || got.Month() != time.March || got.Day() != 10 {
		t.Errorf("ParseExpiry(2026-03-10) = %v, %v", got, ok)
	}
}
