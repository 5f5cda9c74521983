package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	d, err := Parse("2026-03-07")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := d.String(); got != "2026-03-07" {
		t.Errorf("String() = %q, want 2026-03-07", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "tomorrow", "07/03/2026", "2026-13-01"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2026-08-24", 1, "2026-08-25"},
		{"2026-08-24", 0, "2026-08-24"},
		{"2026-08-31", 1, "2026-09-01"},
		{"2026-12-31", 1, "2027-01-01"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2024-02-28", 1, "2024-02-29"}, // leap year
	}
	for _, tt := range tests {
		d, err := Parse(tt.start)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.start, err)
		}
		if got := d.AddDays(tt.n).String(); got != tt.want {
			t.Errorf("%s.AddDays(%d) = %s, want %s", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	today := New(2026, time.August, 24)
	tests := []struct {
		other Date
		want  int
	}{
		{New(2026, time.August, 26), 2},
		{New(2026, time.August, 24), 0},
		{New(2026, time.August, 23), -1},
		{New(2026, time.September, 1), 8},
	}
	for _, tt := range tests {
		if got := today.DaysUntil(tt.other); got != tt.want {
			t.Errorf("DaysUntil(%s) = %d, want %d", tt.other, got, tt.want)
		}
	}
}

func TestYearEnd(t *testing.T) {
	d := New(2026, time.February, 14)
	if got := d.YearEnd().String(); got != "2026-12-31" {
		t.Errorf("YearEnd() = %s, want 2026-12-31", got)
	}
}

func TestMax(t *testing.T) {
	a := New(2026, time.August, 24)
	b := New(2026, time.August, 30)
	if got := Max(a, b); !got.Equal(b.Time) {
		t.Errorf("Max = %s, want %s", got, b)
	}
	if got := Max(b, a); !got.Equal(b.Time) {
		t.Errorf("Max reversed = %s, want %s", got, b)
	}
	if got := Max(a, a); !got.Equal(a.Time) {
		t.Errorf("Max(a, a) = %s, want %s", got, a)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2026, time.August, 24)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2026-08-24"` {
		t.Errorf("Marshal = %s, want \"2026-08-24\"", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestJSONRejectsBadString(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Error("Unmarshal accepted a malformed date")
	}
}
