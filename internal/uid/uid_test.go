package uid

import (
	"fmt"
	"testing"
	"time"
)

// makeUID собирает номер с заданной датой подачи на правильном смещении.
func makeUID(date time.Time) string {
	return fmt.Sprintf("200038101%s00007421", date.Format("20060102"))
}

func TestIsValid(t *testing.T) {
	recent := time.Now().AddDate(0, -3, 0)

	tests := []struct {
		name string
		uid  string
		want bool
	}{
		{"valid with recent date", makeUID(recent), true},
		{"too short", "42", false},
		{"empty", "", false},
		{"wrong prefix", "0000011111222223333344444", false},
		{"placeholder zeros", "2000000000000000000000000", false},
		{"placeholder nines", "2000099999999999999999999", false},
		{"date too far in past", makeUID(time.Now().AddDate(-10, 0, 0)), false},
		{"date too far in future", makeUID(time.Now().AddDate(10, 0, 0)), false},
		{"non numeric date", "200038101aaaabbcc00007421", false},
		{"26 chars", makeUID(recent) + "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.uid); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.uid, got, tt.want)
			}
		})
	}
}

func TestIsValidShort(t *testing.T) {
	tests := []struct {
		name     string
		shortUID string
		want     bool
	}{
		{"with marker", "*007421", true},
		{"no marker", "007421", false},
		{"empty", "", false},
		{"too long", "*0074211", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidShort(tt.shortUID); got != tt.want {
				t.Errorf("IsValidShort(%q) = %v, want %v", tt.shortUID, got, tt.want)
			}
		})
	}
}

func TestShort(t *testing.T) {
	if got := Short("2000381012023090500007421"); got != "*007421" {
		t.Errorf("Short() = %q, want %q", got, "*007421")
	}
}

func TestParseReceptionDate(t *testing.T) {
	recent := time.Now().AddDate(0, -2, 0)

	t.Run("round trip", func(t *testing.T) {
		want := recent.Format("2006-01-02")
		if got := ParseReceptionDate(makeUID(recent)); got != want {
			t.Errorf("ParseReceptionDate() = %q, want %q", got, want)
		}
	})

	tests := []struct {
		name string
		uid  string
	}{
		{"invalid month", "200038101" + recent.Format("2006") + "0005" + "00007421"},
		{"invalid day", "200038101" + recent.Format("2006") + "0100" + "00007421"},
		{"garbage", "not-a-uid"},
		{"empty", ""},
		{"date out of range", makeUID(time.Now().AddDate(-30, 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseReceptionDate(tt.uid); got != DateUnknown {
				t.Errorf("ParseReceptionDate(%q) = %q, want sentinel %q", tt.uid, got, DateUnknown)
			}
		})
	}
}
