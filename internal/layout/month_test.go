package layout

import (
	"fmt"
	"testing"
	"time"

	"github.com/javiermolinar/calgrid/internal/event"
)

func TestBuildMonth_Shape(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		weekStart time.Weekday
		wantFirst string
		wantLast  string
		wantWeeks int
	}{
		// March 2025 starts on a Saturday and ends on a Monday.
		{"monday start", 2025, time.March, time.Monday, "2025-02-24", "2025-04-06", 6},
		{"sunday start", 2025, time.March, time.Sunday, "2025-02-23", "2025-04-05", 6},
		// February 2021 is exactly four Monday-started weeks.
		{"exact fit", 2021, time.February, time.Monday, "2021-02-01", "2021-02-28", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildMonth(tt.year, tt.month, tt.weekStart, nil, time.UTC)
			if len(g.Weeks) != tt.wantWeeks {
				t.Fatalf("weeks: got %d, want %d", len(g.Weeks), tt.wantWeeks)
			}
			first := g.Weeks[0][0].Date.Format(time.DateOnly)
			last := g.Weeks[len(g.Weeks)-1][6].Date.Format(time.DateOnly)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("range: got %s..%s, want %s..%s", first, last, tt.wantFirst, tt.wantLast)
			}
			for _, row := range g.Weeks {
				for _, c := range row {
					if c.InMonth != (c.Date.Month() == tt.month) {
						t.Errorf("%s: InMonth %v", c.Date.Format(time.DateOnly), c.InMonth)
					}
				}
			}
		})
	}
}

func TestBuildMonth_Events(t *testing.T) {
	events := []event.Event{
		ev("b", at("2025-03-10", "11:00"), at("2025-03-10", "12:00")),
		ev("a", at("2025-03-10", "09:00"), at("2025-03-10", "10:00")),
		ev("overnight", at("2025-03-14", "22:00"), at("2025-03-15", "02:00")),
		ev("midnight", at("2025-03-20", "23:00"), at("2025-03-21", "00:00")),
		ev("spill", at("2025-04-01", "09:00"), at("2025-04-01", "10:00")),
		ev("far", at("2025-06-01", "09:00"), at("2025-06-01", "10:00")),
	}

	g := BuildMonth(2025, time.March, time.Monday, events, time.UTC)

	tests := []struct {
		day  string
		want []string
	}{
		{"2025-03-10", []string{"a", "b"}},
		{"2025-03-14", []string{"overnight"}},
		{"2025-03-15", []string{"overnight"}},
		{"2025-03-20", []string{"midnight"}},
		{"2025-03-21", nil},
		{"2025-04-01", []string{"spill"}},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			c, ok := g.Cell(at(tt.day, "00:00"))
			if !ok {
				t.Fatalf("no cell for %s", tt.day)
			}
			if fmt.Sprint(c.EventIDs) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", c.EventIDs, tt.want)
			}
		})
	}

	if _, ok := g.Cell(at("2025-06-01", "00:00")); ok {
		t.Error("June must not be in the March grid")
	}
}
