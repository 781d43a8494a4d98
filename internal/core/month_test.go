package core

import (
	"testing"
	"time"
)

func TestMonthCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Month
		want int
	}{
		{"same", Month{2024, time.May}, Month{2024, time.May}, 0},
		{"earlier month", Month{2024, time.April}, Month{2024, time.May}, -1},
		{"earlier year later month", Month{2023, time.December}, Month{2024, time.January}, -1},
		{"later year", Month{2025, time.January}, Month{2024, time.December}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-05")
	if err != nil || m != (Month{2024, time.May}) {
		t.Fatalf("got %v, %v", m, err)
	}
	if m.String() != "2024-05" {
		t.Fatalf("String() = %q", m.String())
	}
	if _, err := ParseMonth("2024-13"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewMonth(2024, 0); err == nil {
		t.Fatalf("expected error for month 0")
	}
}
