package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/meltforce/gymtrack/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{45, "45s"},
		{60, "1m"},
		{1920, "32m"},
		{3600, "1h 0m"},
		{4320, "1h 12m"},
		{7380, "2h 3m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{12.5, "12.5"},
		{999, "999"},
		{1000, "1.0k"},
		{1500, "1.5k"},
		{2_500_000, "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatWeight(t *testing.T) {
	if got := FormatWeight(82.5, models.UnitsMetric); got != "82.5 kg" {
		t.Errorf("metric = %q, want %q", got, "82.5 kg")
	}
	if got := FormatWeight(100, models.UnitsImperial); got != "220.5 lbs" {
		t.Errorf("imperial = %q, want %q", got, "220.5 lbs")
	}
}

func TestWeightConversionRoundTrip(t *testing.T) {
	if got := KgToLbs(100); math.Abs(got-220.5) > 1e-9 {
		t.Errorf("KgToLbs(100) = %v, want 220.5", got)
	}
	if got := LbsToKg(KgToLbs(82.5)); math.Abs(got-82.5) > 1e-9 {
		t.Errorf("round trip = %v, want 82.5", got)
	}
}

func TestCmToFeetInches(t *testing.T) {
	tests := []struct {
		cm   float64
		want string
	}{
		{180, `5'11"`},
		{152.4, `5'0"`},
		{182.88, `6'0"`},
	}
	for _, tt := range tests {
		if got := CmToFeetInches(tt.cm); got != tt.want {
			t.Errorf("CmToFeetInches(%v) = %q, want %q", tt.cm, got, tt.want)
		}
	}
}

func TestFormatRelativeDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		date string
		want string
	}{
		{"2024-06-15", "Today"},
		{"2024-06-14", "Yesterday"},
		{"2024-06-12", "3 days ago"},
		{"2024-06-01", "2 weeks ago"},
		{"2024-05-01", "May 1"},
		{"not-a-date", "not-a-date"},
	}
	for _, tt := range tests {
		if got := FormatRelativeDate(tt.date, now); got != tt.want {
			t.Errorf("FormatRelativeDate(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestStreakMessage(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, "Let's get started! Today is day one."},
		{2, "Great start! Keep the momentum going!"},
		{5, "You're building a habit! Stay consistent!"},
		{10, "Impressive dedication! You're on fire!"},
		{20, "Incredible consistency! You're unstoppable!"},
		{45, "You're a legend! Nothing can stop you now!"},
	}
	for _, tt := range tests {
		if got := StreakMessage(tt.streak); got != tt.want {
			t.Errorf("StreakMessage(%d) = %q, want %q", tt.streak, got, tt.want)
		}
	}
}
