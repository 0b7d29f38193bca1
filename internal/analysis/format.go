package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/meltforce/gymtrack/internal/models"
)

const lbsPerKg = 2.205

// FormatDuration renders seconds as "45s", "32m" or "1h 12m".
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatNumber renders large counts with k/M suffixes.
func FormatNumber(n float64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", n/1_000_000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", n/1000)
	}
	return fmt.Sprintf("%g", n)
}

// FormatWeight renders a kg value in the given unit system.
func FormatWeight(weightKg float64, units models.UnitSystem) string {
	if units == models.UnitsImperial {
		return fmt.Sprintf("%.1f lbs", KgToLbs(weightKg))
	}
	return fmt.Sprintf("%g kg", weightKg)
}

// KgToLbs converts kilograms to pounds.
func KgToLbs(kg float64) float64 { return kg * lbsPerKg }

// LbsToKg converts pounds to kilograms.
func LbsToKg(lbs float64) float64 { return lbs / lbsPerKg }

// CmToFeetInches renders a cm height as feet and inches, e.g. 5'11".
func CmToFeetInches(cm float64) string {
	totalInches := cm / 2.54
	feet := int(totalInches / 12)
	inches := int(math.Round(math.Mod(totalInches, 12)))
	return fmt.Sprintf("%d'%d\"", feet, inches)
}

// FormatRelativeDate renders a calendar day relative to now: "Today",
// "Yesterday", "3 days ago", "2 weeks ago", then "Jun 10".
func FormatRelativeDate(date string, now time.Time) string {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	diffDays := int(today.Sub(d).Hours() / 24)

	switch {
	case diffDays == 0:
		return "Today"
	case diffDays == 1:
		return "Yesterday"
	case diffDays < 7:
		return fmt.Sprintf("%d days ago", diffDays)
	case diffDays < 30:
		return fmt.Sprintf("%d weeks ago", diffDays/7)
	default:
		return d.Format("Jan 2")
	}
}

// StreakMessage returns the motivational line shown for a streak length.
func StreakMessage(streak int) string {
	switch {
	case streak == 0:
		return "Let's get started! Today is day one."
	case streak < 3:
		return "Great start! Keep the momentum going!"
	case streak < 7:
		return "You're building a habit! Stay consistent!"
	case streak < 14:
		return "Impressive dedication! You're on fire!"
	case streak < 30:
		return "Incredible consistency! You're unstoppable!"
	default:
		return "You're a legend! Nothing can stop you now!"
	}
}
