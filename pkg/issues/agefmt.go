package issues

import (
	"fmt"
	"time"
)

// humanDelta formats the distance between two instants for dashboard
// display, coarsening with age:
//
//	>= 1 year:   "3Y 2M"
//	>= 1 month:  "2M 5D"
//	>= 3 days:   "5D 18H"
//	>= 1 day:    "1D 18H30"
//	>= 1 hour:   "18H 30M"
//	< 1 hour:    "0H 30M"
func humanDelta(from, to time.Time) string {
	if from.After(to) {
		from, to = to, from
	}

	years, months, days := calendarDiff(from, to)
	if years > 0 {
		return fmt.Sprintf("%dY %dM", years, months)
	}
	if months > 0 {
		return fmt.Sprintf("%dM %dD", months, days)
	}

	d := to.Sub(from)
	dd := int(d.Hours()) / 24
	hh := int(d.Hours()) % 24
	mm := int(d.Minutes()) % 60

	if dd >= 3 {
		return fmt.Sprintf("%dD %dH", dd, hh)
	}
	if dd >= 1 {
		return fmt.Sprintf("%dD %dH%02d", dd, hh, mm)
	}
	if hh >= 1 {
		return fmt.Sprintf("%dH %dM", hh, mm)
	}
	return fmt.Sprintf("0H %dM", mm)
}

// calendarDiff returns the calendar year/month/day difference between two
// instants, the way a person would count it.
func calendarDiff(from, to time.Time) (years, months, days int) {
	years = to.Year() - from.Year()
	months = int(to.Month()) - int(from.Month())
	days = to.Day() - from.Day()

	if days < 0 {
		months--
		// days in the month preceding `to`
		prev := time.Date(to.Year(), to.Month(), 0, 0, 0, 0, 0, to.Location())
		days += prev.Day()
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months, days
}
