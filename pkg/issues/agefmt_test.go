package issues

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanDelta(t *testing.T) {
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		from time.Time
		want string
	}{
		{"years", base.AddDate(-3, -2, 0), "3Y 2M"},
		{"months", base.AddDate(0, -2, -5), "2M 5D"},
		{"days", base.Add(-(5*24 + 18) * time.Hour), "5D 18H"},
		{"day with minutes", base.Add(-(24*time.Hour + 18*time.Hour + 30*time.Minute)), "1D 18H30"},
		{"hours", base.Add(-(18*time.Hour + 30*time.Minute)), "18H 30M"},
		{"minutes", base.Add(-30 * time.Minute), "0H 30M"},
		{"zero", base, "0H 0M"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, humanDelta(tc.from, base))
		})
	}
}

func TestHumanDelta_SwapsReversedArguments(t *testing.T) {
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "0H 30M", humanDelta(base, base.Add(-30*time.Minute)))
}
