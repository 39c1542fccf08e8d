package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToOffsetDays(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"same day", start, 0},
		{"whole days", start.AddDate(0, 0, 10), 10},
		{"partial day rounds up", start.Add(36 * time.Hour), 2},
		{"one minute rounds up", start.Add(time.Minute), 1},
		{"leap day", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 60},
		{"before start clamps", start.AddDate(0, 0, -3), 0},
		{"half a day before clamps", start.Add(-12 * time.Hour), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToOffsetDays(start, tc.target))
		})
	}
}

func TestToOffsetDays_AcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// Clocks spring forward on 2024-03-10; that day is 23 hours long.
	start := time.Date(2024, time.March, 9, 0, 0, 0, 0, loc)
	target := time.Date(2024, time.March, 12, 0, 0, 0, 0, loc)
	assert.Equal(t, 3, ToOffsetDays(start, target))
	assert.True(t, FromOffsetDays(start, 3).Equal(target))

	// And fall back on 2024-11-03; that day is 25 hours long.
	start = time.Date(2024, time.November, 2, 0, 0, 0, 0, loc)
	target = time.Date(2024, time.November, 4, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, ToOffsetDays(start, target))
}

func TestOffsetRoundTrip(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, n := range []int{0, 1, 7, 30, 59, 365, 1000} {
		got := ToOffsetDays(start, FromOffsetDays(start, n))
		require.Equal(t, n, got, "offset %d", n)
	}
}

func TestFromOffsetDays(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-08", FromOffsetDays(start, 7).Format("2006-01-02"))
	assert.Equal(t, "2024-01-31", FromOffsetDays(start, 30).Format("2006-01-02"))
	assert.Equal(t, "2024-01-01", FromOffsetDays(start, 0).Format("2006-01-02"))
}
