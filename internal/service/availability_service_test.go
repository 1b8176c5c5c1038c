package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/specials-api/internal/models"
)

func mustTime(t *testing.T, raw string) models.TimeOfDay {
	t.Helper()
	tod, err := models.ParseTimeOfDay(raw)
	require.NoError(t, err)
	return tod
}

func timePtr(tod models.TimeOfDay) *models.TimeOfDay { return &tod }

func datePtr(d models.Date) *models.Date { return &d }

func lateNightSpecial(t *testing.T) *models.Special {
	t.Helper()
	return &models.Special{
		ID:        "sp-1",
		Content:   "Late night happy hour",
		Type:      models.SpecialTypeDrink,
		StartDate: models.NewDate(2024, time.January, 5),
		StartTime: mustTime(t, "22:00"),
		EndTime:   timePtr(mustTime(t, "02:00")),
	}
}

func TestIsActiveAtMidnightCrossing(t *testing.T) {
	sp := lateNightSpecial(t)

	tests := []struct {
		ref  string
		want bool
	}{
		{"2024-01-05T23:30:00Z", true},
		{"2024-01-06T01:30:00Z", true},
		{"2024-01-05T22:00:00Z", true},
		{"2024-01-05T21:59:00Z", false},
		{"2024-01-06T02:00:00Z", false},
		{"2024-01-06T03:00:00Z", false},
		{"2024-01-06T23:30:00Z", false},
	}
	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			ref, err := time.Parse(time.RFC3339, tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.want, IsActiveAt(sp, ref, time.UTC))
		})
	}
}

func TestIsActiveAtWeeklyFriday(t *testing.T) {
	days := int16(models.DayFriday)
	sp := &models.Special{
		StartDate:      models.NewDate(2024, time.January, 5),
		StartTime:      mustTime(t, "17:00"),
		EndTime:        timePtr(mustTime(t, "19:00")),
		IsRecurring:    true,
		RecurrenceDays: &days,
	}

	tests := []struct {
		ref  string
		want bool
	}{
		{"2024-01-05T17:30:00Z", true},
		{"2024-01-12T17:30:00Z", true},
		{"2024-01-13T17:30:00Z", false},
		{"2024-01-12T19:00:00Z", false},
		{"2024-01-12T16:59:00Z", false},
	}
	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			ref, err := time.Parse(time.RFC3339, tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.want, IsActiveAt(sp, ref, time.UTC))
		})
	}
}

func TestIsActiveAtBeforeStartDate(t *testing.T) {
	sp := lateNightSpecial(t)
	ref, err := time.Parse(time.RFC3339, "2024-01-04T23:30:00Z")
	require.NoError(t, err)
	assert.False(t, IsActiveAt(sp, ref, time.UTC))
}

func TestIsActiveAtExpiration(t *testing.T) {
	days := int16(models.DayFriday | models.DaySaturday)
	sp := &models.Special{
		StartDate:      models.NewDate(2024, time.January, 5),
		StartTime:      mustTime(t, "22:00"),
		EndTime:        timePtr(mustTime(t, "02:00")),
		ExpirationDate: datePtr(models.NewDate(2024, time.January, 31)),
		IsRecurring:    true,
		RecurrenceDays: &days,
	}

	ref, err := time.Parse(time.RFC3339, "2024-01-26T23:30:00Z")
	require.NoError(t, err)
	assert.True(t, IsActiveAt(sp, ref, time.UTC))

	// Past the expiration date the special is never active, even for a
	// window that would otherwise spill over from the last valid day.
	ref, err = time.Parse(time.RFC3339, "2024-02-01T01:30:00Z")
	require.NoError(t, err)
	assert.False(t, IsActiveAt(sp, ref, time.UTC))

	ref, err = time.Parse(time.RFC3339, "2024-02-02T23:30:00Z")
	require.NoError(t, err)
	assert.False(t, IsActiveAt(sp, ref, time.UTC))
}

func TestIsActiveAtZeroLengthWindow(t *testing.T) {
	sp := &models.Special{
		StartDate: models.NewDate(2024, time.January, 5),
		StartTime: mustTime(t, "17:00"),
		EndTime:   timePtr(mustTime(t, "17:00")),
	}

	ref, err := time.Parse(time.RFC3339, "2024-01-05T17:00:00Z")
	require.NoError(t, err)
	assert.False(t, IsActiveAt(sp, ref, time.UTC))
}

func TestIsActiveAtMissingEndTime(t *testing.T) {
	sp := &models.Special{
		StartDate: models.NewDate(2024, time.January, 5),
		StartTime: mustTime(t, "17:00"),
	}

	tests := []struct {
		ref  string
		want bool
	}{
		{"2024-01-05T17:00:00Z", true},
		{"2024-01-05T23:59:00Z", true},
		{"2024-01-06T00:00:00Z", false},
		{"2024-01-05T16:59:00Z", false},
	}
	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			ref, err := time.Parse(time.RFC3339, tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.want, IsActiveAt(sp, ref, time.UTC))
		})
	}
}

func TestIsActiveAtVenueTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 17:00-19:00 New York time on 2024-01-05 is 22:00-00:00 UTC.
	sp := &models.Special{
		StartDate: models.NewDate(2024, time.January, 5),
		StartTime: mustTime(t, "17:00"),
		EndTime:   timePtr(mustTime(t, "19:00")),
	}

	ref, err := time.Parse(time.RFC3339, "2024-01-05T23:00:00Z")
	require.NoError(t, err)
	assert.True(t, IsActiveAt(sp, ref, loc))
	assert.False(t, IsActiveAt(sp, ref, time.UTC))
}

func TestIsActiveAtNilLocationDefaultsUTC(t *testing.T) {
	sp := lateNightSpecial(t)
	ref, err := time.Parse(time.RFC3339, "2024-01-05T23:30:00Z")
	require.NoError(t, err)
	assert.True(t, IsActiveAt(sp, ref, nil))
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	ref, err := time.Parse(time.RFC3339, "2024-01-05T23:30:00Z")
	require.NoError(t, err)

	items := make([]models.SpecialSearchResult, 50)
	for i := range items {
		sp := lateNightSpecial(t)
		sp.ID = fmt.Sprintf("sp-%d", i)
		if i%2 == 1 {
			// Shift odd entries out of the active window.
			sp.StartDate = models.NewDate(2024, time.January, 6)
		}
		items[i] = models.SpecialSearchResult{Special: *sp, VenueName: "Venue", VenueTimezone: "UTC"}
	}

	results := EvaluateBatch(items, ref)
	require.Len(t, results, len(items))
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("sp-%d", i), res.ID)
		assert.Equal(t, i%2 == 0, res.IsCurrentlyRunning)
	}
}

func TestEvaluateBatchEmpty(t *testing.T) {
	results := EvaluateBatch(nil, time.Now())
	assert.Empty(t, results)
}

func TestLocationFor(t *testing.T) {
	assert.Equal(t, time.UTC, locationFor(""))
	assert.Equal(t, time.UTC, locationFor("Not/AZone"))

	loc := locationFor("America/Chicago")
	require.NotNil(t, loc)
	assert.Equal(t, "America/Chicago", loc.String())

	// Cached lookup returns the same instance.
	assert.Same(t, loc, locationFor("America/Chicago"))
}
