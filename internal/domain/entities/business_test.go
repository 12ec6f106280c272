package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/pkg/geo"
)

func TestBusiness_LocationRoundTrip(t *testing.T) {
	b := &Business{}

	_, ok, err := b.Location()
	assert.False(t, ok)
	assert.NoError(t, err)

	b.SetLocation(geo.Coordinates{Latitude: 6.45, Longitude: 3.39})
	coords, ok, err := b.Location()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6.45, coords.Latitude)

	broken := "{broken"
	b.Coordinates = &broken
	_, ok, err = b.Location()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestAddress_FullTextSkipsBlanks(t *testing.T) {
	a := Address{Line1: "12 Broad St", City: "Lagos", State: " ", Country: "Nigeria"}
	assert.Equal(t, "12 Broad St, Lagos, Nigeria", a.FullText())
}

func TestWeekdayOf(t *testing.T) {
	// 2026-10-12 is a Monday.
	monday := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	for i, want := range Weekdays {
		assert.Equal(t, want, WeekdayOf(monday.AddDate(0, 0, i)))
	}
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday(" Friday ")
	require.NoError(t, err)
	assert.Equal(t, Friday, day)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestScheduleFromHours(t *testing.T) {
	schedule := ScheduleFromHours([]*BusinessHours{
		{Day: Monday, OpenTime: "09:00", CloseTime: "17:00"},
		nil,
		{Day: Sunday, IsClosed: true},
	})

	assert.Len(t, schedule, 2)
	assert.Equal(t, DayHours{Open: "09:00", Close: "17:00"}, schedule[Monday])
	assert.True(t, schedule[Sunday].Closed)
}
