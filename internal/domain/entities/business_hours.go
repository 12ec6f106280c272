package entities

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the lower-case English day name used as the schedule key
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the schedule keys Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf maps a time to its schedule key.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// ParseWeekday accepts a day name in any case.
func ParseWeekday(s string) (Weekday, error) {
	day := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range Weekdays {
		if d == day {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// BusinessHours is the schedule of one business for one weekday.
// Times are business-local wall clock "HH:MM" strings with no timezone.
type BusinessHours struct {
	ID         string    `json:"id" db:"id"`
	BusinessID string    `json:"business_id" db:"business_id"`
	Day        Weekday   `json:"day" db:"day"`
	OpenTime   string    `json:"open_time" db:"open_time"`
	CloseTime  string    `json:"close_time" db:"close_time"`
	IsClosed   bool      `json:"is_closed" db:"is_closed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DayHours is the evaluator view of one day.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeeklySchedule maps weekdays to their hours. Missing days are closed.
type WeeklySchedule map[Weekday]DayHours

// ScheduleFromHours builds the evaluator view from stored records.
func ScheduleFromHours(hours []*BusinessHours) WeeklySchedule {
	schedule := make(WeeklySchedule, len(hours))
	for _, h := range hours {
		if h == nil {
			continue
		}
		schedule[h.Day] = DayHours{Open: h.OpenTime, Close: h.CloseTime, Closed: h.IsClosed}
	}
	return schedule
}
