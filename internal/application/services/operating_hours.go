package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bizfinder/discovery/internal/domain/entities"
)

const lastMinuteOfDay = 23*60 + 59

// IsOpenNow reports whether a weekly schedule is open at now. Times are read
// as wall clock in now's location. Missing days, missing times and unparseable
// times all count as closed.
func IsOpenNow(schedule entities.WeeklySchedule, now time.Time) bool {
	day := entities.WeekdayOf(now)
	hours, ok := schedule[day]
	if !ok || hours.Closed {
		return false
	}
	if strings.TrimSpace(hours.Open) == "" || strings.TrimSpace(hours.Close) == "" {
		return false
	}

	open, err := ParseClock(hours.Open)
	if err != nil {
		log.Warn().Err(err).Str("day", string(day)).Msg("unparseable opening time, treating as closed")
		return false
	}
	closing, err := ParseClock(hours.Close)
	if err != nil {
		log.Warn().Err(err).Str("day", string(day)).Msg("unparseable closing time, treating as closed")
		return false
	}

	current := now.Hour()*60 + now.Minute()
	return openAt(open, closing, current)
}

// openAt evaluates one day's interval in minutes since midnight
func openAt(open, closing, current int) bool {
	// 00:00 to 00:00 or 23:59 means around the clock
	if open == 0 && (closing == 0 || closing == lastMinuteOfDay) {
		return true
	}
	if closing <= open {
		return current >= open || current < closing
	}
	return current >= open && current < closing
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are accepted and ignored.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", value)
	}

	limits := []int{23, 59, 59}
	fields := make([]int, len(parts))
	for i, part := range parts {
		if len(part) == 0 || len(part) > 2 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		fields[i] = n
	}

	return fields[0]*60 + fields[1], nil
}
