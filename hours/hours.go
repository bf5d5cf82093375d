// Package hours decides whether a restaurant is taking orders right now from
// its weekly schedule.
package hours

import (
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/food-delivery/models"
)

const (
	DaysPerWeek   = 7
	MinutesPerDay = 24 * 60

	// DefaultOffsetMinutes is the marketplace zone, UTC-3.
	DefaultOffsetMinutes = -180
)

var (
	ErrWeekSize        = errors.New("hours must contain exactly one row per weekday")
	ErrWeekday         = errors.New("weekday must be between 0 and 6")
	ErrDuplicate       = errors.New("weekday appears more than once")
	ErrOpeningTime     = errors.New("opened_at must be between 0 and 1439")
	ErrClosingTime     = errors.New("closed_at must be between 1 and 1440")
	ErrWindow          = errors.New("closed_at must be after opened_at")
	ErrSpansMidnight   = errors.New("opening hours cannot span midnight")
	ErrUnknownTimeZone = errors.New("time zone offset must be within 14 hours of UTC")
)

var location = time.FixedZone(zoneName(DefaultOffsetMinutes), DefaultOffsetMinutes*60)

// SetOffset changes the zone used to read the clock. It is meant to be
// called once at start-up.
func SetOffset(minutes int) error {
	if minutes < -14*60 || minutes > 14*60 {
		return ErrUnknownTimeZone
	}
	location = time.FixedZone(zoneName(minutes), minutes*60)
	return nil
}

func Location() *time.Location {
	return location
}

func zoneName(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("UTC%s%d", sign, minutes/60)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, minutes/60, minutes%60)
}

// MinuteOfDay converts t to minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	local := t.In(location)
	return local.Hour()*60 + local.Minute()
}

// Weekday returns the local weekday of t, Sunday being 0.
func Weekday(t time.Time) int {
	return int(t.In(location).Weekday())
}

// IsOpen is true iff the day is flagged open and minute falls in
// [OpenedAt, ClosedAt).
func IsOpen(h models.Hour, minute int) bool {
	return h.Open && h.OpenedAt <= minute && minute < h.ClosedAt
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Status is what the storefront shows next to a restaurant.
type Status struct {
	Open     bool   `json:"open"`
	OpensAt  string `json:"opens_at,omitempty"`
	ClosesAt string `json:"closes_at,omitempty"`
}

// Today picks the row of week matching the local weekday of now.
func Today(week []models.Hour, now time.Time) (models.Hour, bool) {
	day := Weekday(now)
	for _, h := range week {
		if h.Weekday == day {
			return h, true
		}
	}
	return models.Hour{}, false
}

// Evaluate reports whether the restaurant is open at now. When it is closed
// but still due to open later the same day, OpensAt carries the time.
func Evaluate(week []models.Hour, now time.Time) Status {
	today, ok := Today(week, now)
	if !ok {
		return Status{}
	}

	minute := MinuteOfDay(now)
	if IsOpen(today, minute) {
		return Status{Open: true, ClosesAt: FormatMinutes(today.ClosedAt)}
	}

	var st Status
	if today.Open && minute < today.OpenedAt {
		st.OpensAt = FormatMinutes(today.OpenedAt)
	}
	return st
}

// OpenAt is Evaluate(week, now).Open.
func OpenAt(week []models.Hour, now time.Time) bool {
	return Evaluate(week, now).Open
}

// Validate checks a full replacement week. Closed days only need a valid
// weekday; their times are ignored.
func Validate(week []models.Hour) error {
	if len(week) != DaysPerWeek {
		return ErrWeekSize
	}

	var seen [DaysPerWeek]bool
	for _, h := range week {
		if h.Weekday < 0 || h.Weekday >= DaysPerWeek {
			return ErrWeekday
		}
		if seen[h.Weekday] {
			return ErrDuplicate
		}
		seen[h.Weekday] = true

		if !h.Open {
			continue
		}
		if h.OpenedAt < 0 || h.OpenedAt >= MinutesPerDay {
			return ErrOpeningTime
		}
		if h.ClosedAt > MinutesPerDay {
			return ErrSpansMidnight
		}
		if h.ClosedAt < 1 {
			return ErrClosingTime
		}
		if h.ClosedAt <= h.OpenedAt {
			return ErrWindow
		}
	}
	return nil
}

// DefaultWeek is the schedule a new restaurant starts with: every day closed.
func DefaultWeek(restaurantID uint) []models.Hour {
	week := make([]models.Hour, 0, DaysPerWeek)
	for day := 0; day < DaysPerWeek; day++ {
		week = append(week, models.Hour{RestaurantID: restaurantID, Weekday: day})
	}
	return week
}
