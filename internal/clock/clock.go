package clock

import (
	"fmt"
	"math"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone = "Asia/Seoul"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Clock is the business calendar: "now" and "today" in the company timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(tz string) *Clock {
	return &Clock{loc: Location(tz), now: time.Now}
}

// Fixed returns a clock frozen at t, interpreted in t's location.
func Fixed(t time.Time) *Clock {
	return &Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Func returns a clock driven by fn, interpreted in the given timezone.
func Func(tz string, fn func() time.Time) *Clock {
	return &Clock{loc: Location(tz), now: fn}
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the current calendar date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// NowHM is the current time of day as HH:MM.
func (c *Clock) NowHM() string {
	return c.Now().Format(TimeLayout)
}

// Week returns Monday..Friday of the week containing today.
func (c *Clock) Week() []string {
	return WeekDates(c.Now())
}

// MonthToDate returns the first of the current month and today.
func (c *Clock) MonthToDate() (string, string) {
	now := c.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.Format(DateLayout), now.Format(DateLayout)
}

// WeekDates returns the five working days (Mon..Fri) of the week containing day.
func WeekDates(day time.Time) []string {
	offset := (int(day.Weekday()) + 6) % 7
	monday := time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())

	dates := make([]string, 5)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	return t, nil
}

func ParseTimeOfDay(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil || len(s) != len(TimeLayout) {
		return time.Time{}, fmt.Errorf("time must be HH:MM: %q", s)
	}
	return t, nil
}

// MinutesBetween is floor(out - in) in minutes using time-of-day arithmetic
// only. The result is negative when out is earlier than in.
func MinutesBetween(in, out string) (int, error) {
	start, err := ParseTimeOfDay(in)
	if err != nil {
		return 0, err
	}
	end, err := ParseTimeOfDay(out)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(end.Sub(start).Minutes())), nil
}

// ElapsedSince is the number of whole minutes from clockIn (HH:MM, today) to
// now. It never goes below zero.
func (c *Clock) ElapsedSince(clockIn string) int {
	minutes, err := MinutesBetween(clockIn, c.NowHM())
	if err != nil || minutes < 0 {
		return 0
	}
	return minutes
}
