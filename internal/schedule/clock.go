package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadClock  = errors.New("bad clock value, want HH:MM")
	ErrBadDate   = errors.New("bad date value, want YYYY-MM-DD")
	ErrBadWindow = errors.New("window start must be before end")
)

// ParseClock разбирает "HH:MM" в минуты от начала суток.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock форматирует минуты от начала суток обратно в "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate разбирает дату "YYYY-MM-DD" (UTC, без времени).
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return d, nil
}

// WeekdayIndex возвращает номер дня недели: 0 = понедельник ... 6 = воскресенье.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
