// Package week maps "YYYY-Www" identifiers to calendar dates. Weeks run
// Sunday through Saturday: week w of a year starts on the Sunday on or
// before January 1st, plus (w-1)*7 days. This is not ISO-8601 week
// numbering and Next/Prev deliberately ignore 53-week years, rolling over
// after week 52. Existing schedule rows are keyed by these identifiers, so
// the arithmetic must stay stable.
package week

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidFormat = errors.New("invalid year-week format, expected YYYY-Www")

var pattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Parse splits a "YYYY-Www" identifier into its year and week number.
func Parse(yearWeek string) (year int, wk int, err error) {
	if !pattern.MatchString(yearWeek) {
		return 0, 0, ErrInvalidFormat
	}
	year, _ = strconv.Atoi(yearWeek[:4])
	wk, _ = strconv.Atoi(yearWeek[6:])
	if wk < 1 || wk > 53 {
		return 0, 0, ErrInvalidFormat
	}
	return year, wk, nil
}

// Format builds the "YYYY-Www" identifier for a year and week number.
func Format(year, wk int) string {
	return fmt.Sprintf("%04d-W%02d", year, wk)
}

// Dates returns the seven days of the week, Sunday through Saturday, all
// at UTC midnight.
func Dates(yearWeek string) ([7]time.Time, error) {
	var days [7]time.Time

	year, wk, err := Parse(yearWeek)
	if err != nil {
		return days, err
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	firstSunday := jan1.AddDate(0, 0, -int(jan1.Weekday()))

	start := firstSunday.AddDate(0, 0, (wk-1)*7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days, nil
}

// Next returns the identifier of the following week. Week numbers above 52
// roll to week 1 of the next year.
func Next(yearWeek string) (string, error) {
	year, wk, err := Parse(yearWeek)
	if err != nil {
		return "", err
	}
	wk++
	if wk > 52 {
		year++
		wk = 1
	}
	return Format(year, wk), nil
}

// Prev returns the identifier of the preceding week, rolling to week 52 of
// the prior year below week 1.
func Prev(yearWeek string) (string, error) {
	year, wk, err := Parse(yearWeek)
	if err != nil {
		return "", err
	}
	wk--
	if wk < 1 {
		year--
		wk = 52
	}
	return Format(year, wk), nil
}

// Of returns the identifier of the week containing t, using the same
// Sunday-based arithmetic as Dates.
func Of(t time.Time) string {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	firstSunday := jan1.AddDate(0, 0, -int(jan1.Weekday()))
	wk := int(t.Sub(firstSunday).Hours()/24/7) + 1
	return Format(t.Year(), wk)
}

// WeekdayName is the display name stored on schedule rows.
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}
