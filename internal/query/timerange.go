package query

import (
	"strings"
	"time"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// Range is a half-open interval [From, To) of absolute instants. A zero
// bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// DayStart returns local midnight of the civil date of t in loc, as UTC.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).UTC()
}

// NextDayStart returns local midnight of the day after t in loc, as UTC.
func NextDayStart(t time.Time, loc *time.Location) time.Time {
	next := DayStart(t, loc).In(loc).AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, loc).UTC()
}

const dateLayout = "2006-01-02"

// parseDate parses a yyyy-MM-dd civil date in loc.
func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "Invalid "+field+" format (expect yyyy-MM-dd)")
	}
	return t, nil
}

// DateRange converts inclusive civil start and end dates into an absolute
// range. Either bound may be empty.
func DateRange(start, end string, loc *time.Location) (Range, error) {
	var r Range
	var startDay, endDay time.Time
	if strings.TrimSpace(start) != "" {
		d, err := parseDate("startDate", start, loc)
		if err != nil {
			return Range{}, err
		}
		startDay = d
		r.From = DayStart(d, loc)
	}
	if strings.TrimSpace(end) != "" {
		d, err := parseDate("endDate", end, loc)
		if err != nil {
			return Range{}, err
		}
		endDay = d
		r.To = NextDayStart(d, loc)
	}
	if !startDay.IsZero() && !endDay.IsZero() && startDay.After(endDay) {
		return Range{}, domain.NewValidationError("endDate", "endDate should not be before startDate")
	}
	return r, nil
}

// PeriodRange expands a yyyy, yyyy-MM or yyyy-MM-dd period into the
// absolute range covering that civil year, month or day in loc.
func PeriodRange(period string, loc *time.Location) (Range, error) {
	period = strings.TrimSpace(period)
	layouts := []struct {
		layout string
		years  int
		months int
		days   int
	}{
		{"2006", 1, 0, 0},
		{"2006-01", 0, 1, 0},
		{dateLayout, 0, 0, 1},
	}
	for _, l := range layouts {
		if len(period) != len(l.layout) {
			continue
		}
		start, err := time.ParseInLocation(l.layout, period, loc)
		if err != nil {
			break
		}
		return Range{
			From: start.UTC(),
			To:   start.AddDate(l.years, l.months, l.days).UTC(),
		}, nil
	}
	return Range{}, domain.NewValidationError("period", "Invalid period format (expect yyyy, yyyy-MM or yyyy-MM-dd)")
}
