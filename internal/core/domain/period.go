package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ISODateLayout is the layout used whenever a date crosses the store or the
// CRM submission payload.
const ISODateLayout = "2006-01-02"

// FrenchDateLayout is the layout used in document template contexts.
const FrenchDateLayout = "02/01/2006"

// Date is a calendar date with no time component.
type Date struct {
	time.Time
}

// NewDate builds a date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFromTime truncates a timestamp to its calendar date.
func DateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(ISODateLayout)
}

// French renders the date as DD/MM/YYYY.
func (d Date) French() string {
	return d.Format(FrenchDateLayout)
}

// MarshalJSON serializes the date as an ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ISO())
}

// UnmarshalJSON accepts the ISO form written by MarshalJSON.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Period is an inclusive date range.
type Period struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`
}

// NewPeriod builds a period, requiring start strictly before end.
func NewPeriod(start, end Date) (Period, error) {
	if !start.Before(end.Time) {
		return Period{}, fmt.Errorf("period start %s must be strictly before end %s", start.ISO(), end.ISO())
	}
	return Period{StartDate: start, EndDate: end}, nil
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.StartDate.IsZero() && p.EndDate.IsZero()
}

// French renders the period as "DD/MM/YYYY - DD/MM/YYYY".
func (p Period) French() string {
	return p.StartDate.French() + " - " + p.EndDate.French()
}
