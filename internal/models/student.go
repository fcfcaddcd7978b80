package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Student struct {
	ID         string     `db:"id" json:"id" validate:"required"`
	Name       string     `db:"name" json:"name"`
	DOB        Date       `db:"dob" json:"dob"`
	Gender     string     `db:"gender" json:"gender"`
	Faculty    string     `db:"faculty" json:"faculty"`
	SchoolYear SchoolYear `db:"school_year" json:"schoolYear"`
	Program    string     `db:"program" json:"program"`
	Address    string     `db:"address" json:"address"`
	Email      string     `db:"email" json:"email" validate:"vnemail"`
	Phone      string     `db:"phone" json:"phone" validate:"vnphone"`
	Status     string     `db:"status" json:"status"`
}

// Date is a plain calendar date. Timestamps coming from the server are
// truncated to their UTC day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// dateTimeLayouts are the zone-less forms SQL backends commonly emit.
var dateTimeLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Display renders the date the way the roster table shows it (vi-VN).
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		// unreadable dates decode as no date
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// Scan lets sqlx read dates stored as TEXT (sqlite) or DATE (postgres).
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		v = v.UTC()
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// SchoolYear is kept as text, but servers are free to send it as a number.
type SchoolYear string

func (y *SchoolYear) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = SchoolYear(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("schoolYear must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*y = SchoolYear(strconv.FormatInt(i, 10))
		return nil
	}
	*y = SchoolYear(n.String())
	return nil
}
