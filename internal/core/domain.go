package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category is one value of the fixed, closed expense classification set.
type Category string

const (
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryBooks     Category = "Books"
	CategoryLeisure   Category = "Leisure"
	CategoryBills     Category = "Bills"
	CategoryOther     Category = "Other"
)

// Categories returns the closed category set in display order. Callers get
// a fresh slice so the set cannot be mutated from outside.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryBooks,
		CategoryLeisure,
		CategoryBills,
		CategoryOther,
	}
}

var (
	// ErrInvalidInput is the umbrella for rejected record creation. All
	// add-time validation errors wrap it so callers can match the whole
	// family with a single errors.Is check.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrInvalidInput)
	ErrUnknownCategory  = fmt.Errorf("%w: unknown category", ErrInvalidInput)
)

type (
	// Date is a calendar date at day granularity. The time component is
	// always midnight UTC so equality and range checks are exact.
	Date struct {
		time.Time
	}

	// Money is a currency amount in integer cents. All arithmetic runs on
	// cents; floats appear only at display boundaries.
	Money struct {
		Cents int64
	}

	// Record is a single expense entry in the ledger.
	Record struct {
		ID          int64    `json:"id"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
		Amount      Money    `json:"amount_cents"`
		Category    Category `json:"category"`
	}
)

// NewDate builds a Date pinned to midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Equal reports calendar-day equality.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Money serializes as a bare cent count so snapshots round-trip with no
// loss of precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	cents, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return fmt.Errorf("unmarshal money: %w", err)
	}
	m.Cents = cents
	return nil
}

// ValidCategory reports whether c belongs to the given closed set.
func ValidCategory(c Category, allowed []Category) bool {
	for _, a := range allowed {
		if a == c {
			return true
		}
	}
	return false
}

// Validate checks the fields that must hold before a record may enter the
// ledger: non-empty description, positive amount, concrete date. The
// category check lives in the ledger store, which owns the configured set.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
