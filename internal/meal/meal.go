// Package meal holds the feeding schedule domain: the Meal record, the
// classifier that partitions a snapshot into views, and the next-due selector.
//
// Everything here is pure; time flows in as an argument, never from the clock.
package meal

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date form stored on a Meal ("2024-01-10").
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock form stored on a Meal ("08:30").
	// No seconds: due-matching works at minute granularity.
	ClockLayout = "15:04"
)

// Meal is one scheduled feeding event.
//
// CreatedAt/UpdatedAt are provenance stamps owned by the store; the core never
// writes them.
type Meal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"` // YYYY-MM-DD, local calendar date
	Time      string    `json:"time"` // HH:MM, local wall clock
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Patch carries a partial update. Nil fields are left untouched.
// Completed only transitions false -> true; a patch cannot un-complete a meal.
type Patch struct {
	Name      *string
	Date      *string
	Time      *string
	Notes     *string
	Completed *bool
}

// DateOf formats t's local calendar date in the stored form.
func DateOf(t time.Time) string { return t.Format(DateLayout) }

// ClockOf formats t's local wall clock in the stored form.
func ClockOf(t time.Time) string { return t.Format(ClockLayout) }

// MinuteOfDay parses an HH:MM value into minutes since midnight.
func MinuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse(ClockLayout, hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// minuteOrNegative is MinuteOfDay for already-validated records; malformed
// values sort before everything instead of failing classification.
func minuteOrNegative(hhmm string) int {
	m, err := MinuteOfDay(hhmm)
	if err != nil {
		return -1
	}
	return m
}

// ValidateNew checks the required fields of a meal about to be created.
// It runs before any store call is attempted.
func ValidateNew(name, date, clock string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateDate(date); err != nil {
		return err
	}
	return validateClock(clock)
}

func validateDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return &ValidationError{Field: "date", Reason: "must not be empty"}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}

func validateClock(clock string) error {
	if strings.TrimSpace(clock) == "" {
		return &ValidationError{Field: "time", Reason: "must not be empty"}
	}
	if _, err := time.Parse(ClockLayout, clock); err != nil {
		return &ValidationError{Field: "time", Reason: "must be HH:MM"}
	}
	return nil
}

// ValidatePatch checks the fields a patch wants to change.
func ValidatePatch(p Patch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Date != nil {
		if err := validateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Time != nil {
		if err := validateClock(*p.Time); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into a copy of m.
func (p Patch) Apply(m Meal) Meal {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.Time != nil {
		m.Time = *p.Time
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	if p.Completed != nil && *p.Completed {
		m.Completed = true
	}
	return m
}

// DueAt reports whether the meal is due at t: dated t's day, timed t's minute,
// and not yet completed.
func (m Meal) DueAt(t time.Time) bool {
	return !m.Completed && m.Date == DateOf(t) && m.Time == ClockOf(t)
}
