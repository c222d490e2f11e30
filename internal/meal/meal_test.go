package meal

import (
	"errors"
	"testing"
)

func TestValidateNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		meal      [3]string // name, date, time
		wantField string
	}{
		{"valid", [3]string{"Breakfast", "2024-01-10", "08:00"}, ""},
		{"empty name", [3]string{"  ", "2024-01-10", "08:00"}, "name"},
		{"empty date", [3]string{"Breakfast", "", "08:00"}, "date"},
		{"bad date form", [3]string{"Breakfast", "10/01/2024", "08:00"}, "date"},
		{"empty time", [3]string{"Breakfast", "2024-01-10", ""}, "time"},
		{"bad time form", [3]string{"Breakfast", "2024-01-10", "8am"}, "time"},
		{"out of range time", [3]string{"Breakfast", "2024-01-10", "24:00"}, "time"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateNew(tt.meal[0], tt.meal[1], tt.meal[2])
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("field = %s, want %s", verr.Field, tt.wantField)
			}
		})
	}
}

func TestPatchApplyCannotUncomplete(t *testing.T) {
	t.Parallel()
	m := Meal{ID: "1", Name: "Dinner", Completed: true}
	f := false
	got := Patch{Completed: &f}.Apply(m)
	if !got.Completed {
		t.Fatal("patch reverted completed to false")
	}
}

func TestPatchApplyMergesFields(t *testing.T) {
	t.Parallel()
	m := Meal{ID: "1", Name: "Dinner", Date: "2024-01-10", Time: "18:00", Notes: "dry food"}
	name := "Supper"
	clock := "19:30"
	got := Patch{Name: &name, Time: &clock}.Apply(m)
	if got.Name != "Supper" || got.Time != "19:30" {
		t.Fatalf("patched meal = %+v", got)
	}
	if got.Date != "2024-01-10" || got.Notes != "dry food" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestDueAt(t *testing.T) {
	t.Parallel()
	m := Meal{ID: "1", Date: "2024-01-10", Time: "10:00"}
	if !m.DueAt(at(t, "2024-01-10T10:00")) {
		t.Fatal("expected due at the exact minute")
	}
	if m.DueAt(at(t, "2024-01-10T10:01")) {
		t.Fatal("due outside the matching minute")
	}
	if m.DueAt(at(t, "2024-01-11T10:00")) {
		t.Fatal("due on the wrong day")
	}
	done := m
	done.Completed = true
	if done.DueAt(at(t, "2024-01-10T10:00")) {
		t.Fatal("completed meal reported due")
	}
}

func TestMinuteOfDay(t *testing.T) {
	t.Parallel()
	got, err := MinuteOfDay("23:15")
	if err != nil {
		t.Fatalf("MinuteOfDay error: %v", err)
	}
	if got != 23*60+15 {
		t.Fatalf("unexpected result: %d", got)
	}
	if _, err := MinuteOfDay("24:00"); err == nil {
		t.Fatal("expected error for invalid hour")
	}
}
