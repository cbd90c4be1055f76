package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2026-02-02", "2028-02-29", "1999-12-31"}
	invalid := []string{"2026-2-2", "2026-02-30", "02-02-2026", "2026/02/02", "", "today"}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidEntryHours(t *testing.T) {
	cases := []struct {
		hours float64
		want  bool
	}{
		{0.25, true},
		{8, true},
		{24, true},
		{0, false},
		{0.1, false},
		{24.5, false},
		{-1, false},
	}
	for _, c := range cases {
		if got := IsValidEntryHours(c.hours); got != c.want {
			t.Errorf("IsValidEntryHours(%v) = %v, want %v", c.hours, got, c.want)
		}
	}
}

func TestIsValidPlannedHours(t *testing.T) {
	if !IsValidPlannedHours(0) {
		t.Error("IsValidPlannedHours(0) = false, want true")
	}
	if IsValidPlannedHours(-0.5) {
		t.Error("IsValidPlannedHours(-0.5) = true, want false")
	}
}

func TestValidationErrorsToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "must be YYYY-MM-DD"},
		{Field: "hours", Message: "must be between 0.25 and 24"},
	}
	m := errs.ToMap()
	if len(m) != 2 || m["date"] == "" || m["hours"] == "" {
		t.Errorf("ToMap() = %v, want both fields present", m)
	}
	if errs.Error() == "" {
		t.Error("Error() should join field messages")
	}
}
