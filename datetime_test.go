package nufx

import (
	"testing"
	"time"
)

func TestDateTimeZero(t *testing.T) {
	var d DateTime
	if !d.IsZero() {
		t.Fatal("zero-value DateTime should report IsZero")
	}
	tm, err := d.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tm.IsZero() {
		t.Fatalf("expected zero time.Time, got %v", tm)
	}
}

func TestDateTimeOrdinary(t *testing.T) {
	// 1988-03-14 09:05:22, a Monday.
	d := DateTime{Second: 22, Minute: 5, Hour: 9, Year: 88, Day: 13, Month: 2, Weekday: 1}
	tm, err := d.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1988, time.March, 14, 9, 5, 22, 0, time.UTC)
	if !tm.Equal(want) {
		t.Fatalf("got %v, want %v", tm, want)
	}
}

func TestDateTimeMinuteOverflow(t *testing.T) {
	// minute=75 should cascade into hour: 10:15 -> 11:15.
	d := DateTime{Hour: 10, Minute: 75, Year: 90, Day: 0, Month: 0}
	tm, err := d.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Hour() != 11 || tm.Minute() != 15 {
		t.Fatalf("got %02d:%02d, want 11:15", tm.Hour(), tm.Minute())
	}
}

func TestDateTimeHourOverflow(t *testing.T) {
	// hour=25 should cascade into day.
	d := DateTime{Hour: 25, Year: 90, Day: 0, Month: 0}
	tm, err := d.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Day() != 2 || tm.Hour() != 1 {
		t.Fatalf("got day %d hour %d, want day 2 hour 1", tm.Day(), tm.Hour())
	}
}

func TestDateTimeYearRollover(t *testing.T) {
	// year byte 20 -> 1920, below the 1940 floor, so +100 -> 2020.
	d := DateTime{Year: 20, Day: 0, Month: 0}
	tm, err := d.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Year() != 2020 {
		t.Fatalf("got year %d, want 2020", tm.Year())
	}
}

func TestDateTimeOutOfRange(t *testing.T) {
	cases := []DateTime{
		{Second: 60, Year: 90},
		{Day: 31, Year: 90},
		{Month: 12, Year: 90},
		{Weekday: 8, Year: 90},
	}
	for _, d := range cases {
		if _, err := d.Time(); err == nil {
			t.Errorf("%+v: expected error, got none", d)
		}
	}
}
