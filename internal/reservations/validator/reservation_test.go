package validator

import (
	"testing"

	"aula/pkg/logger"
	"aula/pkg/model"
)

func validReservation() *model.Reservation {
	return &model.Reservation{
		ClassroomID: "room-101",
		UserID:      "prof-1",
		Date:        "2025-06-01",
		Slot:        model.Interval{Start: 600, End: 720},
		Purpose:     "Linear algebra lecture",
	}
}

func TestValidate(t *testing.T) {
	v := NewReservationValidator(logger.Discard())

	if err := v.Validate(validReservation()); err != nil {
		t.Fatalf("valid reservation rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.Reservation)
	}{
		{"missing classroom", func(r *model.Reservation) { r.ClassroomID = "" }},
		{"missing user", func(r *model.Reservation) { r.UserID = "" }},
		{"missing date", func(r *model.Reservation) { r.Date = "" }},
		{"malformed date", func(r *model.Reservation) { r.Date = "01/06/2025" }},
		{"impossible date", func(r *model.Reservation) { r.Date = "2025-02-30" }},
		{"empty slot", func(r *model.Reservation) { r.Slot = model.Interval{Start: 600, End: 600} }},
		{"inverted slot", func(r *model.Reservation) { r.Slot = model.Interval{Start: 720, End: 600} }},
		{"slot past midnight", func(r *model.Reservation) { r.Slot = model.Interval{Start: 600, End: 1500} }},
		{"negative start", func(r *model.Reservation) { r.Slot = model.Interval{Start: -10, End: 600} }},
		{"short purpose", func(r *model.Reservation) { r.Purpose = "ab" }},
		{"unknown status", func(r *model.Reservation) { r.Status = "archived" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReservation()
			tc.mutate(r)
			if err := v.Validate(r); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewReservationValidator(logger.Discard())

	date := model.Date("2025-06-02")
	good := model.Interval{Start: 840, End: 960}
	purpose := "Department meeting"

	if err := v.ValidateUpdate(&model.ReservationUpdate{Date: &date, Slot: &good, Purpose: &purpose}); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}
	if err := v.ValidateUpdate(&model.ReservationUpdate{Purpose: &purpose}); err != nil {
		t.Fatalf("partial update rejected: %v", err)
	}

	if err := v.ValidateUpdate(&model.ReservationUpdate{}); err == nil {
		t.Error("empty update accepted")
	}

	bad := model.Interval{Start: 960, End: 840}
	if err := v.ValidateUpdate(&model.ReservationUpdate{Slot: &bad}); err == nil {
		t.Error("inverted slot accepted")
	}

	badDate := model.Date("not-a-date")
	if err := v.ValidateUpdate(&model.ReservationUpdate{Date: &badDate}); err == nil {
		t.Error("malformed date accepted")
	}

	shortPurpose := "x"
	if err := v.ValidateUpdate(&model.ReservationUpdate{Purpose: &shortPurpose}); err == nil {
		t.Error("short purpose accepted")
	}
}
