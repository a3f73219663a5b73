package service

import (
	"context"
	"testing"

	apperrors "aula/pkg/errors"
	"aula/pkg/model"
)

func newAvailabilityEnv(rooms ...*model.Classroom) (*testEnv, AvailabilityService) {
	env := newTestEnv(at("2025-06-01", "06:00"), rooms...)
	return env, NewAvailabilityService(env.repo, env.catalog, env.cfg)
}

func roomIDs(rooms []*model.Classroom) map[string]bool {
	out := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		out[r.ID] = true
	}
	return out
}

// A pending request blocks the single-room check but leaves the room
// listed in the broad search. The two rules diverge on purpose: the
// check protects the writer path, the search only hides firm occupancy.
func TestAvailability_PendingAsymmetry(t *testing.T) {
	env, avail := newAvailabilityEnv()
	ctx := context.Background()

	seedReservation(t, env, model.StatusPending, "2025-06-01", slot("10:00", "12:00"))

	free, err := avail.CheckAvailability(ctx, "room-101", "2025-06-01", slot("11:00", "13:00"), "")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if free {
		t.Error("pending hold should block the single-room check")
	}

	rooms, err := avail.FindAvailableClassrooms(ctx, "2025-06-01", slot("11:00", "13:00"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !roomIDs(rooms)["room-101"] {
		t.Error("pending hold should not hide the room from the search")
	}
}

func TestAvailability_CommittedStatusesBlockBoth(t *testing.T) {
	for _, status := range []model.Status{model.StatusApproved, model.StatusOngoing} {
		t.Run(string(status), func(t *testing.T) {
			env, avail := newAvailabilityEnv()
			ctx := context.Background()

			seedReservation(t, env, status, "2025-06-01", slot("10:00", "12:00"))

			free, err := avail.CheckAvailability(ctx, "room-101", "2025-06-01", slot("11:00", "13:00"), "")
			if err != nil {
				t.Fatalf("check failed: %v", err)
			}
			if free {
				t.Errorf("%s reservation should block the check", status)
			}

			rooms, err := avail.FindAvailableClassrooms(ctx, "2025-06-01", slot("11:00", "13:00"))
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if roomIDs(rooms)["room-101"] {
				t.Errorf("%s reservation should hide the room from the search", status)
			}
		})
	}
}

func TestAvailability_InertStatusesBlockNeither(t *testing.T) {
	for _, status := range []model.Status{model.StatusRejected, model.StatusCancelled, model.StatusDone} {
		t.Run(string(status), func(t *testing.T) {
			env, avail := newAvailabilityEnv()
			ctx := context.Background()

			seedReservation(t, env, status, "2025-06-01", slot("10:00", "12:00"))

			free, err := avail.CheckAvailability(ctx, "room-101", "2025-06-01", slot("10:00", "12:00"), "")
			if err != nil {
				t.Fatalf("check failed: %v", err)
			}
			if !free {
				t.Errorf("%s reservation should not block the check", status)
			}

			rooms, err := avail.FindAvailableClassrooms(ctx, "2025-06-01", slot("10:00", "12:00"))
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if !roomIDs(rooms)["room-101"] {
				t.Errorf("%s reservation should not hide the room", status)
			}
		})
	}
}

func TestAvailability_TouchingBoundaryIsFree(t *testing.T) {
	env, avail := newAvailabilityEnv()
	ctx := context.Background()

	seedReservation(t, env, model.StatusApproved, "2025-06-01", slot("10:00", "12:00"))

	free, err := avail.CheckAvailability(ctx, "room-101", "2025-06-01", slot("12:00", "14:00"), "")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !free {
		t.Error("slot starting exactly at the other's end should be free")
	}
}

func TestCheckAvailability_ExcludesGivenReservation(t *testing.T) {
	env, avail := newAvailabilityEnv()
	ctx := context.Background()

	existing := seedReservation(t, env, model.StatusApproved, "2025-06-01", slot("10:00", "12:00"))

	free, err := avail.CheckAvailability(ctx, "room-101", "2025-06-01", slot("10:00", "12:00"), existing.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !free {
		t.Error("a reservation should not conflict with itself when excluded")
	}

	free, err = avail.CheckAvailability(ctx, "room-101", "2025-06-01", slot("10:00", "12:00"), "some-other-id")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if free {
		t.Error("excluding an unrelated reservation should not free the slot")
	}
}

func TestAvailability_BaseStatusFilters(t *testing.T) {
	closed := &model.Classroom{ID: "room-closed", Name: "R999", Capacity: 20, BaseStatus: model.ClassroomUnavailable}
	_, avail := newAvailabilityEnv(defaultRoom, closed)
	ctx := context.Background()

	free, err := avail.CheckAvailability(ctx, "room-closed", "2025-06-01", slot("10:00", "12:00"), "")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if free {
		t.Error("administratively closed room should never be available")
	}

	rooms, err := avail.FindAvailableClassrooms(ctx, "2025-06-01", slot("10:00", "12:00"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	ids := roomIDs(rooms)
	if ids["room-closed"] {
		t.Error("closed room listed as available")
	}
	if !ids["room-101"] {
		t.Error("open room missing from search")
	}
}

func TestAvailability_UnknownClassroom(t *testing.T) {
	_, avail := newAvailabilityEnv()

	_, err := avail.CheckAvailability(context.Background(), "no-such-room", "2025-06-01", slot("10:00", "12:00"), "")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestAvailability_InvalidQuery(t *testing.T) {
	_, avail := newAvailabilityEnv()
	ctx := context.Background()

	if _, err := avail.CheckAvailability(ctx, "room-101", "June first", slot("10:00", "12:00"), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("bad date: expected INVALID_INPUT, got %v", err)
	}

	inverted := model.Interval{Start: mustTime("12:00"), End: mustTime("10:00")}
	if _, err := avail.FindAvailableClassrooms(ctx, "2025-06-01", inverted); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("inverted slot: expected INVALID_INPUT, got %v", err)
	}
}

func TestListOccupiedSlots(t *testing.T) {
	env, avail := newAvailabilityEnv()
	ctx := context.Background()

	seedReservation(t, env, model.StatusPending, "2025-06-01", slot("08:00", "09:00"))
	seedReservation(t, env, model.StatusApproved, "2025-06-01", slot("10:00", "12:00"))
	seedReservation(t, env, model.StatusCancelled, "2025-06-01", slot("14:00", "16:00"))
	seedReservation(t, env, model.StatusApproved, "2025-06-02", slot("10:00", "12:00"))

	slots, err := avail.ListOccupiedSlots(ctx, "room-101", "2025-06-01")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	// Pending and approved show up; cancelled and other dates do not.
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	for _, s := range slots {
		if s.Status != model.StatusPending && s.Status != model.StatusApproved {
			t.Errorf("unexpected status in schedule: %s", s.Status)
		}
	}
}
