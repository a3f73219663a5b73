package model

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []Status{"", "confirmed", "PENDING", "deleted"} {
		if s.Valid() {
			t.Errorf("status %q should be invalid", s)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusApproved, StatusOngoing},
		{StatusApproved, StatusCancelled},
		{StatusApproved, StatusDone},
		{StatusOngoing, StatusDone},
	}

	allowedSet := make(map[[2]Status]bool, len(allowed))
	for _, tr := range allowed {
		allowedSet[[2]Status{tr.from, tr.to}] = true
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	// Everything not in the explicit list is forbidden, including every
	// edge out of a terminal state and every self-transition.
	for _, from := range Statuses {
		for _, to := range Statuses {
			if allowedSet[[2]Status{from, to}] {
				continue
			}
			if from.CanTransition(to) {
				t.Errorf("unexpected transition %s -> %s", from, to)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[Status]bool{
		StatusRejected:  true,
		StatusDone:      true,
		StatusCancelled: true,
	}

	for _, s := range Statuses {
		if got := s.Terminal(); got != terminal[s] {
			t.Errorf("Terminal(%s) = %v, want %v", s, got, terminal[s])
		}
	}

	if Status("garbage").Terminal() {
		t.Error("unknown status must not report as terminal")
	}
}
