package domain

import "testing"

func TestStatusCatalog(t *testing.T) {
	known := []Status{
		StatusPending, StatusInProgress, StatusAnswered, StatusCancelled,
		StatusWaitingResponse, StatusResolvedSuccessfully, StatusResolvedNegatively,
	}
	for _, status := range known {
		if !status.IsKnown() {
			t.Fatalf("%v should be a catalog member", status)
		}
	}
	if Status(0).IsKnown() || Status(4).IsKnown() || Status(99).IsKnown() {
		t.Fatalf("non-catalog ordinals must not be known")
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:              false,
		StatusInProgress:           false,
		StatusAnswered:             false,
		StatusCancelled:            true,
		StatusWaitingResponse:      false,
		StatusResolvedSuccessfully: true,
		StatusResolvedNegatively:   true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Fatalf("%v IsTerminal = %v, want %v", status, got, want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	// Any catalog status is reachable from a non-terminal status,
	// including itself; terminal statuses admit nothing.
	if !CanTransition(StatusPending, StatusResolvedSuccessfully) {
		t.Fatalf("open status should reach any catalog status")
	}
	if !CanTransition(StatusAnswered, StatusAnswered) {
		t.Fatalf("same-status transition should be allowed on open requests")
	}
	if CanTransition(StatusCancelled, StatusPending) {
		t.Fatalf("terminal status must admit no transitions")
	}
	if CanTransition(StatusResolvedNegatively, StatusResolvedNegatively) {
		t.Fatalf("terminal same-status transition must be rejected")
	}
	if CanTransition(StatusPending, Status(42)) {
		t.Fatalf("unknown target must be rejected")
	}
	if CanTransition(Status(42), StatusPending) {
		t.Fatalf("unknown source must be rejected")
	}
}

func TestStatusDisplayName(t *testing.T) {
	if got := StatusWaitingResponse.DisplayName(); got != "Waiting Response" {
		t.Fatalf("DisplayName = %q", got)
	}
	if got := Status(42).DisplayName(); got != "Unknown" {
		t.Fatalf("unknown DisplayName = %q", got)
	}
}

func TestStatusFromFilter(t *testing.T) {
	if status, ok := StatusFromFilter("resolved_successfully"); !ok || status != StatusResolvedSuccessfully {
		t.Fatalf("filter mapping failed: %v %v", status, ok)
	}
	if _, ok := StatusFromFilter("all"); ok {
		t.Fatalf("unrecognized filter value must map to false")
	}
}

func TestPriorityCatalog(t *testing.T) {
	if DefaultPriority != PriorityNormal {
		t.Fatalf("default priority = %v", DefaultPriority)
	}
	if !PriorityCritical.IsKnown() || Priority(0).IsKnown() {
		t.Fatalf("priority catalog membership wrong")
	}
	if priority, ok := PriorityFromFilter("medium"); !ok || priority != PriorityNormal {
		t.Fatalf("medium alias should map to Normal")
	}
}
