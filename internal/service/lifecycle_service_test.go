package service

import (
	"context"
	"sync"
	"testing"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/events"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

func newTestEngine(units memUnitMembership) (*LifecycleService, *memUnitOfWork, *recordingDispatcher) {
	uow := newMemUnitOfWork()
	dispatcher := &recordingDispatcher{}
	engine := NewLifecycleService(LifecycleDependencies{
		UnitOfWork:     uow,
		UnitMembership: units,
		Dispatcher:     dispatcher,
	})
	return engine, uow, dispatcher
}

func mustCreate(t *testing.T, engine *LifecycleService, requesterID string) *domain.Request {
	t.Helper()
	request, err := engine.CreateRequest(context.Background(), CreateRequestInput{
		RequesterID: requesterID,
		UnitID:      "unit-1",
		CategoryID:  "cat-1",
		Title:       "printer out of toner",
		Description: "the lab printer ran dry",
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	return request
}

func TestCreateRequestStartsPendingUnassigned(t *testing.T) {
	engine, uow, dispatcher := newTestEngine(nil)

	request := mustCreate(t, engine, "student-1")

	if request.Status != domain.StatusPending {
		t.Fatalf("status = %v, want Pending", request.Status)
	}
	if request.AssignedOfficerID != nil {
		t.Fatalf("new request must be unassigned")
	}
	if request.Priority != domain.PriorityNormal {
		t.Fatalf("priority = %v, want default Normal", request.Priority)
	}
	if request.ExternalKey == "" {
		t.Fatalf("external key must be generated")
	}

	entries := uow.entriesFor(request.ID)
	if len(entries) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(entries))
	}
	if entries[0].PreviousStatus != nil {
		t.Fatalf("creation entry must have nil previous status")
	}
	if entries[0].NewStatus != domain.StatusPending {
		t.Fatalf("creation entry status = %v, want Pending", entries[0].NewStatus)
	}
	if entries[0].ActorID != "student-1" {
		t.Fatalf("creation entry actor = %q, want requester", entries[0].ActorID)
	}

	published := dispatcher.published()
	if len(published) != 1 || published[0].Type != events.EventRequestCreated {
		t.Fatalf("published = %+v, want one RequestCreated", published)
	}
}

func TestCreateRequestRejectsUnknownPriority(t *testing.T) {
	engine, _, _ := newTestEngine(nil)

	bad := domain.Priority(42)
	_, err := engine.CreateRequest(context.Background(), CreateRequestInput{
		RequesterID: "student-1",
		UnitID:      "unit-1",
		CategoryID:  "cat-1",
		Priority:    &bad,
		Title:       "t",
		Description: "d",
	})
	if !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestClaimPendingMovesToInProgress(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	status, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1")
	if err != nil {
		t.Fatalf("ClaimOwnership: %v", err)
	}
	if status != domain.StatusInProgress {
		t.Fatalf("status = %v, want In Progress", status)
	}

	stored := uow.requestByID(request.ID)
	if !stored.AssignedTo("officer-1") {
		t.Fatalf("request not assigned to claiming officer")
	}
	entries := uow.entriesFor(request.ID)
	if len(entries) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(entries))
	}
	last := entries[len(entries)-1]
	if last.PreviousStatus == nil || *last.PreviousStatus != domain.StatusPending {
		t.Fatalf("claim entry previous = %v, want Pending", last.PreviousStatus)
	}
	if last.NewStatus != domain.StatusInProgress {
		t.Fatalf("claim entry new = %v, want In Progress", last.NewStatus)
	}
}

func TestClaimKeepsNonPendingStatus(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	if _, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := engine.Respond(context.Background(), request.ID, "officer-1", domain.StatusWaitingResponse, nil); err != nil {
		t.Fatalf("respond: %v", err)
	}

	status, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-2")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if status != domain.StatusWaitingResponse {
		t.Fatalf("status = %v, want Waiting Response unchanged", status)
	}
	stored := uow.requestByID(request.ID)
	if !stored.AssignedTo("officer-2") {
		t.Fatalf("claim must overwrite the previous assignment")
	}
}

func TestClaimBySameOfficerFails(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	if _, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	before := len(uow.entriesFor(request.ID))

	_, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1")
	if !apperrors.HasCode(err, apperrors.CodeAlreadyOwned) {
		t.Fatalf("err = %v, want ALREADY_OWNED_BY_SELF", err)
	}
	if got := len(uow.entriesFor(request.ID)); got != before {
		t.Fatalf("failed claim wrote %d extra ledger entries", got-before)
	}

	stored := uow.requestByID(request.ID)
	if !stored.AssignedTo("officer-1") || stored.Status != domain.StatusInProgress {
		t.Fatalf("failed claim must leave the request untouched")
	}
}

func TestClaimOnTerminalRequestFails(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")
	if err := engine.Cancel(context.Background(), request.ID, "student-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	before := len(uow.entriesFor(request.ID))

	_, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1")
	if !apperrors.HasCode(err, apperrors.CodeTerminalRequest) {
		t.Fatalf("err = %v, want TERMINAL_REQUEST", err)
	}
	if got := len(uow.entriesFor(request.ID)); got != before {
		t.Fatalf("terminal claim must not touch the ledger")
	}
}

func TestClaimUnknownRequest(t *testing.T) {
	engine, _, _ := newTestEngine(nil)

	_, err := engine.ClaimOwnership(context.Background(), "missing", "officer-1")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestTransferRequiresSharedUnit(t *testing.T) {
	units := memUnitMembership{
		"officer-1": {"unit-1"},
		"officer-2": {"unit-2"},
		"officer-3": {"unit-1", "unit-2"},
	}
	engine, uow, _ := newTestEngine(units)
	request := mustCreate(t, engine, "student-1")
	if _, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	err := engine.TransferOwnership(context.Background(), request.ID, "officer-1", "officer-2")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN for disjoint units", err)
	}

	if err := engine.TransferOwnership(context.Background(), request.ID, "officer-1", "officer-3"); err != nil {
		t.Fatalf("transfer to shared-unit officer: %v", err)
	}

	stored := uow.requestByID(request.ID)
	if !stored.AssignedTo("officer-3") {
		t.Fatalf("assignment did not move")
	}
	if stored.Status != domain.StatusInProgress {
		t.Fatalf("transfer must not change status, got %v", stored.Status)
	}

	entries := uow.entriesFor(request.ID)
	last := entries[len(entries)-1]
	if last.PreviousStatus == nil || *last.PreviousStatus != last.NewStatus {
		t.Fatalf("transfer entry must record previous == new status, got %v -> %v", last.PreviousStatus, last.NewStatus)
	}
	if last.ActorID != "officer-1" {
		t.Fatalf("transfer entry actor = %q, want the transferring officer", last.ActorID)
	}
}

func TestRespondWritesStatusAndComment(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	comment := "please share your student card number"
	if err := engine.Respond(context.Background(), request.ID, "officer-1", domain.StatusWaitingResponse, &comment); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	stored := uow.requestByID(request.ID)
	if stored.Status != domain.StatusWaitingResponse {
		t.Fatalf("status = %v, want Waiting Response", stored.Status)
	}
	if stored.AssignedOfficerID != nil {
		t.Fatalf("respond must not change ownership")
	}

	entries := uow.entriesFor(request.ID)
	last := entries[len(entries)-1]
	if last.Comment == nil || *last.Comment != comment {
		t.Fatalf("comment not recorded")
	}
}

func TestRespondSameStatusAppendsEntry(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	comment := "any update on this?"
	if err := engine.Respond(context.Background(), request.ID, "student-1", domain.StatusPending, &comment); err != nil {
		t.Fatalf("comment-only respond: %v", err)
	}

	entries := uow.entriesFor(request.ID)
	if len(entries) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(entries))
	}
	last := entries[len(entries)-1]
	if *last.PreviousStatus != domain.StatusPending || last.NewStatus != domain.StatusPending {
		t.Fatalf("comment-only entry must record Pending -> Pending")
	}
}

func TestRespondOnTerminalRequestFails(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")
	if err := engine.Cancel(context.Background(), request.ID, "student-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	before := len(uow.entriesFor(request.ID))

	err := engine.Respond(context.Background(), request.ID, "officer-1", domain.StatusAnswered, nil)
	if !apperrors.HasCode(err, apperrors.CodeTerminalRequest) {
		t.Fatalf("err = %v, want TERMINAL_REQUEST", err)
	}
	if got := len(uow.entriesFor(request.ID)); got != before {
		t.Fatalf("rejected respond must not touch the ledger")
	}
}

func TestRespondUnknownStatusFails(t *testing.T) {
	engine, _, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	err := engine.Respond(context.Background(), request.ID, "officer-1", domain.Status(99), nil)
	if !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestResolveRequiresAssignment(t *testing.T) {
	engine, _, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	err := engine.Resolve(context.Background(), request.ID, "officer-1", OutcomeSuccessful)
	if !apperrors.HasCode(err, apperrors.CodeNotAssigned) {
		t.Fatalf("err = %v, want NOT_ASSIGNED", err)
	}
}

func TestResolveByNonAssigneeForbidden(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")
	if _, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	before := len(uow.entriesFor(request.ID))

	err := engine.Resolve(context.Background(), request.ID, "officer-2", OutcomeSuccessful)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}

	stored := uow.requestByID(request.ID)
	if stored.Status != domain.StatusInProgress || !stored.AssignedTo("officer-1") {
		t.Fatalf("forbidden resolve must leave the request untouched")
	}
	if got := len(uow.entriesFor(request.ID)); got != before {
		t.Fatalf("forbidden resolve must not touch the ledger")
	}
}

func TestResolveOutcomes(t *testing.T) {
	cases := []struct {
		outcome ResolveOutcome
		want    domain.Status
	}{
		{OutcomeSuccessful, domain.StatusResolvedSuccessfully},
		{OutcomeNegative, domain.StatusResolvedNegatively},
	}
	for _, tc := range cases {
		engine, uow, dispatcher := newTestEngine(nil)
		request := mustCreate(t, engine, "student-1")
		if _, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1"); err != nil {
			t.Fatalf("claim: %v", err)
		}

		if err := engine.Resolve(context.Background(), request.ID, "officer-1", tc.outcome); err != nil {
			t.Fatalf("Resolve(%s): %v", tc.outcome, err)
		}
		stored := uow.requestByID(request.ID)
		if stored.Status != tc.want {
			t.Fatalf("Resolve(%s) status = %v, want %v", tc.outcome, stored.Status, tc.want)
		}
		if !stored.Status.IsTerminal() {
			t.Fatalf("resolved status must be terminal")
		}

		published := dispatcher.published()
		lastEvent := published[len(published)-1]
		if lastEvent.Type != events.EventRequestResolved {
			t.Fatalf("last event = %v, want RequestResolved", lastEvent.Type)
		}
	}
}

func TestResolveTwiceFails(t *testing.T) {
	engine, _, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")
	if _, err := engine.ClaimOwnership(context.Background(), request.ID, "officer-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := engine.Resolve(context.Background(), request.ID, "officer-1", OutcomeSuccessful); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	err := engine.Resolve(context.Background(), request.ID, "officer-1", OutcomeNegative)
	if !apperrors.HasCode(err, apperrors.CodeAlreadyTerminal) {
		t.Fatalf("err = %v, want ALREADY_TERMINAL", err)
	}
}

func TestCancelOnlyByRequester(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	err := engine.Cancel(context.Background(), request.ID, "student-2")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}

	if err := engine.Cancel(context.Background(), request.ID, "student-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	stored := uow.requestByID(request.ID)
	if stored.Status != domain.StatusCancelled {
		t.Fatalf("status = %v, want Cancelled", stored.Status)
	}
}

func TestCancelTerminalFails(t *testing.T) {
	engine, _, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")
	if err := engine.Cancel(context.Background(), request.ID, "student-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	err := engine.Cancel(context.Background(), request.ID, "student-1")
	if !apperrors.HasCode(err, apperrors.CodeAlreadyTerminal) {
		t.Fatalf("err = %v, want ALREADY_TERMINAL", err)
	}
}

func TestFailedLedgerWriteRollsBackStatus(t *testing.T) {
	engine, uow, dispatcher := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	uow.failAppend = true
	err := engine.Respond(context.Background(), request.ID, "officer-1", domain.StatusAnswered, nil)
	if !apperrors.HasCode(err, apperrors.CodeStorageFailure) {
		t.Fatalf("err = %v, want STORAGE_FAILURE", err)
	}
	uow.failAppend = false

	stored := uow.requestByID(request.ID)
	if stored.Status != domain.StatusPending {
		t.Fatalf("status = %v, want Pending after rollback", stored.Status)
	}
	if len(uow.entriesFor(request.ID)) != 1 {
		t.Fatalf("rolled back transition must not leave a ledger entry")
	}
	if got := len(dispatcher.published()); got != 1 {
		t.Fatalf("rolled back transition must not publish events, got %d", got)
	}
}

// The ledger is a replayable record: walking it in order reconstructs
// every status the request passed through, and consecutive entries
// chain previous to new.
func TestLedgerReplayReconstructsHistory(t *testing.T) {
	engine, uow, _ := newTestEngine(memUnitMembership{
		"officer-1": {"unit-1"},
		"officer-2": {"unit-1"},
	})
	ctx := context.Background()
	request := mustCreate(t, engine, "student-1")

	if _, err := engine.ClaimOwnership(ctx, request.ID, "officer-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := engine.Respond(ctx, request.ID, "officer-1", domain.StatusWaitingResponse, nil); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if err := engine.TransferOwnership(ctx, request.ID, "officer-1", "officer-2"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := engine.Respond(ctx, request.ID, "student-1", domain.StatusAnswered, nil); err != nil {
		t.Fatalf("student respond: %v", err)
	}
	if err := engine.Resolve(ctx, request.ID, "officer-2", OutcomeSuccessful); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	entries := uow.entriesFor(request.ID)
	if entries[0].PreviousStatus != nil {
		t.Fatalf("first entry must open the chain with nil previous")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PreviousStatus == nil {
			t.Fatalf("entry %d missing previous status", i)
		}
		if *entries[i].PreviousStatus != entries[i-1].NewStatus {
			t.Fatalf("entry %d previous = %v, want prior entry's new status %v",
				i, *entries[i].PreviousStatus, entries[i-1].NewStatus)
		}
	}

	final := entries[len(entries)-1].NewStatus
	stored := uow.requestByID(request.ID)
	if final != stored.Status {
		t.Fatalf("replayed final status %v != stored status %v", final, stored.Status)
	}
}

// Concurrent mutations on one request must serialize: every successful
// operation appends exactly one entry and the chain property holds
// across all of them.
func TestConcurrentRespondsSerialize(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	statuses := []domain.Status{
		domain.StatusInProgress,
		domain.StatusWaitingResponse,
		domain.StatusAnswered,
	}

	const workers = 24
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = engine.Respond(context.Background(), request.ID, "officer-1", statuses[i%len(statuses)], nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			t.Fatalf("respond failed: %v", err)
		}
	}

	entries := uow.entriesFor(request.ID)
	if len(entries) != succeeded+1 {
		t.Fatalf("ledger has %d entries, want %d (one per success plus creation)", len(entries), succeeded+1)
	}
	for i := 1; i < len(entries); i++ {
		if *entries[i].PreviousStatus != entries[i-1].NewStatus {
			t.Fatalf("broken chain at entry %d", i)
		}
	}

	stored := uow.requestByID(request.ID)
	if last := entries[len(entries)-1].NewStatus; stored.Status != last {
		t.Fatalf("stored status %v != ledger-last status %v", stored.Status, last)
	}
}

func TestConcurrentClaimsSingleWinnerPerOfficer(t *testing.T) {
	engine, uow, _ := newTestEngine(nil)
	request := mustCreate(t, engine, "student-1")

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.ClaimOwnership(context.Background(), request.ID, "officer-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.HasCode(err, apperrors.CodeAlreadyOwned):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d claims succeeded, want exactly 1", succeeded)
	}
	if got := len(uow.entriesFor(request.ID)); got != 2 {
		t.Fatalf("ledger has %d entries, want 2", got)
	}
	stored := uow.requestByID(request.ID)
	if !stored.AssignedTo("officer-1") || stored.Status != domain.StatusInProgress {
		t.Fatalf("request not in expected post-claim state")
	}
}

// A request walked through claim, clarification and resolution by two
// cooperating officers.
func TestFullLifecycleScenario(t *testing.T) {
	engine, uow, dispatcher := newTestEngine(memUnitMembership{
		"officer-1": {"unit-1"},
		"officer-2": {"unit-1"},
	})
	ctx := context.Background()

	request := mustCreate(t, engine, "student-1")

	if _, err := engine.ClaimOwnership(ctx, request.ID, "officer-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	note := "need the serial number"
	if err := engine.Respond(ctx, request.ID, "officer-1", domain.StatusWaitingResponse, &note); err != nil {
		t.Fatalf("ask for info: %v", err)
	}
	reply := "serial is XJ-4411"
	if err := engine.Respond(ctx, request.ID, "student-1", domain.StatusInProgress, &reply); err != nil {
		t.Fatalf("student reply: %v", err)
	}
	if err := engine.TransferOwnership(ctx, request.ID, "officer-1", "officer-2"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := engine.Resolve(ctx, request.ID, "officer-2", OutcomeSuccessful); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	stored := uow.requestByID(request.ID)
	if stored.Status != domain.StatusResolvedSuccessfully {
		t.Fatalf("final status = %v", stored.Status)
	}
	if !stored.AssignedTo("officer-2") {
		t.Fatalf("final assignee = %v", stored.AssignedOfficerID)
	}
	if got := len(uow.entriesFor(request.ID)); got != 6 {
		t.Fatalf("ledger has %d entries, want 6", got)
	}

	wantTypes := []events.EventType{
		events.EventRequestCreated,
		events.EventOwnershipClaimed,
		events.EventRequestStatusChanged,
		events.EventRequestStatusChanged,
		events.EventOwnershipTransferred,
		events.EventRequestResolved,
	}
	published := dispatcher.published()
	if len(published) != len(wantTypes) {
		t.Fatalf("published %d events, want %d", len(published), len(wantTypes))
	}
	for i, event := range published {
		if event.Type != wantTypes[i] {
			t.Fatalf("event %d type = %v, want %v", i, event.Type, wantTypes[i])
		}
	}
}
