package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/events"
	"github.com/campus-desk/request-service/internal/repository"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// Ledger comments written by the engine itself. Free-text actor
// comments only appear on Respond.
const (
	commentCreated     = "request created"
	commentClaimed     = "ownership claimed"
	commentTransferred = "ownership transferred"
	commentResolved    = "marked resolved"
	commentCancelled   = "cancelled by requester"
)

// ResolveOutcome selects the terminal status a resolve lands on.
type ResolveOutcome string

const (
	OutcomeSuccessful ResolveOutcome = "SUCCESSFUL"
	OutcomeNegative   ResolveOutcome = "NEGATIVE"
)

func (o ResolveOutcome) status() (domain.Status, bool) {
	switch o {
	case OutcomeSuccessful:
		return domain.StatusResolvedSuccessfully, true
	case OutcomeNegative:
		return domain.StatusResolvedNegatively, true
	default:
		return 0, false
	}
}

// UnitMembership resolves the unit ids an officer serves. Satisfied by
// repository.UserRepository.
type UnitMembership interface {
	UnitsOf(ctx context.Context, officerID string) ([]string, error)
}

// LifecycleService is the single authority through which a request's
// status and ownership change, and the single writer of timeline
// entries. Every mutating operation runs inside a per-request critical
// section and one store transaction: a validation failure leaves both
// the request row and the ledger untouched.
type LifecycleService struct {
	uow        repository.UnitOfWork
	units      UnitMembership
	dispatcher events.Dispatcher
	locks      *requestLocks
}

// LifecycleDependencies bundles collaborators for the engine.
type LifecycleDependencies struct {
	UnitOfWork     repository.UnitOfWork
	UnitMembership UnitMembership
	Dispatcher     events.Dispatcher
}

// NewLifecycleService constructs the engine.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		uow:        deps.UnitOfWork,
		units:      deps.UnitMembership,
		dispatcher: deps.Dispatcher,
		locks:      newRequestLocks(),
	}
}

// CreateRequestInput describes a new submission.
type CreateRequestInput struct {
	RequesterID string
	UnitID      string
	CategoryID  string
	Priority    *domain.Priority
	Title       string
	Description string
}

// CreateRequest opens a request in Pending with no assigned officer and
// writes the creation ledger entry in the same transaction.
func (s *LifecycleService) CreateRequest(ctx context.Context, input CreateRequestInput) (*domain.Request, error) {
	priority := domain.DefaultPriority
	if input.Priority != nil {
		if !input.Priority.IsKnown() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		priority = *input.Priority
	}

	request := &domain.Request{
		ExternalKey: generateRequestKey(),
		RequesterID: input.RequesterID,
		UnitID:      input.UnitID,
		CategoryID:  input.CategoryID,
		Priority:    priority,
		Status:      domain.StatusPending,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
	}

	err := s.uow.InTx(ctx, func(ctx context.Context, stores repository.LifecycleStores) error {
		if err := stores.Requests.Create(ctx, request); err != nil {
			return err
		}
		return stores.Timeline.Append(ctx, &domain.TimelineEntry{
			RequestID: request.ID,
			ActorID:   input.RequesterID,
			NewStatus: domain.StatusPending,
			Comment:   commentPtr(commentCreated),
		})
	})
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   input.RequesterID,
		Payload: events.RequestCreatedPayload{
			UnitID:     request.UnitID,
			CategoryID: request.CategoryID,
			Priority:   request.Priority,
			Title:      request.Title,
		},
	})
	return request, nil
}

// ClaimOwnership assigns the request to the claiming officer. A pending
// request moves to In Progress; re-claiming a request the officer
// already owns is a caller error, not a silent no-op. Claiming over a
// different officer's assignment is permitted and overwrites it.
func (s *LifecycleService) ClaimOwnership(ctx context.Context, requestID, officerID string) (domain.Status, error) {
	release := s.locks.acquire(requestID)
	defer release()

	var payload events.OwnershipClaimedPayload
	var newStatus domain.Status
	err := s.uow.InTx(ctx, func(ctx context.Context, stores repository.LifecycleStores) error {
		request, err := stores.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return lookupError(err, requestID)
		}
		if request.Status.IsTerminal() {
			return apperrors.NewTerminalRequest(requestID)
		}
		if request.AssignedTo(officerID) {
			return apperrors.NewAlreadyOwnedBySelf(requestID)
		}

		previousStatus := request.Status
		newStatus = request.Status
		if request.Status == domain.StatusPending {
			newStatus = domain.StatusInProgress
		}
		payload = events.OwnershipClaimedPayload{
			OfficerID:       officerID,
			PreviousOfficer: request.AssignedOfficerID,
		}

		if err := stores.Requests.UpdateStatusAndOwner(ctx, requestID, newStatus, &officerID); err != nil {
			return apperrors.NewStorageFailure(err)
		}
		return appendEntry(ctx, stores, requestID, officerID, &previousStatus, newStatus, commentClaimed)
	})
	if err != nil {
		return 0, coerceStorage(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventOwnershipClaimed,
		RequestID: requestID,
		ActorID:   officerID,
		Payload:   payload,
	})
	return newStatus, nil
}

// TransferOwnership moves the assignment between two officers that
// share at least one unit. Status is untouched; the ledger records the
// handover with previous == new status.
func (s *LifecycleService) TransferOwnership(ctx context.Context, requestID, fromOfficerID, toOfficerID string) error {
	fromUnits, err := s.units.UnitsOf(ctx, fromOfficerID)
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}
	toUnits, err := s.units.UnitsOf(ctx, toOfficerID)
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}
	if !shareUnit(fromUnits, toUnits) {
		return apperrors.NewForbidden("target officer does not share a unit with the current officer")
	}

	release := s.locks.acquire(requestID)
	defer release()

	err = s.uow.InTx(ctx, func(ctx context.Context, stores repository.LifecycleStores) error {
		request, err := stores.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return lookupError(err, requestID)
		}

		status := request.Status
		if err := stores.Requests.UpdateStatusAndOwner(ctx, requestID, status, &toOfficerID); err != nil {
			return apperrors.NewStorageFailure(err)
		}
		return appendEntry(ctx, stores, requestID, fromOfficerID, &status, status, commentTransferred)
	})
	if err != nil {
		return coerceStorage(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventOwnershipTransferred,
		RequestID: requestID,
		ActorID:   fromOfficerID,
		Payload: events.OwnershipTransferredPayload{
			FromOfficerID: fromOfficerID,
			ToOfficerID:   toOfficerID,
		},
	})
	return nil
}

// Respond writes the requested status (any catalog member, including
// the current one for comment-only updates) and appends a ledger entry
// with the actor's comment. The actor does not have to be the assigned
// officer; role-level authorization happens upstream.
func (s *LifecycleService) Respond(ctx context.Context, requestID, actorID string, newStatus domain.Status, comment *string) error {
	if !newStatus.IsKnown() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	release := s.locks.acquire(requestID)
	defer release()

	var previousStatus domain.Status
	err := s.uow.InTx(ctx, func(ctx context.Context, stores repository.LifecycleStores) error {
		request, err := stores.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return lookupError(err, requestID)
		}
		if !domain.CanTransition(request.Status, newStatus) {
			return apperrors.NewTerminalRequest(requestID)
		}

		previousStatus = request.Status
		if err := stores.Requests.UpdateStatusAndOwner(ctx, requestID, newStatus, request.AssignedOfficerID); err != nil {
			return apperrors.NewStorageFailure(err)
		}
		return stores.Timeline.Append(ctx, &domain.TimelineEntry{
			RequestID:      requestID,
			ActorID:        actorID,
			PreviousStatus: &previousStatus,
			NewStatus:      newStatus,
			Comment:        comment,
		})
	})
	if err != nil {
		return coerceStorage(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: requestID,
		ActorID:   actorID,
		Payload: events.StatusChangedPayload{
			PreviousStatus: previousStatus,
			NewStatus:      newStatus,
			Comment:        commentValue(comment),
		},
	})
	return nil
}

// Resolve closes the request with the chosen terminal outcome. Only the
// assigned officer may resolve.
func (s *LifecycleService) Resolve(ctx context.Context, requestID, officerID string, outcome ResolveOutcome) error {
	target, ok := outcome.status()
	if !ok {
		return apperrors.NewValidationError("unknown resolve outcome", map[string]any{"outcome": outcome})
	}

	release := s.locks.acquire(requestID)
	defer release()

	var previousStatus domain.Status
	err := s.uow.InTx(ctx, func(ctx context.Context, stores repository.LifecycleStores) error {
		request, err := stores.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return lookupError(err, requestID)
		}
		if !request.Assigned() {
			return apperrors.NewNotAssigned(requestID)
		}
		if !request.AssignedTo(officerID) {
			return apperrors.NewForbidden("only the assigned officer may resolve this request")
		}
		if request.Status.IsTerminal() {
			return apperrors.NewAlreadyTerminal(requestID)
		}

		previousStatus = request.Status
		if err := stores.Requests.UpdateStatusAndOwner(ctx, requestID, target, request.AssignedOfficerID); err != nil {
			return apperrors.NewStorageFailure(err)
		}
		return appendEntry(ctx, stores, requestID, officerID, &previousStatus, target, commentResolved)
	})
	if err != nil {
		return coerceStorage(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestResolved,
		RequestID: requestID,
		ActorID:   officerID,
		Payload:   events.RequestResolvedPayload{Outcome: target},
	})
	return nil
}

// Cancel closes the request as Cancelled. Only the original requester
// may cancel, from any open status.
func (s *LifecycleService) Cancel(ctx context.Context, requestID, requesterID string) error {
	release := s.locks.acquire(requestID)
	defer release()

	var previousStatus domain.Status
	err := s.uow.InTx(ctx, func(ctx context.Context, stores repository.LifecycleStores) error {
		request, err := stores.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return lookupError(err, requestID)
		}
		if request.RequesterID != requesterID {
			return apperrors.NewForbidden("only the requester may cancel this request")
		}
		if request.Status.IsTerminal() {
			return apperrors.NewAlreadyTerminal(requestID)
		}

		previousStatus = request.Status
		if err := stores.Requests.UpdateStatusAndOwner(ctx, requestID, domain.StatusCancelled, request.AssignedOfficerID); err != nil {
			return apperrors.NewStorageFailure(err)
		}
		return appendEntry(ctx, stores, requestID, requesterID, &previousStatus, domain.StatusCancelled, commentCancelled)
	})
	if err != nil {
		return coerceStorage(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestCancelled,
		RequestID: requestID,
		ActorID:   requesterID,
		Payload: events.StatusChangedPayload{
			PreviousStatus: previousStatus,
			NewStatus:      domain.StatusCancelled,
		},
	})
	return nil
}

func appendEntry(ctx context.Context, stores repository.LifecycleStores, requestID, actorID string, previous *domain.Status, newStatus domain.Status, comment string) error {
	return stores.Timeline.Append(ctx, &domain.TimelineEntry{
		RequestID:      requestID,
		ActorID:        actorID,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		Comment:        commentPtr(comment),
	})
}

// lookupError maps a missing row to NotFound; everything else is a
// storage failure.
func lookupError(err error, requestID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
	}
	return apperrors.NewStorageFailure(err)
}

// coerceStorage keeps domain errors from the transaction callback
// intact and wraps raw commit/rollback failures.
func coerceStorage(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.NewStorageFailure(err)
}

func shareUnit(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, unitID := range a {
		set[unitID] = struct{}{}
	}
	for _, unitID := range b {
		if _, ok := set[unitID]; ok {
			return true
		}
	}
	return false
}

func generateRequestKey() string {
	return "REQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func commentPtr(comment string) *string {
	return &comment
}

func commentValue(comment *string) string {
	if comment == nil {
		return ""
	}
	return *comment
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
