package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/repository"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// QueryService serves the read side: listings, detail views and the
// timeline. It never mutates state; every write goes through the
// lifecycle engine.
type QueryService struct {
	requests    repository.RequestRepository
	timeline    repository.TimelineRepository
	attachments repository.AttachmentRepository
	users       repository.UserRepository
}

// QueryDependencies bundles repositories for the query service.
type QueryDependencies struct {
	RequestRepo    repository.RequestRepository
	TimelineRepo   repository.TimelineRepository
	AttachmentRepo repository.AttachmentRepository
	UserRepo       repository.UserRepository
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	return &QueryService{
		requests:    deps.RequestRepo,
		timeline:    deps.TimelineRepo,
		attachments: deps.AttachmentRepo,
		users:       deps.UserRepo,
	}
}

// ListFilter captures listing parameters from query strings.
type ListFilter struct {
	Statuses   []domain.Status
	Priorities []domain.Priority
	SearchTerm *string
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// TimelineView is a ledger entry joined with its attachments.
type TimelineView struct {
	Entry       domain.TimelineEntry
	Attachments []domain.Attachment
}

// ListMyRequests returns the requester's own submissions.
func (s *QueryService) ListMyRequests(ctx context.Context, requesterID string, filter ListFilter) ([]domain.Request, error) {
	repoFilter := repository.RequestFilter{
		RequesterID: &requesterID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		SortBy:      filter.SortBy,
		SortDesc:    filter.SortDesc,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	requests, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return requests, nil
}

// ListInbox returns unassigned pending requests in the officer's units.
func (s *QueryService) ListInbox(ctx context.Context, officerID string, filter ListFilter) ([]domain.Request, error) {
	unitIDs, err := s.users.UnitsOf(ctx, officerID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if len(unitIDs) == 0 {
		return []domain.Request{}, nil
	}
	repoFilter := repository.RequestFilter{
		UnitIDs:    unitIDs,
		Unassigned: true,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		SortBy:     filter.SortBy,
		SortDesc:   filter.SortDesc,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if len(repoFilter.Statuses) == 0 {
		repoFilter.Statuses = []domain.Status{domain.StatusPending}
	}
	requests, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return requests, nil
}

// ListAssigned returns the requests an officer currently owns.
func (s *QueryService) ListAssigned(ctx context.Context, officerID string, filter ListFilter) ([]domain.Request, error) {
	repoFilter := repository.RequestFilter{
		AssignedOfficerID: &officerID,
		Statuses:          filter.Statuses,
		Priorities:        filter.Priorities,
		SearchTerm:        filter.SearchTerm,
		SortBy:            filter.SortBy,
		SortDesc:          filter.SortDesc,
		Limit:             filter.Limit,
		Offset:            filter.Offset,
	}
	requests, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return requests, nil
}

// ListAll returns requests across all units for admins.
func (s *QueryService) ListAll(ctx context.Context, filter ListFilter) ([]domain.Request, error) {
	repoFilter := repository.RequestFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		SortBy:     filter.SortBy,
		SortDesc:   filter.SortDesc,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	requests, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return requests, nil
}

// GetRequest loads one request and checks the caller may see it:
// requesters see their own, officers see requests in their units or
// assigned to them, admins see everything.
func (s *QueryService) GetRequest(ctx context.Context, caller *domain.User, requestID string) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	if err := s.authorizeView(ctx, caller, request); err != nil {
		return nil, err
	}
	return request, nil
}

// GetTimeline returns the request's ledger in ascending order with the
// attachments linked to each entry.
func (s *QueryService) GetTimeline(ctx context.Context, caller *domain.User, requestID string) ([]TimelineView, error) {
	if _, err := s.GetRequest(ctx, caller, requestID); err != nil {
		return nil, err
	}
	entries, err := s.timeline.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	views := make([]TimelineView, 0, len(entries))
	for _, entry := range entries {
		attachments, err := s.attachments.ListByTimelineEntry(ctx, entry.ID)
		if err != nil {
			return nil, apperrors.NewStorageFailure(err)
		}
		views = append(views, TimelineView{Entry: entry, Attachments: attachments})
	}
	return views, nil
}

// AttachFile links uploaded file metadata to a request, and optionally
// to a timeline entry, after both exist.
func (s *QueryService) AttachFile(ctx context.Context, caller *domain.User, attachment *domain.Attachment) error {
	if _, err := s.GetRequest(ctx, caller, attachment.RequestID); err != nil {
		return err
	}
	attachment.UploaderID = caller.ID
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

func (s *QueryService) authorizeView(ctx context.Context, caller *domain.User, request *domain.Request) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStudent:
		if request.RequesterID == caller.ID {
			return nil
		}
	case domain.RoleOfficer:
		if request.RequesterID == caller.ID || request.AssignedTo(caller.ID) {
			return nil
		}
		unitIDs, err := s.users.UnitsOf(ctx, caller.ID)
		if err != nil {
			return apperrors.NewStorageFailure(err)
		}
		for _, unitID := range unitIDs {
			if unitID == request.UnitID {
				return nil
			}
		}
	}
	return apperrors.NewForbidden("access denied")
}
