package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/repository"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

type fakeRequestRepo struct {
	requests map[string]*domain.Request
	lastList repository.RequestFilter
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *request
	return &clone, nil
}

func (f *fakeRequestRepo) GetByExternalKey(ctx context.Context, key string) (*domain.Request, error) {
	for _, request := range f.requests {
		if request.ExternalKey == key {
			clone := *request
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRequestRepo) ListWithFilter(ctx context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	f.lastList = filter
	return nil, nil
}

type fakeTimelineRepo struct {
	entries []domain.TimelineEntry
}

func (f *fakeTimelineRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.TimelineEntry, error) {
	var out []domain.TimelineEntry
	for _, entry := range f.entries {
		if entry.RequestID == requestID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	attachment.ID = "att-1"
	f.attachments = append(f.attachments, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, attachment := range f.attachments {
		if attachment.RequestID == requestID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

func (f *fakeAttachmentRepo) ListByTimelineEntry(ctx context.Context, entryID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, attachment := range f.attachments {
		if attachment.TimelineEntryID != nil && *attachment.TimelineEntryID == entryID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

// fakeUserRepo only serves the unit membership lookup the query service
// needs; the account methods are unused here.
type fakeUserRepo struct {
	units map[string][]string
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error         { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error { return nil }
func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return nil
}
func (f *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UnitsOf(ctx context.Context, officerID string) ([]string, error) {
	return f.units[officerID], nil
}
func (f *fakeUserRepo) ReplaceUnitAssignments(ctx context.Context, officerID string, unitIDs []string) error {
	return nil
}
func (f *fakeUserRepo) OfficersInUnit(ctx context.Context, unitID string) ([]domain.User, error) {
	return nil, nil
}

func officerPtr(id string) *string { return &id }

func newTestQueryService() (*QueryService, *fakeRequestRepo, *fakeUserRepo) {
	requests := &fakeRequestRepo{requests: map[string]*domain.Request{
		"req-1": {
			ID:          "req-1",
			RequesterID: "student-1",
			UnitID:      "unit-1",
			Status:      domain.StatusInProgress,
		},
		"req-2": {
			ID:                "req-2",
			RequesterID:       "student-2",
			UnitID:            "unit-2",
			Status:            domain.StatusPending,
			AssignedOfficerID: officerPtr("officer-9"),
		},
	}}
	users := &fakeUserRepo{units: map[string][]string{
		"officer-1": {"unit-1"},
	}}
	queries := NewQueryService(QueryDependencies{
		RequestRepo:    requests,
		TimelineRepo:   &fakeTimelineRepo{},
		AttachmentRepo: &fakeAttachmentRepo{},
		UserRepo:       users,
	})
	return queries, requests, users
}

func TestGetRequestVisibility(t *testing.T) {
	queries, _, _ := newTestQueryService()
	ctx := context.Background()

	student := &domain.User{ID: "student-1", Role: domain.RoleStudent}
	if _, err := queries.GetRequest(ctx, student, "req-1"); err != nil {
		t.Fatalf("requester must see own request: %v", err)
	}
	if _, err := queries.GetRequest(ctx, student, "req-2"); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN for other student's request", err)
	}

	officer := &domain.User{ID: "officer-1", Role: domain.RoleOfficer}
	if _, err := queries.GetRequest(ctx, officer, "req-1"); err != nil {
		t.Fatalf("officer must see requests in own unit: %v", err)
	}
	if _, err := queries.GetRequest(ctx, officer, "req-2"); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN outside officer's units", err)
	}

	assignee := &domain.User{ID: "officer-9", Role: domain.RoleOfficer}
	if _, err := queries.GetRequest(ctx, assignee, "req-2"); err != nil {
		t.Fatalf("assigned officer must see the request: %v", err)
	}

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	if _, err := queries.GetRequest(ctx, admin, "req-2"); err != nil {
		t.Fatalf("admin must see everything: %v", err)
	}
}

func TestGetRequestNotFound(t *testing.T) {
	queries, _, _ := newTestQueryService()
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}

	_, err := queries.GetRequest(context.Background(), admin, "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestListInboxDefaultsToPendingUnassigned(t *testing.T) {
	queries, requests, _ := newTestQueryService()

	if _, err := queries.ListInbox(context.Background(), "officer-1", ListFilter{}); err != nil {
		t.Fatalf("ListInbox: %v", err)
	}

	filter := requests.lastList
	if !filter.Unassigned {
		t.Fatalf("inbox must filter to unassigned requests")
	}
	if len(filter.UnitIDs) != 1 || filter.UnitIDs[0] != "unit-1" {
		t.Fatalf("inbox units = %v, want officer's units", filter.UnitIDs)
	}
	if len(filter.Statuses) != 1 || filter.Statuses[0] != domain.StatusPending {
		t.Fatalf("inbox default statuses = %v, want Pending", filter.Statuses)
	}
}

func TestListInboxNoUnits(t *testing.T) {
	queries, requests, _ := newTestQueryService()

	out, err := queries.ListInbox(context.Background(), "officer-without-units", ListFilter{})
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("officer with no units must get an empty inbox")
	}
	if requests.lastList.Unassigned {
		t.Fatalf("repository must not be queried when the officer has no units")
	}
}
