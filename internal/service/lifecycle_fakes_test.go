package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/events"
	"github.com/campus-desk/request-service/internal/repository"
)

// memUnitOfWork is an in-memory repository.UnitOfWork. Each InTx call
// works on copies of the stored state and commits only when the
// callback succeeds, mirroring the transactional contract the engine
// relies on. A sync.Mutex serializes transactions the way row locks do.
type memUnitOfWork struct {
	mu       sync.Mutex
	requests map[string]*domain.Request
	entries  []domain.TimelineEntry

	requestSeq int
	entrySeq   int

	failAppend bool
}

func newMemUnitOfWork() *memUnitOfWork {
	return &memUnitOfWork{requests: make(map[string]*domain.Request)}
}

func (m *memUnitOfWork) InTx(ctx context.Context, fn func(ctx context.Context, stores repository.LifecycleStores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txRequests := make(map[string]*domain.Request, len(m.requests))
	for id, request := range m.requests {
		clone := *request
		txRequests[id] = &clone
	}
	txEntries := append([]domain.TimelineEntry(nil), m.entries...)

	stores := repository.LifecycleStores{
		Requests: &memRequestStore{uow: m, data: txRequests},
		Timeline: &memTimelineStore{uow: m, entries: &txEntries},
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}

	m.requests = txRequests
	m.entries = txEntries
	return nil
}

func (m *memUnitOfWork) requestByID(id string) *domain.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok {
		return nil
	}
	clone := *request
	return &clone
}

func (m *memUnitOfWork) entriesFor(requestID string) []domain.TimelineEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TimelineEntry
	for _, entry := range m.entries {
		if entry.RequestID == requestID {
			out = append(out, entry)
		}
	}
	return out
}

type memRequestStore struct {
	uow  *memUnitOfWork
	data map[string]*domain.Request
}

func (s *memRequestStore) Create(ctx context.Context, request *domain.Request) error {
	s.uow.requestSeq++
	request.ID = fmt.Sprintf("req-%d", s.uow.requestSeq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	clone := *request
	s.data[request.ID] = &clone
	return nil
}

func (s *memRequestStore) GetForUpdate(ctx context.Context, id string) (*domain.Request, error) {
	request, ok := s.data[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *request
	return &clone, nil
}

func (s *memRequestStore) UpdateStatusAndOwner(ctx context.Context, id string, status domain.Status, officerID *string) error {
	request, ok := s.data[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.Status = status
	request.AssignedOfficerID = officerID
	request.UpdatedAt = time.Now()
	return nil
}

type memTimelineStore struct {
	uow     *memUnitOfWork
	entries *[]domain.TimelineEntry
}

func (s *memTimelineStore) Append(ctx context.Context, entry *domain.TimelineEntry) error {
	if s.uow.failAppend {
		return errors.New("append rejected")
	}
	s.uow.entrySeq++
	entry.ID = fmt.Sprintf("entry-%d", s.uow.entrySeq)
	entry.CreatedAt = time.Now()
	*s.entries = append(*s.entries, *entry)
	return nil
}

// memUnitMembership maps officer ids to their unit ids.
type memUnitMembership map[string][]string

func (m memUnitMembership) UnitsOf(ctx context.Context, officerID string) ([]string, error) {
	return m[officerID], nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}
