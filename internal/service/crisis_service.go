package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/crisis-service/internal/domain"
	"github.com/spec-kit/crisis-service/internal/events"
	"github.com/spec-kit/crisis-service/internal/export"
	"github.com/spec-kit/crisis-service/internal/repository"
	apperrors "github.com/spec-kit/crisis-service/pkg/util"
)

// CrisisService coordinates crisis workflows.
type CrisisService struct {
	crises     repository.CrisisRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// CrisisDependencies bundles collaborators for the crisis service.
type CrisisDependencies struct {
	CrisisRepo repository.CrisisRepository
	Dispatcher events.Dispatcher
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

// NewCrisisService constructs the service.
func NewCrisisService(deps CrisisDependencies) *CrisisService {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &CrisisService{
		crises:     deps.CrisisRepo,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// List returns every crisis.
func (s *CrisisService) List(ctx context.Context) ([]domain.Crisis, error) {
	return s.crises.List(ctx)
}

// Get returns a single crisis.
func (s *CrisisService) Get(ctx context.Context, id int64) (*domain.Crisis, error) {
	crisis, err := s.crises.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	return crisis, nil
}

// Search returns crises whose text fields contain query, ignoring case.
func (s *CrisisService) Search(ctx context.Context, query string) ([]domain.Crisis, error) {
	if query == "" {
		return s.crises.List(ctx)
	}
	return s.crises.Search(ctx, query)
}

// Filter returns crises matching the given severity and status.
func (s *CrisisService) Filter(ctx context.Context, filter domain.CrisisFilter) ([]domain.Crisis, error) {
	if filter.IsEmpty() {
		return s.crises.List(ctx)
	}
	return s.crises.Filter(ctx, filter)
}

// Statistics aggregates the full crisis set.
func (s *CrisisService) Statistics(ctx context.Context) (domain.Statistics, error) {
	crises, err := s.crises.List(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}
	return domain.ComputeStatistics(crises), nil
}

// Export renders every crisis as a spreadsheet workbook.
func (s *CrisisService) Export(ctx context.Context) ([]byte, error) {
	crises, err := s.crises.List(ctx)
	if err != nil {
		return nil, err
	}
	workbook, err := export.CrisesWorkbook(crises)
	if err != nil {
		return nil, fmt.Errorf("export crises: %w", err)
	}
	return workbook, nil
}

// Create stores a new crisis. The caller's id and report date are ignored.
func (s *CrisisService) Create(ctx context.Context, crisis domain.Crisis) (*domain.Crisis, error) {
	now := s.now()
	crisis.ID = 0
	crisis.DateReported = now
	// Unlike Update, a caller-supplied DateResolved on an unresolved crisis is kept.
	crisis.StampResolution(now)

	if err := s.crises.Create(ctx, &crisis); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCrisisCreated,
		CrisisID: crisis.ID,
		Payload: events.CrisisCreatedPayload{
			Title:    crisis.Title,
			Severity: crisis.Severity,
			Status:   crisis.Status,
		},
	})
	return &crisis, nil
}

// Update replaces the crisis stored under id.
func (s *CrisisService) Update(ctx context.Context, id int64, crisis domain.Crisis) error {
	if crisis.ID != id {
		return apperrors.NewBadRequest("crisis id does not match path", map[string]any{
			"path_id": id,
			"body_id": crisis.ID,
		})
	}

	current, err := s.crises.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, id)
	}

	crisis.ReconcileResolution(s.now())
	crisis.DateReported = current.DateReported

	if err := s.crises.Update(ctx, &crisis); err != nil {
		return s.classifyUpdateError(ctx, id, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCrisisUpdated,
		CrisisID: id,
		Payload: events.CrisisUpdatedPayload{
			OldStatus:     current.Status,
			NewStatus:     crisis.Status,
			ChangedFields: domain.ChangedFields(current, &crisis),
		},
	})
	return nil
}

// Delete removes a crisis.
func (s *CrisisService) Delete(ctx context.Context, id int64) error {
	current, err := s.crises.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, id)
	}
	if err := s.crises.Delete(ctx, id); err != nil {
		return mapNotFound(err, id)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCrisisDeleted,
		CrisisID: id,
		Payload:  events.CrisisDeletedPayload{Title: current.Title},
	})
	return nil
}

// classifyUpdateError treats a failed write on a vanished row as not found.
// A failure on a row that still exists is surfaced as an internal error.
func (s *CrisisService) classifyUpdateError(ctx context.Context, id int64, err error) error {
	if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrConflict) {
		return err
	}
	exists, existsErr := s.crises.Exists(ctx, id)
	if existsErr != nil {
		return fmt.Errorf("update crisis %d: %w", id, errors.Join(err, existsErr))
	}
	if !exists {
		return apperrors.NewNotFound("crisis", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(fmt.Errorf("update crisis %d: %w", id, err))
}

func mapNotFound(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("crisis", map[string]any{"id": id})
	}
	return err
}

func (s *CrisisService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
