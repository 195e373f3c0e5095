package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crisis-service/internal/domain"
	"github.com/spec-kit/crisis-service/internal/events"
	"github.com/spec-kit/crisis-service/internal/repository"
	apperrors "github.com/spec-kit/crisis-service/pkg/util"
)

type fakeCrisisRepo struct {
	rows   map[int64]domain.Crisis
	nextID int64

	// updateErr is returned by Update instead of writing when set.
	updateErr error
	// vanishOnUpdate deletes the row right before Update runs.
	vanishOnUpdate bool
	updates        int
}

func newFakeCrisisRepo() *fakeCrisisRepo {
	return &fakeCrisisRepo{rows: map[int64]domain.Crisis{}}
}

func (r *fakeCrisisRepo) Create(_ context.Context, c *domain.Crisis) error {
	r.nextID++
	c.ID = r.nextID
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeCrisisRepo) GetByID(_ context.Context, id int64) (*domain.Crisis, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCrisisRepo) List(context.Context) ([]domain.Crisis, error) {
	keys := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := []domain.Crisis{}
	for _, id := range keys {
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *fakeCrisisRepo) Search(ctx context.Context, query string) ([]domain.Crisis, error) {
	all, _ := r.List(ctx)
	out := []domain.Crisis{}
	for i := range all {
		if all[i].MatchesQuery(query) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r *fakeCrisisRepo) Filter(ctx context.Context, f domain.CrisisFilter) ([]domain.Crisis, error) {
	all, _ := r.List(ctx)
	out := []domain.Crisis{}
	for i := range all {
		if f.Matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r *fakeCrisisRepo) Update(_ context.Context, c *domain.Crisis) error {
	r.updates++
	if r.vanishOnUpdate {
		delete(r.rows, c.ID)
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeCrisisRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeCrisisRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.rows[id]
	return ok, nil
}

func (r *fakeCrisisRepo) Ping(context.Context) error { return nil }

type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*CrisisService, *fakeCrisisRepo, *recordingDispatcher, *fixedClock) {
	t.Helper()
	repo := newFakeCrisisRepo()
	dispatcher := &recordingDispatcher{}
	clock := &fixedClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewCrisisService(CrisisDependencies{
		CrisisRepo: repo,
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})
	return svc, repo, dispatcher, clock
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestCreateStampsDateReported(t *testing.T) {
	svc, _, dispatcher, clock := newTestService(t)
	supplied := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), domain.Crisis{
		ID:           77,
		Title:        "Disk full",
		Severity:     domain.SeverityHigh,
		Status:       domain.StatusOpen,
		DateReported: supplied,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.DateReported.Equal(clock.t))
	assert.Nil(t, created.DateResolved)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, events.EventCrisisCreated, dispatcher.events[0].Type)
	assert.Equal(t, int64(1), dispatcher.events[0].CrisisID)
	assert.NotEmpty(t, dispatcher.events[0].ID)
}

func TestCreateResolvedStampsDateResolved(t *testing.T) {
	svc, _, _, clock := newTestService(t)

	created, err := svc.Create(context.Background(), domain.Crisis{Status: domain.StatusResolved})
	require.NoError(t, err)
	require.NotNil(t, created.DateResolved)
	assert.True(t, created.DateResolved.Equal(clock.t))
}

func TestCreateKeepsDateResolvedForUnresolvedStatus(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	supplied := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), domain.Crisis{Status: domain.StatusOpen, DateResolved: &supplied})
	require.NoError(t, err)
	require.NotNil(t, created.DateResolved)
	assert.True(t, created.DateResolved.Equal(supplied))
}

func TestUpdateLifecycle(t *testing.T) {
	svc, repo, dispatcher, clock := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Crisis{Title: "Disk full", Severity: "High", Status: "Open"})
	require.NoError(t, err)
	assert.Nil(t, created.DateResolved)

	clock.t = clock.t.Add(time.Hour)
	resolved := *created
	resolved.Status = domain.StatusResolved
	require.NoError(t, svc.Update(ctx, created.ID, resolved))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateResolved)
	assert.True(t, got.DateResolved.Equal(clock.t))

	reopened := *got
	reopened.Status = domain.StatusOpen
	require.NoError(t, svc.Update(ctx, created.ID, reopened))

	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DateResolved)
	assert.Equal(t, 2, repo.updates)

	require.Len(t, dispatcher.events, 3)
	payload, ok := dispatcher.events[1].Payload.(events.CrisisUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, "Open", payload.OldStatus)
	assert.Equal(t, "Resolved", payload.NewStatus)
	assert.Equal(t, []string{"status", "dateResolved"}, payload.ChangedFields)
}

func TestUpdatePreservesDateReported(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.Crisis{Title: "a"})
	require.NoError(t, err)

	clock.t = clock.t.Add(24 * time.Hour)
	change := *created
	change.DateReported = time.Time{}
	change.Title = "b"
	require.NoError(t, svc.Update(ctx, created.ID, change))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
	assert.True(t, got.DateReported.Equal(created.DateReported))
}

func TestUpdateIDMismatch(t *testing.T) {
	svc, repo, dispatcher, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.Crisis{Title: "keep"})
	require.NoError(t, err)

	err = svc.Update(ctx, created.ID, domain.Crisis{ID: created.ID + 1, Title: "changed"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Zero(t, repo.updates)

	got, _ := svc.Get(ctx, created.ID)
	assert.Equal(t, "keep", got.Title)
	assert.Len(t, dispatcher.events, 1)
}

func TestUpdateMissing(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	err := svc.Update(context.Background(), 5, domain.Crisis{ID: 5})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Zero(t, repo.updates)
}

func TestUpdateRowVanishedBeforeWrite(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.Crisis{Title: "racy"})
	require.NoError(t, err)

	repo.vanishOnUpdate = true
	repo.updateErr = repository.ErrConflict
	err = svc.Update(ctx, created.ID, *created)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdateConflictOnExistingRowIsInternal(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.Crisis{Title: "locked"})
	require.NoError(t, err)

	repo.updateErr = repository.ErrConflict
	err = svc.Update(ctx, created.ID, *created)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUpdateOtherErrorPropagates(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.Crisis{Title: "x"})
	require.NoError(t, err)

	boom := errors.New("connection reset")
	repo.updateErr = boom
	err = svc.Update(ctx, created.ID, *created)
	assert.ErrorIs(t, err, boom)
}

func TestDelete(t *testing.T) {
	svc, _, dispatcher, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.Crisis{Title: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	require.Len(t, dispatcher.events, 2)
	assert.Equal(t, events.EventCrisisDeleted, dispatcher.events[1].Type)
}

func TestSearchFilterAndStatistics(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Crisis{Title: "Disk full", Severity: "High", Status: "Open", Tags: []string{"storage"}})
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Minute)
	_, err = svc.Create(ctx, domain.Crisis{Title: "Login outage", Severity: "Critical", Status: "Resolved", Tags: []string{"auth", "storage"}})
	require.NoError(t, err)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.Search(ctx, "STORAGE")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Search(ctx, "login")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Login outage", found[0].Title)

	filtered, err := svc.Filter(ctx, domain.CrisisFilter{Severity: "critical", Status: "resolved"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	filtered, err = svc.Filter(ctx, domain.CrisisFilter{})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.BySeverity.Critical)
	assert.Equal(t, 1, stats.ByStatus.Resolved)
	require.Len(t, stats.RecentlyResolved, 1)
	assert.Equal(t, "Login outage", stats.RecentlyReported[0].Title)
	assert.Equal(t, domain.TagCount{Tag: "storage", Count: 2}, stats.TopTags[0])
}
