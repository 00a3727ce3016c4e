package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyflow/internal/db"
	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/types"
)

// fakeStore is an in-memory Store keyed by application ID, enforcing the
// unique (job, applicant) pair the real table enforces.
type fakeStore struct {
	mu         sync.Mutex
	apps       map[uuid.UUID]*types.Application
	deliveries []deliveryRecord
}

type deliveryRecord struct {
	applicationID uuid.UUID
	entryIndex    int
	sent          bool
	deliveryErr   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{apps: map[uuid.UUID]*types.Application{}}
}

func (f *fakeStore) CreateApplication(_ context.Context, app *types.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return fmt.Errorf("insert application: %w", db.ErrDuplicateApplication)
		}
	}
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

func (f *fakeStore) GetApplication(_ context.Context, id uuid.UUID) (*types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, nil
	}
	copied := *app
	copied.StatusHistory = append([]types.StatusHistoryEntry(nil), app.StatusHistory...)
	return &copied, nil
}

func (f *fakeStore) SaveApplication(_ context.Context, app *types.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

func (f *fakeStore) SetHistoryDelivery(_ context.Context, applicationID uuid.UUID, entryIndex int, sent bool, deliveryErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, deliveryRecord{applicationID, entryIndex, sent, deliveryErr})
	if app, ok := f.apps[applicationID]; ok && entryIndex < len(app.StatusHistory) {
		app.StatusHistory[entryIndex].NotificationSent = sent
		app.StatusHistory[entryIndex].NotificationError = deliveryErr
	}
	return nil
}

// fakeDirectory resolves a single job and a single user.
type fakeDirectory struct {
	jobID  uuid.UUID
	userID uuid.UUID
}

func (f *fakeDirectory) GetJobSummary(_ context.Context, jobID uuid.UUID) (*types.JobSummary, error) {
	if jobID != f.jobID {
		return nil, nil
	}
	return &types.JobSummary{Title: "Backend Engineer", CompanyName: "Acme Corp"}, nil
}

func (f *fakeDirectory) GetUserSummary(_ context.Context, userID uuid.UUID) (*types.UserSummary, error) {
	if userID != f.userID {
		return nil, nil
	}
	return &types.UserSummary{Name: "Priya Sharma", Email: "priya@example.com"}, nil
}

// fakeEmail records sends and reports a configurable outcome.
type fakeEmail struct {
	mu      sync.Mutex
	sends   []string // subjects
	succeed bool
}

func (f *fakeEmail) Send(_ context.Context, _, subject, _ string) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, subject)
	if f.succeed {
		return notify.Result{Success: true, MessageID: "m1", Attempts: 1}
	}
	return notify.Result{Success: false, Error: "smtp unavailable", Attempts: 4}
}

func (f *fakeEmail) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sends...)
}

func newTestService(store *fakeStore, dir *fakeDirectory, email EmailChannel) *Service {
	return NewService(store, dir, email, nil, nil)
}

func fixture() (*fakeStore, *fakeDirectory) {
	return newFakeStore(), &fakeDirectory{jobID: uuid.New(), userID: uuid.New()}
}

func TestApply_SeedsLedgerEntry(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)

	app, err := svc.Apply(context.Background(), dir.jobID, dir.userID, "I am interested", false)
	require.NoError(t, err)

	assert.Equal(t, types.StatusPending, app.Status)
	require.Len(t, app.StatusHistory, 1)
	assert.Equal(t, types.StatusPending, app.StatusHistory[0].Status)
	assert.Equal(t, "Application submitted", app.StatusHistory[0].Notes)
	assert.Equal(t, "I am interested", app.CoverLetter)
	assert.False(t, app.AppliedAt.IsZero())
}

func TestApply_DuplicatePairConflicts(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)

	_, err := svc.Apply(context.Background(), dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), dir.jobID, dir.userID, "", false)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestApply_UnknownJob(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)

	_, err := svc.Apply(context.Background(), uuid.New(), dir.userID, "", false)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "job", notFound.Kind)
}

func TestApply_UnknownApplicant(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)

	_, err := svc.Apply(context.Background(), dir.jobID, uuid.New(), "", false)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Kind)
}

func TestTransition_AppendsLedgerEntry(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	actor := uuid.New()
	updated, err := svc.Transition(ctx, app.ID, types.StatusReviewed, TransitionOptions{
		Notes:     "Looks promising",
		ChangedBy: &actor,
	})
	require.NoError(t, err)

	assert.Equal(t, types.StatusReviewed, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	last := updated.StatusHistory[1]
	assert.Equal(t, types.StatusReviewed, last.Status)
	assert.Equal(t, "Looks promising", last.Notes)
	require.NotNil(t, last.ChangedBy)
	assert.Equal(t, actor, *last.ChangedBy)
}

func TestTransition_LedgerIsAppendOnly(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	statuses := []types.Status{
		types.StatusReviewed,
		types.StatusShortlisted,
		types.StatusSelected,
		types.StatusOfferExtended,
		types.StatusOfferAccepted,
	}
	for i, status := range statuses {
		updated, err := svc.Transition(ctx, app.ID, status, TransitionOptions{})
		require.NoError(t, err)

		// One seeded entry plus one per transition, earlier entries intact.
		require.Len(t, updated.StatusHistory, i+2)
		assert.Equal(t, types.StatusPending, updated.StatusHistory[0].Status)
		assert.Equal(t, status, updated.StatusHistory[len(updated.StatusHistory)-1].Status)
		assert.Equal(t, status, updated.Status)
	}
}

func TestTransition_AnyStatusToAnyStatus(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	// Backwards and sideways moves are all legal; the ledger is the audit.
	_, err = svc.Transition(ctx, app.ID, types.StatusRejected, TransitionOptions{})
	require.NoError(t, err)
	updated, err := svc.Transition(ctx, app.ID, types.StatusShortlisted, TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.StatusShortlisted, updated.Status)
	assert.Len(t, updated.StatusHistory, 3)
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)

	_, err := svc.Transition(context.Background(), uuid.New(), types.Status("On Hold"), TransitionOptions{})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestTransition_UnknownApplication(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)

	_, err := svc.Transition(context.Background(), uuid.New(), types.StatusReviewed, TransitionOptions{})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestTransition_DeliverySuccessRecordedOnLedger(t *testing.T) {
	store, dir := fixture()
	email := &fakeEmail{succeed: true}
	svc := newTestService(store, dir, email)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, app.ID, types.StatusShortlisted, TransitionOptions{Notify: true})
	require.NoError(t, err)
	svc.Wait()

	require.Len(t, store.deliveries, 1)
	assert.Equal(t, app.ID, store.deliveries[0].applicationID)
	assert.Equal(t, 1, store.deliveries[0].entryIndex)
	assert.True(t, store.deliveries[0].sent)

	subjects := email.subjects()
	require.Len(t, subjects, 1)
	assert.Contains(t, subjects[0], "shortlisted")
}

func TestTransition_DeliveryFailureDoesNotFailTransition(t *testing.T) {
	store, dir := fixture()
	email := &fakeEmail{succeed: false}
	svc := newTestService(store, dir, email)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, app.ID, types.StatusSelected, TransitionOptions{Notify: true})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSelected, updated.Status)
	svc.Wait()

	require.Len(t, store.deliveries, 1)
	assert.False(t, store.deliveries[0].sent)
	assert.Equal(t, "smtp unavailable", store.deliveries[0].deliveryErr)

	// The persisted transition survives the failed delivery.
	persisted, err := svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSelected, persisted.Status)
	assert.Equal(t, "smtp unavailable", persisted.StatusHistory[1].NotificationError)
}

func TestTransition_NoEmailForStatusWithoutEvent(t *testing.T) {
	store, dir := fixture()
	email := &fakeEmail{succeed: true}
	svc := newTestService(store, dir, email)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	// Withdrawn has no applicant-facing email.
	_, err = svc.Transition(ctx, app.ID, types.StatusWithdrawn, TransitionOptions{Notify: true})
	require.NoError(t, err)
	svc.Wait()

	assert.Empty(t, email.subjects())
	assert.Empty(t, store.deliveries)
}

func TestApply_NotificationUsesSeededEntry(t *testing.T) {
	store, dir := fixture()
	email := &fakeEmail{succeed: true}
	svc := newTestService(store, dir, email)

	app, err := svc.Apply(context.Background(), dir.jobID, dir.userID, "", true)
	require.NoError(t, err)
	svc.Wait()

	require.Len(t, store.deliveries, 1)
	assert.Equal(t, app.ID, store.deliveries[0].applicationID)
	assert.Equal(t, 0, store.deliveries[0].entryIndex)
	assert.True(t, store.deliveries[0].sent)
}

func TestStatusAlwaysMatchesLastLedgerEntry(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)
	ctx := context.Background()

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	for _, status := range types.KnownStatuses {
		updated, err := svc.Transition(ctx, app.ID, status, TransitionOptions{})
		require.NoError(t, err)
		last := updated.LastHistoryEntry()
		require.NotNil(t, last)
		assert.Equal(t, updated.Status, last.Status)
	}
}

func TestTransition_TimestampsAdvance(t *testing.T) {
	store, dir := fixture()
	svc := newTestService(store, dir, nil)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	svc.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	app, err := svc.Apply(ctx, dir.jobID, dir.userID, "", false)
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, app.ID, types.StatusReviewed, TransitionOptions{})
	require.NoError(t, err)

	assert.True(t, updated.LastActivityAt.After(app.AppliedAt))
	assert.True(t, updated.StatusHistory[1].ChangedAt.After(updated.StatusHistory[0].ChangedAt))
}
