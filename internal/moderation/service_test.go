package moderation_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/moderation"
	"github.com/hivemart/hivemart/internal/shared"
)

type memoryRepo struct {
	records map[uuid.UUID]moderation.RequestRecord
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[uuid.UUID]moderation.RequestRecord{}}
}

func (m *memoryRepo) Create(ctx context.Context, rec moderation.RequestRecord) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id uuid.UUID) (moderation.RequestRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return moderation.RequestRecord{}, moderation.ErrNotFound
	}
	return rec, nil
}

func (m *memoryRepo) ListBySubmitter(ctx context.Context, userID int64) ([]moderation.RequestRecord, error) {
	var out []moderation.RequestRecord
	for _, rec := range m.records {
		if rec.SubmittedBy == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) ListPending(ctx context.Context) ([]moderation.RequestRecord, error) {
	var out []moderation.RequestRecord
	for _, rec := range m.records {
		if rec.Status == moderation.StatusPending {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) ListStalePending(ctx context.Context, before time.Time) ([]moderation.RequestRecord, error) {
	var out []moderation.RequestRecord
	for _, rec := range m.records {
		if rec.Status == moderation.StatusPending && rec.CreatedAt.Before(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRepo) DeletePending(ctx context.Context, id uuid.UUID, submittedBy int64) error {
	rec, ok := m.records[id]
	if !ok {
		return moderation.ErrNotFound
	}
	if rec.SubmittedBy != submittedBy {
		return moderation.ErrForbidden
	}
	if rec.Status != moderation.StatusPending {
		return moderation.ErrInvalidState
	}
	delete(m.records, id)
	return nil
}

// WithTx mimics transactional behaviour by restoring a snapshot when fn
// fails, so rollback semantics hold in tests.
func (m *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx moderation.TxRepository) error) error {
	snapshot := make(map[uuid.UUID]moderation.RequestRecord, len(m.records))
	for k, v := range m.records {
		snapshot[k] = v
	}
	if err := fn(ctx, &memoryTx{repo: m}); err != nil {
		m.records = snapshot
		return err
	}
	return nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) Get(ctx context.Context, id uuid.UUID) (moderation.RequestRecord, error) {
	return t.repo.Get(ctx, id)
}

func (t *memoryTx) MarkDecided(ctx context.Context, id uuid.UUID, status moderation.Status, decidedBy int64, body json.RawMessage) error {
	rec, ok := t.repo.records[id]
	if !ok {
		return moderation.ErrNotFound
	}
	if rec.Status != moderation.StatusPending {
		return moderation.ErrInvalidState
	}
	now := time.Now()
	rec.Status = status
	rec.Body = body
	rec.DecidedBy = &decidedBy
	rec.DecidedAt = &now
	rec.UpdatedAt = now
	t.repo.records[id] = rec
	return nil
}

type stubCatalog struct {
	applied []appliedChange
	failOn  moderation.RequestType
}

type appliedChange struct {
	Type moderation.RequestType
	Body json.RawMessage
}

func (s *stubCatalog) Apply(ctx context.Context, t moderation.RequestType, body json.RawMessage) error {
	if s.failOn != "" && t == s.failOn {
		return errors.New("catalog unavailable")
	}
	s.applied = append(s.applied, appliedChange{Type: t, Body: body})
	return nil
}

type stubApprovals struct {
	logs []shared.ApprovalLog
}

func (s *stubApprovals) Record(ctx context.Context, log shared.ApprovalLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func (s *stubApprovals) List(ctx context.Context, module string, ref uuid.UUID) ([]shared.ApprovalLog, error) {
	var out []shared.ApprovalLog
	for _, l := range s.logs {
		if l.Module == module && l.RefID == ref {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubNotifier struct {
	notices []moderation.RequestRecord
}

func (s *stubNotifier) NotifyDecision(ctx context.Context, rec moderation.RequestRecord) error {
	s.notices = append(s.notices, rec)
	return nil
}

type fixture struct {
	service   *moderation.Service
	repo      *memoryRepo
	catalog   *stubCatalog
	approvals *stubApprovals
	notifier  *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemoryRepo(),
		catalog:   &stubCatalog{},
		approvals: &stubApprovals{},
		notifier:  &stubNotifier{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = moderation.NewService(logger, f.repo, f.catalog, f.approvals, nil, f.notifier)
	return f
}

var (
	supplier = &authz.Principal{ID: 10, Role: authz.RoleSupplier}
	moder    = &authz.Principal{ID: 20, Role: authz.RoleModer}
	admin    = &authz.Principal{ID: 30, Role: authz.RoleAdmin}
	customer = &authz.Principal{ID: 40, Role: authz.RoleCustomer}
)

func submitProduct(t *testing.T, f *fixture) moderation.RequestRecord {
	t.Helper()
	rec, err := f.service.Submit(context.Background(), supplier, "create-product",
		json.RawMessage(`{"name":"Honey Jar","category_id":1,"producer_id":1,"price":9.5}`))
	require.NoError(t, err)
	return rec
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	require.Equal(t, moderation.StatusPending, rec.Status)
	require.Equal(t, moderation.TypeCreateProduct, rec.Type)
	require.Equal(t, supplier.ID, rec.SubmittedBy)
	require.NotEqual(t, uuid.Nil, rec.ID)

	history, err := f.service.History(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, shared.ApprovalSubmit, history[0].Action)
	require.WithinDuration(t, time.Now(), history[0].At, time.Minute)
}

func TestSubmitRejectsNonSuppliers(t *testing.T) {
	f := newFixture(t)
	body := json.RawMessage(`{"name":"Honey Jar"}`)

	for _, principal := range []*authz.Principal{nil, customer, moder, admin} {
		_, err := f.service.Submit(context.Background(), principal, "create-product", body)
		require.ErrorIs(t, err, moderation.ErrForbidden)
	}
}

func TestSubmitValidatesTypeAndBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, supplier, "drop-table", json.RawMessage(`{}`))
	require.ErrorIs(t, err, moderation.ErrValidation)

	_, err = f.service.Submit(ctx, supplier, "create-product", json.RawMessage(`[1,2]`))
	require.ErrorIs(t, err, moderation.ErrValidation)

	// create bodies must not reference an existing entity
	_, err = f.service.Submit(ctx, supplier, "create-product", json.RawMessage(`{"id":5,"name":"x"}`))
	require.ErrorIs(t, err, moderation.ErrValidation)

	// update bodies must reference one
	_, err = f.service.Submit(ctx, supplier, "update-product", json.RawMessage(`{"name":"x"}`))
	require.ErrorIs(t, err, moderation.ErrValidation)

	_, err = f.service.Submit(ctx, supplier, "update-product", json.RawMessage(`{"id":5,"name":"x"}`))
	require.NoError(t, err)
}

func TestApproveAppliesToCatalog(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	decided, err := f.service.Approve(context.Background(), moder, rec.ID, nil)
	require.NoError(t, err)
	require.Equal(t, moderation.StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	require.Equal(t, moder.ID, *decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)

	require.Len(t, f.catalog.applied, 1)
	require.Equal(t, moderation.TypeCreateProduct, f.catalog.applied[0].Type)

	require.Len(t, f.notifier.notices, 1)
	require.Equal(t, rec.ID, f.notifier.notices[0].ID)

	history, err := f.service.History(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, entry := range history {
		require.False(t, entry.At.IsZero(), "history entries carry real timestamps")
	}
}

func TestApproveWithOverrideBody(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	override := json.RawMessage(`{"name":"Honey Jar 500g","category_id":1,"producer_id":1,"price":11}`)
	decided, err := f.service.Approve(context.Background(), admin, rec.ID, override)
	require.NoError(t, err)
	require.JSONEq(t, string(override), string(decided.Body))

	require.Len(t, f.catalog.applied, 1)
	require.JSONEq(t, string(override), string(f.catalog.applied[0].Body))

	stored, err := f.repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.JSONEq(t, string(override), string(stored.Body))
}

func TestRejectSkipsCatalog(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	decided, err := f.service.Reject(context.Background(), moder, rec.ID)
	require.NoError(t, err)
	require.Equal(t, moderation.StatusRejected, decided.Status)
	require.Empty(t, f.catalog.applied)
	require.Len(t, f.notifier.notices, 1)
}

func TestDecideTwiceFails(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	_, err := f.service.Approve(context.Background(), moder, rec.ID, nil)
	require.NoError(t, err)

	_, err = f.service.Reject(context.Background(), admin, rec.ID)
	require.ErrorIs(t, err, moderation.ErrInvalidState)

	_, err = f.service.Approve(context.Background(), admin, rec.ID, nil)
	require.ErrorIs(t, err, moderation.ErrInvalidState)

	require.Len(t, f.catalog.applied, 1, "catalog change must be applied exactly once")
}

func TestDecideRequiresReviewerRole(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	for _, principal := range []*authz.Principal{nil, customer, supplier} {
		_, err := f.service.Approve(context.Background(), principal, rec.ID, nil)
		require.ErrorIs(t, err, moderation.ErrForbidden)
	}
}

func TestCatalogFailureKeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	f.catalog.failOn = moderation.TypeCreateProduct
	rec := submitProduct(t, f)

	_, err := f.service.Approve(context.Background(), moder, rec.ID, nil)
	require.Error(t, err)

	stored, err := f.repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, moderation.StatusPending, stored.Status, "failed apply must roll the decision back")
	require.Nil(t, stored.DecidedBy)
	require.Empty(t, f.notifier.notices)
}

func TestWithdrawOwnPendingRequest(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	require.NoError(t, f.service.Withdraw(context.Background(), supplier, rec.ID))

	_, err := f.repo.Get(context.Background(), rec.ID)
	require.ErrorIs(t, err, moderation.ErrNotFound)
}

func TestWithdrawGuards(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	other := &authz.Principal{ID: 99, Role: authz.RoleSupplier}
	require.ErrorIs(t, f.service.Withdraw(context.Background(), other, rec.ID), moderation.ErrForbidden)
	require.ErrorIs(t, f.service.Withdraw(context.Background(), moder, rec.ID), moderation.ErrForbidden)

	_, err := f.service.Approve(context.Background(), moder, rec.ID, nil)
	require.NoError(t, err)
	require.ErrorIs(t, f.service.Withdraw(context.Background(), supplier, rec.ID), moderation.ErrInvalidState)
}

func TestSupplierOnlySeesOwnRequest(t *testing.T) {
	f := newFixture(t)
	rec := submitProduct(t, f)

	other := &authz.Principal{ID: 99, Role: authz.RoleSupplier}
	_, err := f.service.Get(context.Background(), other, rec.ID)
	require.ErrorIs(t, err, moderation.ErrNotFound)

	got, err := f.service.Get(context.Background(), supplier, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)

	got, err = f.service.Get(context.Background(), moder, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
}

func TestListPendingExcludesDecided(t *testing.T) {
	f := newFixture(t)
	first := submitProduct(t, f)
	second := submitProduct(t, f)

	_, err := f.service.Approve(context.Background(), moder, first.ID, nil)
	require.NoError(t, err)

	pending, err := f.service.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].ID)
}
