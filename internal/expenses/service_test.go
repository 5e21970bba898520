package expenses

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// memoryRepo implements Repository in memory with the same conditional-update
// semantics as the SQL version so races surface in tests.
type memoryRepo struct {
	mu        sync.Mutex
	nextID    int64
	seq       map[string]int64
	expenses  map[int64]Expense
	approvals []Approval
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, seq: map[string]int64{}, expenses: map[int64]Expense{}}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *memoryRepo) List(_ context.Context, req ListExpensesRequest) ([]Expense, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Expense
	for _, e := range m.expenses {
		if req.ApplicantID != nil && e.ApplicantID != *req.ApplicantID {
			continue
		}
		if req.Status != nil && e.Status != *req.Status {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, e Expense) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID
	m.nextID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.expenses[e.ID] = e
	return e.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, e Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.expenses[id]
	if !ok {
		return ErrNotFound
	}
	e.ID = id
	e.Status = cur.Status
	e.UpdatedAt = time.Now()
	m.expenses[id] = e
	return nil
}

func (m *memoryRepo) SetReceiptURL(_ context.Context, id int64, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return ErrNotFound
	}
	e.ReceiptURL = &url
	m.expenses[id] = e
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.Status != StatusDraft {
		return ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *memoryRepo) Transition(_ context.Context, id int64, from, to Status, approval *Approval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return ErrNotFound
	}
	if e.Status != from {
		return ErrConflictingTransition
	}
	e.Status = to
	e.UpdatedAt = time.Now()
	m.expenses[id] = e
	if approval != nil {
		a := *approval
		a.ID = int64(len(m.approvals) + 1)
		m.approvals = append(m.approvals, a)
	}
	return nil
}

func (m *memoryRepo) ListApprovals(_ context.Context, expenseID int64) ([]Approval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Approval
	for _, a := range m.approvals {
		if a.ExpenseID == expenseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListSubmittedOlderThan(_ context.Context, age time.Duration) ([]Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-age)
	var out []Expense
	for _, e := range m.expenses {
		if e.Status == StatusSubmitted && e.UpdatedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) GenerateClaimNumber(_ context.Context, date time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	period := date.Format("0601")
	m.seq[period]++
	return fmt.Sprintf("EXP-%s-%04d", period, m.seq[period]), nil
}

type memoryAudit struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (m *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func newTestService() (*Service, *memoryRepo, *memoryAudit) {
	repo := newMemoryRepo()
	audit := &memoryAudit{}
	return NewService(repo, audit, nil), repo, audit
}

func validCreate() CreateExpenseRequest {
	return CreateExpenseRequest{
		Department:    "第一工事部",
		ExpenseDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		ReceiptDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Amount:        3200,
		Category:      CategoryTransportation,
		PaymentMethod: PaymentCash,
		Description:   "現場往復の電車賃",
		Purpose:       "現場確認",
	}
}

func TestCreateAssignsClaimNumberAndDraft(t *testing.T) {
	svc, _, audit := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2604-0001", e.ClaimNumber)
	assert.Equal(t, StatusDraft, e.Status)
	assert.Equal(t, owner.ID, e.ApplicantID)

	e2, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2604-0002", e2.ClaimNumber)

	require.Len(t, audit.logs, 2)
	assert.Equal(t, "EXPENSE_CREATE", audit.logs[0].Action)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := validCreate()
	req.Amount = 0
	_, err := svc.Create(ctx, req, owner)
	assert.ErrorIs(t, err, ErrValidation)

	req = validCreate()
	req.Category = "PARTY"
	_, err = svc.Create(ctx, req, owner)
	assert.ErrorIs(t, err, ErrValidation)

	req = validCreate()
	req.PaymentMethod = "BARTER"
	_, err = svc.Create(ctx, req, owner)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitApproveSettleFlow(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)

	e, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, e.Status)

	e, err = svc.Approve(ctx, e.ID, approver, "OK")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, e.Status)

	e, err = svc.Settle(ctx, e.ID, finance, "4月分まとめ払い", "")
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, e.Status)

	logs, err := repo.ListApprovals(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2, "submit does not log, approve and settle do")
	assert.Equal(t, StatusApproved, logs[0].ResultingStatus)
	assert.Equal(t, approver.ID, logs[0].ApproverID)
	assert.Equal(t, StatusSettled, logs[1].ResultingStatus)
}

func TestRejectThenResubmitNotAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)

	e, err = svc.Reject(ctx, e.ID, approver, "領収書が不鮮明")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, e.Status)

	// Rejected claims are edited, not directly resubmitted.
	_, err = svc.Submit(ctx, e.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectWithoutReason(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, e.ID, approver, "")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Get(ctx, e.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status, "failed reject leaves status untouched")
}

func TestUpdateOnlyWhileEditable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)

	amount := int64(4800)
	e, err = svc.Update(ctx, e.ID, UpdateExpenseRequest{Amount: &amount}, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(4800), e.Amount)
	assert.Equal(t, "第一工事部", e.Department, "unset fields keep their values")

	_, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)
	_, err = svc.Update(ctx, e.ID, UpdateExpenseRequest{Amount: &amount}, owner)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteOnlyDraftAndOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)

	err = svc.Delete(ctx, e.ID, approver)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)
	err = svc.Delete(ctx, e.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplicantScoping(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	other := shared.Actor{ID: 55, Role: shared.RoleApplicant}

	mine, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, validCreate(), other)
	require.NoError(t, err)

	_, err = svc.Get(ctx, theirs.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound, "other applicants' claims look nonexistent")

	got, _, err := svc.List(ctx, ListExpensesRequest{Limit: 10}, owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	all, _, err := svc.List(ctx, ListExpensesRequest{Limit: 10}, approver)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestConcurrentApproveOneWins(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)

	second := shared.Actor{ID: 7, Role: shared.RoleApprover}
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, a := range []shared.Actor{approver, second} {
		wg.Add(1)
		go func(actor shared.Actor) {
			defer wg.Done()
			_, err := svc.Approve(ctx, e.ID, actor, "OK")
			errs <- err
		}(a)
	}
	wg.Wait()
	close(errs)

	var okCount, conflictCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		default:
			// Either the conditional update lost, or the loser read the
			// already-approved row. Both are rejections of the second approve.
			conflictCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, conflictCount)

	logs, err := svc.Approvals(ctx, e.ID, approver)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "exactly one approval recorded")
}

func TestAttachReceipt(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, validCreate(), owner)
	require.NoError(t, err)

	e, err = svc.AttachReceipt(ctx, e.ID, "/receipts/abc.jpg", owner)
	require.NoError(t, err)
	require.NotNil(t, e.ReceiptURL)
	assert.Equal(t, "/receipts/abc.jpg", *e.ReceiptURL)

	_, err = svc.Submit(ctx, e.ID, owner)
	require.NoError(t, err)
	_, err = svc.AttachReceipt(ctx, e.ID, "/receipts/late.jpg", owner)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
