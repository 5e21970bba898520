package purchases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

type memoryRepo struct {
	nextID int64
	seq    int64
	orders map[int64]Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, orders: map[int64]Order{}}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *memoryRepo) List(_ context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		if req.SupplierID != nil && o.SupplierID != *req.SupplierID {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, o Order) (int64, error) {
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = o
	return o.ID, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id int64, from, to Status, receivedDate *time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrInvalidState
	}
	o.Status = to
	if receivedDate != nil {
		o.ReceivedDate = receivedDate
	}
	m.orders[id] = o
	return nil
}

func (m *memoryRepo) GenerateOrderNumber(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("PO-%s-%04d", date.Format("0601"), m.seq), nil
}

var buyer = shared.Actor{ID: 5, Role: shared.RoleFinance}

func orderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		SupplierID: 2,
		ItemName:   "生コンクリート",
		Quantity:   12.5,
		Unit:       "m3",
		UnitPrice:  18000,
		OrderDate:  time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateOrderPendingWithAmount(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	o, err := svc.Create(context.Background(), orderRequest(), buyer)
	require.NoError(t, err)
	assert.Equal(t, "PO-2604-0001", o.OrderNumber)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(225000), o.Amount, "12.5 m3 at 18,000 yen")
}

func TestOrderLifecycle(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	o, err := svc.Create(ctx, orderRequest(), buyer)
	require.NoError(t, err)

	o, err = svc.Order(ctx, o.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, StatusOrdered, o.Status)

	received := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	o, err = svc.Receive(ctx, o.ID, received, buyer)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, o.Status)
	require.NotNil(t, o.ReceivedDate)
	assert.Equal(t, received, *o.ReceivedDate)
}

func TestCancelOnlyPending(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	o, err := svc.Create(ctx, orderRequest(), buyer)
	require.NoError(t, err)
	_, err = svc.Order(ctx, o.ID, buyer)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o.ID, buyer)
	assert.ErrorIs(t, err, ErrInvalidState)

	o2, err := svc.Create(ctx, orderRequest(), buyer)
	require.NoError(t, err)
	o2, err = svc.Cancel(ctx, o2.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o2.Status)
}

func TestReceiveRequiresOrdered(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	o, err := svc.Create(ctx, orderRequest(), buyer)
	require.NoError(t, err)
	_, err = svc.Receive(ctx, o.ID, time.Now(), buyer)
	assert.ErrorIs(t, err, ErrInvalidState)
}
