package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID    int64
	customers map[int64]Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, customers: map[int64]Customer{}}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memoryRepo) List(_ context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range m.customers {
		if req.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, c Customer) (int64, error) {
	for _, existing := range m.customers {
		if existing.Code == c.Code {
			return 0, ErrDuplicateCode
		}
	}
	c.ID = m.nextID
	m.nextID++
	c.IsActive = true
	m.customers[c.ID] = c
	return c.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, c Customer) error {
	if _, ok := m.customers[c.ID]; !ok {
		return ErrNotFound
	}
	m.customers[c.ID] = c
	return nil
}

func TestCreateAndDeactivate(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Code: "C-001", Name: "大和建設株式会社", NameKana: "ヤマトケンセツ"})
	require.NoError(t, err)
	assert.True(t, c.IsActive)

	_, err = svc.Create(ctx, CreateCustomerRequest{Code: "C-001", Name: "別会社"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	c, err = svc.Deactivate(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, c.IsActive)

	active, _, err := svc.List(ctx, ListCustomersRequest{ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCreateValidatesEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), CreateCustomerRequest{Code: "C-002", Name: "社名", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateMergesFields(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Code: "C-003", Name: "旧社名", Phone: "03-0000-0000"})
	require.NoError(t, err)

	name := "新社名"
	c, err = svc.Update(ctx, c.ID, UpdateCustomerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "新社名", c.Name)
	assert.Equal(t, "03-0000-0000", c.Phone, "unset fields keep their values")

	_, err = svc.Update(ctx, 999, UpdateCustomerRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
