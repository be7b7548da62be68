package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Orders(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	a := sampleOrderRow()
	b := sampleOrderRow()
	b.ID = "00000000-0000-4000-8000-000000000002"
	b.OrderNumber = "ORD-LX2K9R-QWERT"
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	c := sampleOrderRow()
	c.ID = "00000000-0000-4000-8000-000000000003"
	c.OrderNumber = "ORD-LX2K9S-ASDFG"
	c.CustomerEmail = "other@mail.com"
	c.CreatedAt = b.CreatedAt

	require.NoError(t, m.InsertOrder(ctx, a))
	require.NoError(t, m.InsertOrder(ctx, b))
	require.NoError(t, m.InsertOrder(ctx, c))

	dup := sampleOrderRow()
	dup.ID = "00000000-0000-4000-8000-000000000004"
	assert.ErrorIs(t, m.InsertOrder(ctx, dup), ErrDuplicateOrderNumber)

	byEmail, err := m.ListOrdersByEmail(ctx, "alexei@mail.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, b.OrderNumber, byEmail[0].OrderNumber)
	assert.Equal(t, a.OrderNumber, byEmail[1].OrderNumber)

	// equal timestamps: later insert first
	all, err := m.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, c.OrderNumber, all[0].OrderNumber)
	assert.Equal(t, b.OrderNumber, all[1].OrderNumber)

	none, err := m.ListOrdersByEmail(ctx, "nobody@mail.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, m.UpdateOrderStatus(ctx, a.ID, "shipped"))
	got, err := m.GetOrderByNumber(ctx, a.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)

	assert.True(t, errors.Is(m.UpdateOrderStatus(ctx, "missing", "x"), ErrNotFound))
	_, err = m.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	o := sampleOrderRow()
	require.NoError(t, m.InsertOrder(ctx, o))

	got, err := m.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99

	again, err := m.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	n, err := Seed(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	// second run adds nothing
	n, err = Seed(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	headphones, err := m.ListProductsByCategory(ctx, "headphones")
	require.NoError(t, err)
	assert.Len(t, headphones, 3)

	p, err := m.GetProduct(ctx, "xx99-mark-ii")
	require.NoError(t, err)
	assert.Equal(t, 2999.0, p.Price)
	assert.True(t, p.New)
	assert.Equal(t, "/images/group-3-3.png", p.Model().Image)
}
