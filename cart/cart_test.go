package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/model"
)

var (
	xx99 = model.CartItem{ProductID: "xx99-mark-ii", Name: "XX99 MARK II HEADPHONES", ShortName: "XX99 MK II", Price: 2999, Quantity: 1, Image: "/images/xx99.png"}
	yx1  = model.CartItem{ProductID: "yx1", Name: "YX1 WIRELESS EARPHONES", ShortName: "YX1", Price: 599, Quantity: 2, Image: "/images/yx1.png"}
)

func TestAddMergesDuplicateProduct(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())

	_, err := s.Add(ctx, "sess", xx99)
	require.NoError(t, err)
	_, err = s.Add(ctx, "sess", yx1)
	require.NoError(t, err)
	items, err := s.Add(ctx, "sess", model.CartItem{ProductID: "xx99-mark-ii", Price: 2999, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "XX99 MARK II HEADPHONES", items[0].Name)
	assert.Equal(t, 5, Count(items))
	assert.Equal(t, 3*2999.0+2*599.0, Total(items))
}

func TestAddRejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())

	cases := []model.CartItem{
		{ProductID: "", Price: 1, Quantity: 1},
		{ProductID: "a", Price: -1, Quantity: 1},
		{ProductID: "a", Price: 1, Quantity: 0},
	}
	for _, c := range cases {
		_, err := s.Add(ctx, "sess", c)
		assert.True(t, errors.Is(err, ErrInvalidItem), "item %+v", c)
	}

	_, err := s.Add(ctx, " ", xx99)
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestSetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())
	_, _ = s.Add(ctx, "sess", xx99)
	_, _ = s.Add(ctx, "sess", yx1)

	items, err := s.SetQuantity(ctx, "sess", "yx1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[1].Quantity)

	items, err = s.SetQuantity(ctx, "sess", "yx1", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "xx99-mark-ii", items[0].ProductID)

	_, err = s.Remove(ctx, "sess", "yx1")
	assert.True(t, errors.Is(err, ErrItemNotInCart))

	items, err = s.Remove(ctx, "sess", "xx99-mark-ii")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })

	_, _ = s.Add(ctx, "sess", xx99)
	_, _ = s.Add(ctx, "sess", yx1)
	require.NoError(t, s.Clear(ctx, "sess"))

	require.Len(t, events, 3)
	assert.Len(t, events[0].Items, 1)
	assert.Len(t, events[1].Items, 2)
	assert.Empty(t, events[2].Items)
	assert.Equal(t, "sess", events[2].Session)

	unsubscribe()
	unsubscribe()
	_, _ = s.Add(ctx, "sess", xx99)
	assert.Len(t, events, 3)
}

func TestFailedMutationDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())
	calls := 0
	s.Subscribe(func(Event) { calls++ })

	_, err := s.Remove(ctx, "sess", "missing")
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())
	_, _ = s.Add(ctx, "a", xx99)

	items, err := s.Items(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, items)
}
