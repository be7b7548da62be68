// Package cart keeps per-session shopping carts behind a pluggable Storage
// and notifies subscribers after every change.
package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"storefront/model"
)

var (
	// ErrInvalidItem is returned for a blank product id, a negative price or
	// a quantity below one.
	ErrInvalidItem = errors.New("invalid cart item")
	// ErrNoSession is returned when the session key is blank.
	ErrNoSession = errors.New("cart session required")
	// ErrItemNotInCart is returned by Remove for a product the cart does not hold.
	ErrItemNotInCart = errors.New("item not in cart")
)

// Event is published after a cart changes. Items is the full new contents.
type Event struct {
	Session string
	Items   []model.CartItem
}

// Store is the single source of truth for carts. Consumers subscribe to it
// instead of re-reading storage.
type Store struct {
	storage Storage

	// serializes read-modify-write per process
	mu sync.Mutex

	subMu  sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage, subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every future change. The returned func removes it.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(session string, items []model.CartItem) {
	s.subMu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		snapshot := make([]model.CartItem, len(items))
		copy(snapshot, items)
		fn(Event{Session: session, Items: snapshot})
	}
}

func (s *Store) Items(ctx context.Context, session string) ([]model.CartItem, error) {
	if strings.TrimSpace(session) == "" {
		return nil, ErrNoSession
	}
	return s.storage.Load(ctx, session)
}

// Add puts item in the cart, adding to the quantity when the product is
// already there.
func (s *Store) Add(ctx context.Context, session string, item model.CartItem) ([]model.CartItem, error) {
	if strings.TrimSpace(item.ProductID) == "" || item.Price < 0 || item.Quantity < 1 {
		return nil, ErrInvalidItem
	}
	return s.mutate(ctx, session, func(items []model.CartItem) ([]model.CartItem, error) {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Quantity += item.Quantity
				return items, nil
			}
		}
		return append(items, item), nil
	})
}

// SetQuantity overwrites a line's quantity. Zero or less removes the line.
// Setting a product that is not in the cart is a no-op.
func (s *Store) SetQuantity(ctx context.Context, session, productID string, qty int) ([]model.CartItem, error) {
	return s.mutate(ctx, session, func(items []model.CartItem) ([]model.CartItem, error) {
		out := items[:0]
		for _, it := range items {
			if it.ProductID == productID {
				if qty <= 0 {
					continue
				}
				it.Quantity = qty
			}
			out = append(out, it)
		}
		return out, nil
	})
}

func (s *Store) Remove(ctx context.Context, session, productID string) ([]model.CartItem, error) {
	return s.mutate(ctx, session, func(items []model.CartItem) ([]model.CartItem, error) {
		for i := range items {
			if items[i].ProductID == productID {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrItemNotInCart
	})
}

// Clear empties the cart, e.g. after a successful checkout.
func (s *Store) Clear(ctx context.Context, session string) error {
	if strings.TrimSpace(session) == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	err := s.storage.Clear(ctx, session)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(session, []model.CartItem{})
	return nil
}

func (s *Store) mutate(ctx context.Context, session string, fn func([]model.CartItem) ([]model.CartItem, error)) ([]model.CartItem, error) {
	if strings.TrimSpace(session) == "" {
		return nil, ErrNoSession
	}
	s.mu.Lock()
	items, err := s.storage.Load(ctx, session)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	items, err = fn(items)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.storage.Save(ctx, session, items); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.publish(session, items)
	out := make([]model.CartItem, len(items))
	copy(out, items)
	return out, nil
}

// Count is the total number of units across all lines.
func Count(items []model.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of line totals.
func Total(items []model.CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
