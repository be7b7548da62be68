package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/model"
)

// Storage is the persistence port behind a cart. Load returns an empty
// slice, not an error, for a key that was never saved.
type Storage interface {
	Load(ctx context.Context, key string) ([]model.CartItem, error)
	Save(ctx context.Context, key string, items []model.CartItem) error
	Clear(ctx context.Context, key string) error
}

// MemoryStorage keeps carts in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]model.CartItem
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]model.CartItem)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]model.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.carts[key]
	out := make([]model.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, items []model.CartItem) error {
	stored := make([]model.CartItem, len(items))
	copy(stored, items)
	m.mu.Lock()
	m.carts[key] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.carts, key)
	m.mu.Unlock()
	return nil
}

// RedisStorage stores each cart as a JSON string under "<prefix><key>".
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage uses prefix "cart:" when prefix is empty. A zero ttl keeps
// carts until they are cleared.
func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	if prefix == "" {
		prefix = "cart:"
	}
	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]model.CartItem, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	var items []model.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", key, err)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, items []model.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", key, err)
	}
	return nil
}
