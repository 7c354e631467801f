package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/amendez21/storefront-backend/pkg/redis"
)

// Persister is the durable storage boundary for carts. Load returns nil (not
// an error) when no cart is stored under the key.
type Persister interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, cart *Cart) error
	Delete(ctx context.Context, key string) error
}

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(prefix, cartKey string) string
}

// RedisPersister stores each cart as a single JSON blob, the server-side
// equivalent of the web client's local cart storage. Carts carry no TTL; they
// live until cleared or deleted.
type RedisPersister struct {
	store  redisStore
	prefix string
}

// NewRedisPersister builds a persister on top of the shared Redis client.
func NewRedisPersister(client *redisclient.Client, prefix string) (*RedisPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if prefix == "" {
		prefix = "cart-storage"
	}
	return &RedisPersister{store: client, prefix: prefix}, nil
}

func (p *RedisPersister) Load(ctx context.Context, key string) (*Cart, error) {
	raw, err := p.store.Get(ctx, p.store.CartKey(p.prefix, key))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []LineItem{}
	}
	return &cart, nil
}

func (p *RedisPersister) Save(ctx context.Context, key string, cart *Cart) error {
	if cart == nil {
		return fmt.Errorf("cart is required")
	}
	blob, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := p.store.Set(ctx, p.store.CartKey(p.prefix, key), blob, 0); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	return p.store.Del(ctx, p.store.CartKey(p.prefix, key))
}

// MemoryPersister keeps carts in process memory. Used by tests and local
// development without Redis.
type MemoryPersister struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{blobs: make(map[string][]byte)}
}

func (p *MemoryPersister) Load(_ context.Context, key string) (*Cart, error) {
	p.mu.RLock()
	blob, ok := p.blobs[key]
	p.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var cart Cart
	if err := json.Unmarshal(blob, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []LineItem{}
	}
	return &cart, nil
}

func (p *MemoryPersister) Save(_ context.Context, key string, cart *Cart) error {
	if cart == nil {
		return fmt.Errorf("cart is required")
	}
	blob, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	p.mu.Lock()
	p.blobs[key] = blob
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.blobs, key)
	p.mu.Unlock()
	return nil
}
