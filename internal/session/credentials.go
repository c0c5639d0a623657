package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/storefront/internal/infrastructure/store"
)

// TokenKey is where the bearer credential lives in durable storage
const TokenKey = "token"

// CredentialStore holds the bearer credential. It is the single source of
// the token for both the session and the service clients.
type CredentialStore struct {
	mu     sync.Mutex
	kv     store.KVStore
	token  string
	loaded bool
}

func NewCredentialStore(kv store.KVStore) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// Token returns the current credential, or "" when there is none
func (c *CredentialStore) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.token, nil
	}
	token, _, err := c.kv.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	c.token = token
	c.loaded = true
	return token, nil
}

// Save replaces the credential. The in-memory copy is updated even when the
// durable write fails.
func (c *CredentialStore) Save(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.loaded = true
	if err := c.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}

// Clear drops the credential from memory and durable storage
func (c *CredentialStore) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.loaded = true
	if err := c.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
