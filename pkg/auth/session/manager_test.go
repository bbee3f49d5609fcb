package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:access:%s", accessID)
}

func (m *mockStore) UserSessionKey(userID string) string {
	return fmt.Sprintf("sess:user:%s", userID)
}

func (m *mockStore) BlacklistKey(accessID string) string {
	return fmt.Sprintf("blacklist:%s", accessID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{
		store:     store,
		keyer:     store,
		ttl:       time.Hour,
		accessTTL: 15 * time.Minute,
	}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)

	ctx := context.Background()
	userID := uuid.New()
	accessID := "access-123"
	token, err := manager.Generate(ctx, userID, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stored := store.data[store.AccessSessionKey(accessID)]; stored != token {
		t.Fatalf("expected stored token %q, got %q", token, stored)
	}
	if indexed := store.data[store.UserSessionKey(userID.String())]; indexed != accessID {
		t.Fatalf("expected user index %q, got %q", accessID, indexed)
	}

	if _, _, err := manager.Rotate(ctx, userID, accessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, userID, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.data[store.AccessSessionKey(accessID)]; exists {
		t.Fatalf("old access key left behind")
	}
	if stored := store.data[store.AccessSessionKey(newAccessID)]; stored != newToken {
		t.Fatalf("expected new token stored, got %q", stored)
	}
	if indexed := store.data[store.UserSessionKey(userID.String())]; indexed != newAccessID {
		t.Fatalf("expected user index to follow rotation, got %q", indexed)
	}
}

func TestManagerRevokeUserBlacklistsLiveToken(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)

	ctx := context.Background()
	userID := uuid.New()
	accessID := "access-456"
	if _, err := manager.Generate(ctx, userID, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := manager.RevokeUser(ctx, userID); err != nil {
		t.Fatalf("revoke user: %v", err)
	}

	if has, _ := manager.HasSession(ctx, accessID); has {
		t.Fatal("expected session to be gone after revoke")
	}
	if _, exists := store.data[store.UserSessionKey(userID.String())]; exists {
		t.Fatal("user index left behind after revoke")
	}
	blacklisted, err := manager.IsBlacklisted(ctx, accessID)
	if err != nil {
		t.Fatalf("is blacklisted: %v", err)
	}
	if !blacklisted {
		t.Fatal("expected access id to be blacklisted")
	}
}

func TestManagerRevokeUserWithoutSessionIsNoop(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)

	if err := manager.RevokeUser(context.Background(), uuid.New()); err != nil {
		t.Fatalf("expected no error for missing session, got %v", err)
	}
}
