package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := m.values[key]; exists {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	value, exists := m.values[key]
	if !exists {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newMemoryStore()
	first, err := NewRedisLock(store, "cm:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, err := NewRedisLock(store, "cm:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ctx := context.Background()
	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to win, ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to lose, ok=%v err=%v", ok, err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected acquire after release, ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	store := newMemoryStore()
	lock, err := NewRedisLock(store, "cm:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ctx := context.Background()
	// Never acquired, release must be a no-op.
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release without acquire: %v", err)
	}

	if _, err := lock.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	// Another instance stole the key after our TTL lapsed.
	store.values["cm:lock:cron"] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release foreign owner: %v", err)
	}
	if store.values["cm:lock:cron"] != "someone-else" {
		t.Fatalf("expected foreign lock to survive release")
	}
}
