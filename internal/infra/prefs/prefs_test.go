package prefs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/splitkaro/bff-go/internal/infra/prefs"
)

func openStore(t *testing.T) *prefs.Store {
	t.Helper()
	s, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SetGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", prefs.KeyCurrentGroup, "g-42"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := s.Get(ctx, "u1", prefs.KeyCurrentGroup)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != "g-42" {
		t.Errorf("expected (g-42, true), got (%q, %v)", got, ok)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openStore(t)

	got, ok, err := s.Get(context.Background(), "u1", prefs.KeyCurrentGroup)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || got != "" {
		t.Errorf("expected missing key, got (%q, %v)", got, ok)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", prefs.KeyCurrentGroup, "g-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "u1", prefs.KeyCurrentGroup, "g-2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, _ := s.Get(ctx, "u1", prefs.KeyCurrentGroup)
	if !ok || got != "g-2" {
		t.Errorf("expected overwritten value g-2, got (%q, %v)", got, ok)
	}
}

func TestStore_ScopedPerUser(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", prefs.KeyDeviceRegistered, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}

	_, ok, err := s.Get(ctx, "u2", prefs.KeyDeviceRegistered)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected no value for another user")
	}
}

func TestStore_Delete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", prefs.KeyNotifyPermission, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete(ctx, "u1", prefs.KeyNotifyPermission); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "u1", prefs.KeyNotifyPermission); ok {
		t.Error("expected key to be deleted")
	}

	if err := s.Delete(ctx, "u1", "never-set"); err != nil {
		t.Errorf("deleting absent key should not error, got %v", err)
	}
}
