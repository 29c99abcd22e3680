package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	if err := store.Save(payload("a1", "r1")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded == nil || loaded.AccessToken != "a1" || loaded.RefreshToken != "r1" {
		t.Fatalf("unexpected payload: %+v", loaded)
	}
	if loaded.User.Email != "a@x.com" {
		t.Fatalf("user not round-tripped: %+v", loaded.User)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	loaded, err = store.Load()
	if err != nil || loaded != nil {
		t.Fatalf("after Clear: got (%+v, %v), want (nil, nil)", loaded, err)
	}

	// clearing again is a no-op
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear error: %v", err)
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	loaded, err := store.Load()
	if err != nil || loaded != nil {
		t.Fatalf("got (%+v, %v), want (nil, nil)", loaded, err)
	}
}

func TestFileStore_OwnerOnlyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	if err := store.Save(payload("a1", "r1")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
}
