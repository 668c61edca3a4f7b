package testsupport

import (
	"context"
	"testing"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/notify"
	"statewatch/internal/record"
)

// MustOpenRecords opens a record.Store for tests and registers cleanup.
func MustOpenRecords(t testing.TB, cfg *config.Config) *record.Store {
	t.Helper()

	store, err := record.Open(cfg)
	if err != nil {
		t.Fatalf("record.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenDirectory opens a directory.Store for tests and registers cleanup.
func MustOpenDirectory(t testing.TB, cfg *config.Config) *directory.Store {
	t.Helper()

	store, err := directory.Open(cfg)
	if err != nil {
		t.Fatalf("directory.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenInbox opens a notify.InboxStore for tests and registers cleanup.
func MustOpenInbox(t testing.TB, cfg *config.Config) *notify.InboxStore {
	t.Helper()

	store, err := notify.OpenInbox(cfg)
	if err != nil {
		t.Fatalf("notify.OpenInbox: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedUser creates a user with roles in the directory store.
func SeedUser(t testing.TB, store *directory.Store, id, email string, roles ...string) directory.User {
	t.Helper()

	user := directory.User{ID: id, Email: email, Enabled: true, Roles: roles}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	return user
}
