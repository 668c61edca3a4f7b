package directory_test

import (
	"context"
	"path/filepath"
	"testing"

	"statewatch/internal/directory"
)

func newStore(t *testing.T) *directory.Store {
	t.Helper()
	store, err := directory.OpenPath(filepath.Join(t.TempDir(), "directory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateUserAndLookup(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.CreateUser(ctx, directory.User{
		ID:       "u1",
		FullName: "Avery Banks",
		Email:    "avery@example.com",
		Enabled:  true,
		Roles:    []string{"Loan Officer", "Employee"},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	user, err := store.User(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user")
	}
	if user.Email != "avery@example.com" || !user.Enabled {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(user.Roles) != 2 || !user.HasRole("Loan Officer") {
		t.Fatalf("unexpected roles: %v", user.Roles)
	}
}

func TestUnknownUserReturnsNil(t *testing.T) {
	store := newStore(t)
	user, err := store.User(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil, got %+v", user)
	}
}

func TestUsersWithRole(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	seed := []directory.User{
		{ID: "u1", Enabled: true, Roles: []string{"Loan Officer"}},
		{ID: "u2", Enabled: true, Roles: []string{"Loan Officer", "Manager"}},
		{ID: "u3", Enabled: true, Roles: []string{"Manager"}},
	}
	for _, user := range seed {
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("create %s: %v", user.ID, err)
		}
	}

	officers, err := store.UsersWithRole(ctx, "Loan Officer")
	if err != nil {
		t.Fatalf("users with role: %v", err)
	}
	if len(officers) != 2 || officers[0].ID != "u1" || officers[1].ID != "u2" {
		t.Fatalf("unexpected members: %+v", officers)
	}

	none, err := store.UsersWithRole(ctx, "Auditor")
	if err != nil {
		t.Fatalf("users with role: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no members, got %+v", none)
	}
}

func TestAssignRoleRequiresUser(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.AssignRole(ctx, "ghost", "Manager"); err == nil {
		t.Fatal("expected error assigning role to missing user")
	}

	if err := store.CreateUser(ctx, directory.User{ID: "u1", Enabled: true}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.AssignRole(ctx, "u1", "Manager"); err != nil {
		t.Fatalf("assign role: %v", err)
	}
	// Assigning twice is a no-op, not an error.
	if err := store.AssignRole(ctx, "u1", "Manager"); err != nil {
		t.Fatalf("re-assign role: %v", err)
	}

	user, err := store.User(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "Manager" {
		t.Fatalf("unexpected roles: %v", user.Roles)
	}
}

func TestEmployeeUserLink(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, directory.User{ID: "u4", Enabled: true, Roles: []string{"Employee"}}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.LinkEmployee(ctx, "EMP-0007", "u4"); err != nil {
		t.Fatalf("link employee: %v", err)
	}

	user, err := store.EmployeeUser(ctx, "EMP-0007")
	if err != nil {
		t.Fatalf("employee user: %v", err)
	}
	if user == nil || user.ID != "u4" {
		t.Fatalf("unexpected employee user: %+v", user)
	}

	missing, err := store.EmployeeUser(ctx, "EMP-9999")
	if err != nil {
		t.Fatalf("employee user: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown employee, got %+v", missing)
	}

	// Unlinked employee rows resolve to no user.
	if err := store.LinkEmployee(ctx, "EMP-0008", ""); err != nil {
		t.Fatalf("link employee: %v", err)
	}
	unlinked, err := store.EmployeeUser(ctx, "EMP-0008")
	if err != nil {
		t.Fatalf("employee user: %v", err)
	}
	if unlinked != nil {
		t.Fatalf("expected nil for unlinked employee, got %+v", unlinked)
	}
}

func TestCreateUserReplacesRoles(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, directory.User{ID: "u1", Enabled: true, Roles: []string{"Loan Officer"}}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateUser(ctx, directory.User{ID: "u1", Enabled: false, Roles: []string{"Auditor"}}); err != nil {
		t.Fatalf("recreate user: %v", err)
	}

	user, err := store.User(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Enabled {
		t.Fatal("expected user disabled after upsert")
	}
	if len(user.Roles) != 1 || user.Roles[0] != "Auditor" {
		t.Fatalf("unexpected roles: %v", user.Roles)
	}
}
