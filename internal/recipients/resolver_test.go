package recipients_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/recipients"
	"statewatch/internal/record"
	"statewatch/internal/workflow"
)

// fakeDirectory serves canned users without a database.
type fakeDirectory struct {
	users     map[string]directory.User
	employees map[string]string
	roleErr   error
	userErr   error
}

func (f *fakeDirectory) UsersWithRole(_ context.Context, role string) ([]directory.User, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	var members []directory.User
	for _, id := range sortedIDs(f.users) {
		user := f.users[id]
		if user.HasRole(role) {
			members = append(members, user)
		}
	}
	return members, nil
}

func (f *fakeDirectory) User(_ context.Context, id string) (*directory.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeDirectory) EmployeeUser(ctx context.Context, employeeID string) (*directory.User, error) {
	userID, ok := f.employees[employeeID]
	if !ok {
		return nil, nil
	}
	return f.User(ctx, userID)
}

func sortedIDs(users map[string]directory.User) []string {
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func notifSettings() config.Notifications {
	return config.Notifications{
		BroadRoles:         []string{"Employee"},
		EmployeeLinkFields: []string{"employee", "assigned_employee", "assigned_to"},
	}
}

func loanDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: map[string]directory.User{
			"u1": {ID: "u1", Email: "u1@example.com", Enabled: true, Roles: []string{"Employee"}},
			"u2": {ID: "u2", Email: "u2@example.com", Enabled: true, Roles: []string{"Loan Officer", "Employee"}},
			"u3": {ID: "u3", Email: "u3@example.com", Enabled: true, Roles: []string{"Loan Officer", "Employee"}},
			"u4": {ID: "u4", Email: "u4@example.com", Enabled: true, Roles: []string{"Employee"}},
		},
		employees: map[string]string{"EMP-0001": "u4"},
	}
}

func TestResolveOwnerPlusAllowedRole(t *testing.T) {
	resolver := recipients.NewResolver(loanDirectory(), notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}
	transition := &workflow.Transition{
		From:    "Draft",
		To:      "Pending Approval",
		Allowed: []string{"Loan Officer"},
	}

	set := resolver.Resolve(context.Background(), rec, transition)
	want := []string{"u1", "u2", "u3"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
}

func TestBroadRoleNeverExpandsMembership(t *testing.T) {
	dir := loanDirectory()
	resolver := recipients.NewResolver(dir, notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}
	rec.SetField("employee", "EMP-0001")
	transition := &workflow.Transition{
		From:    "Pending Approval",
		To:      "Approved",
		Allowed: []string{"Employee"},
	}

	set := resolver.Resolve(context.Background(), rec, transition)
	want := []string{"u1", "u4"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
	// u2 and u3 hold Employee but are not linked to the record.
	if set.Contains("u2") || set.Contains("u3") {
		t.Fatal("broad role expanded to full membership")
	}
}

func TestBroadRoleMatchIsCaseless(t *testing.T) {
	resolver := recipients.NewResolver(loanDirectory(), notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}
	rec.SetField("assigned_to", "EMP-0001")
	transition := &workflow.Transition{Allowed: []string{"employee"}}

	set := resolver.Resolve(context.Background(), rec, transition)
	want := []string{"u1", "u4"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
}

func TestExtraRecipientEntriesContribute(t *testing.T) {
	dir := loanDirectory()
	dir.users["u5"] = directory.User{ID: "u5", Enabled: true, Roles: []string{"Auditor"}}
	resolver := recipients.NewResolver(dir, notifSettings(), nil)

	rec := &record.Record{
		Type:  "LoanApplication",
		Name:  "LOAN-0001",
		Owner: "u1",
		ExtraRecipients: []record.ExtraRecipient{
			{Role: "Auditor"},
		},
	}

	set := resolver.Resolve(context.Background(), rec, nil)
	want := []string{"u1", "u5"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
}

func TestUnmatchedTransitionStillNotifiesOwner(t *testing.T) {
	resolver := recipients.NewResolver(loanDirectory(), notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}

	set := resolver.Resolve(context.Background(), rec, nil)
	if got := set.IDs(); !reflect.DeepEqual(got, []string{"u1"}) {
		t.Fatalf("recipients = %v, want [u1]", got)
	}
}

func TestResolveDeduplicatesAcrossSources(t *testing.T) {
	// Owner also holds the allowed role; one entry, not two.
	dir := loanDirectory()
	resolver := recipients.NewResolver(dir, notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u2"}
	transition := &workflow.Transition{Allowed: []string{"Loan Officer"}}

	set := resolver.Resolve(context.Background(), rec, transition)
	want := []string{"u2", "u3"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver := recipients.NewResolver(loanDirectory(), notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}
	transition := &workflow.Transition{Allowed: []string{"Loan Officer"}}

	first := resolver.Resolve(context.Background(), rec, transition).IDs()
	second := resolver.Resolve(context.Background(), rec, transition).IDs()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolution not stable: %v vs %v", first, second)
	}
}

func TestRoleExpansionFailureDegradesToEmpty(t *testing.T) {
	dir := loanDirectory()
	dir.roleErr = errors.New("directory unavailable")
	resolver := recipients.NewResolver(dir, notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}
	transition := &workflow.Transition{Allowed: []string{"Loan Officer"}}

	set := resolver.Resolve(context.Background(), rec, transition)
	if got := set.IDs(); !reflect.DeepEqual(got, []string{"u1"}) {
		t.Fatalf("recipients = %v, want owner only", got)
	}
}

func TestUnknownOwnerSkipped(t *testing.T) {
	resolver := recipients.NewResolver(loanDirectory(), notifSettings(), nil)
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "ghost"}
	transition := &workflow.Transition{Allowed: []string{"Loan Officer"}}

	set := resolver.Resolve(context.Background(), rec, transition)
	want := []string{"u2", "u3"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
}
