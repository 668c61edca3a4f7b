package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"statewatch/internal/workflow"
)

const definitionsTOML = `
[[workflow]]
name = "loan-approval"
record_type = "LoanApplication"
state_field = "workflow_state"

[[workflow.transition]]
from = "Draft"
to = "Pending Approval"
action = "Submit"
allowed = ["Loan Officer"]

[[workflow.transition]]
from = "Pending Approval"
to = "Approved"
action = "Approve"
allowed = ["Loan Manager", "Director"]

[[workflow]]
name = "leave"
record_type = "LeaveRequest"

[[workflow.transition]]
from = "Open"
to = "Approved"
allowed = ["HR Manager"]
`

func writeDefinitions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflows.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write definitions: %v", err)
	}
	return path
}

func TestFileSourceParsesDefinitions(t *testing.T) {
	source, err := workflow.NewFileSource(writeDefinitions(t, definitionsTOML))
	if err != nil {
		t.Fatalf("new file source: %v", err)
	}

	def, ok, err := source.DefinitionFor("LoanApplication")
	if err != nil || !ok {
		t.Fatalf("definition lookup: ok=%v err=%v", ok, err)
	}
	if def.StateField != "workflow_state" {
		t.Fatalf("unexpected state field: %q", def.StateField)
	}
	if len(def.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(def.Transitions))
	}

	tr, ok := def.Match("Pending Approval", "Approved")
	if !ok {
		t.Fatal("expected transition match")
	}
	if len(tr.Allowed) != 2 || tr.Allowed[0] != "Loan Manager" {
		t.Fatalf("unexpected allowed roles: %v", tr.Allowed)
	}

	if _, ok := def.Match("Approved", "Draft"); ok {
		t.Fatal("unexpected match for unconfigured transition")
	}
}

func TestFileSourceMissingFileIsEmpty(t *testing.T) {
	source, err := workflow.NewFileSource(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing definitions file must not error: %v", err)
	}
	if _, ok, _ := source.DefinitionFor("LoanApplication"); ok {
		t.Fatal("expected empty source")
	}
}

func TestFileSourceRejectsDuplicates(t *testing.T) {
	content := definitionsTOML + `
[[workflow]]
name = "dup"
record_type = "LoanApplication"
`
	if _, err := workflow.NewFileSource(writeDefinitions(t, content)); err == nil {
		t.Fatal("expected duplicate record type error")
	}
}

func TestFieldResolverCachesPerType(t *testing.T) {
	calls := 0
	source := countingSource{calls: &calls, def: &workflow.Definition{RecordType: "LeaveRequest"}}
	resolver := workflow.NewFieldResolver(source, "workflow_state", "status")

	for i := 0; i < 3; i++ {
		resolution, err := resolver.Resolve("LeaveRequest")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !resolution.HasWorkflow || resolution.Declared != "workflow_state" {
			t.Fatalf("unexpected resolution: %+v", resolution)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one source lookup, got %d", calls)
	}
}

type countingSource struct {
	calls *int
	def   *workflow.Definition
}

func (s countingSource) DefinitionFor(recordType string) (*workflow.Definition, bool, error) {
	*s.calls++
	if s.def != nil && s.def.RecordType == recordType {
		return s.def, true, nil
	}
	return nil, false, nil
}
