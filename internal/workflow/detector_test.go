package workflow_test

import (
	"errors"
	"testing"

	"statewatch/internal/record"
	"statewatch/internal/workflow"
)

func loanDefinition() *workflow.Definition {
	return &workflow.Definition{
		Name:       "loan-approval",
		RecordType: "LoanApplication",
		StateField: "workflow_state",
		Transitions: []workflow.Transition{
			{From: "Draft", To: "Pending Approval", Action: "Submit", Allowed: []string{"Loan Officer"}},
			{From: "Pending Approval", To: "Approved", Action: "Approve", Allowed: []string{"Loan Manager"}},
		},
	}
}

func newDetector(source workflow.Source) *workflow.Detector {
	return workflow.NewDetector(workflow.NewFieldResolver(source, "workflow_state", "status"), nil)
}

func loanRecord(state string) *record.Record {
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001", Owner: "u1"}
	rec.SetField("workflow_state", state)
	return rec
}

func TestDetectReportsTransition(t *testing.T) {
	detector := newDetector(workflow.StaticSource{"LoanApplication": loanDefinition()})

	before := loanRecord("Draft")
	snap := detector.Capture(before)

	after := loanRecord("Pending Approval")
	change, ok := detector.Detect(after, snap)
	if !ok {
		t.Fatal("expected a detected transition")
	}
	if change.From != "Draft" || change.To != "Pending Approval" || change.Field != "workflow_state" {
		t.Fatalf("unexpected change: %+v", change)
	}
}

func TestDetectIgnoresUnchangedState(t *testing.T) {
	detector := newDetector(workflow.StaticSource{"LoanApplication": loanDefinition()})
	snap := detector.Capture(loanRecord("Draft"))
	if _, ok := detector.Detect(loanRecord("Draft"), snap); ok {
		t.Fatal("unchanged state must not report a transition")
	}
}

func TestDetectIgnoresNewRecord(t *testing.T) {
	detector := newDetector(workflow.StaticSource{"LoanApplication": loanDefinition()})
	snap := detector.Capture(nil)
	if _, ok := detector.Detect(loanRecord("Draft"), snap); ok {
		t.Fatal("first save of a new record must not report a transition")
	}
}

func TestDetectIgnoresTransitionToEmpty(t *testing.T) {
	detector := newDetector(workflow.StaticSource{"LoanApplication": loanDefinition()})
	snap := detector.Capture(loanRecord("Draft"))
	if _, ok := detector.Detect(loanRecord(""), snap); ok {
		t.Fatal("transition into an empty state must not be reported")
	}
}

func TestDetectFallsBackToStatusField(t *testing.T) {
	// Definition declares a field the record type never carries.
	def := loanDefinition()
	def.StateField = "approval_stage"
	detector := newDetector(workflow.StaticSource{"LoanApplication": def})

	before := &record.Record{Type: "LoanApplication", Name: "LOAN-0002"}
	before.SetField("status", "Draft")
	snap := detector.Capture(before)

	after := &record.Record{Type: "LoanApplication", Name: "LOAN-0002"}
	after.SetField("status", "Pending Approval")

	change, ok := detector.Detect(after, snap)
	if !ok {
		t.Fatal("expected fallback field detection")
	}
	if change.Field != "status" {
		t.Fatalf("expected status field, got %q", change.Field)
	}
}

func TestDetectNoWorkflowUsesConventionalField(t *testing.T) {
	detector := newDetector(workflow.StaticSource{})

	before := &record.Record{Type: "Task", Name: "TASK-1"}
	before.SetField("status", "Open")
	snap := detector.Capture(before)

	after := &record.Record{Type: "Task", Name: "TASK-1"}
	after.SetField("status", "Closed")

	change, ok := detector.Detect(after, snap)
	if !ok {
		t.Fatal("expected detection on conventional field without a workflow")
	}
	if change.From != "Open" || change.To != "Closed" {
		t.Fatalf("unexpected change: %+v", change)
	}
}

func TestDetectNoResolvableFieldIsNoop(t *testing.T) {
	detector := newDetector(workflow.StaticSource{})
	before := &record.Record{Type: "Note", Name: "N-1"}
	before.SetField("body", "hello")
	snap := detector.Capture(before)

	after := &record.Record{Type: "Note", Name: "N-1"}
	after.SetField("body", "goodbye")

	if _, ok := detector.Detect(after, snap); ok {
		t.Fatal("record without any state field must be a no-op")
	}
}

type failingSource struct{ err error }

func (s failingSource) DefinitionFor(string) (*workflow.Definition, bool, error) {
	return nil, false, s.err
}

func TestDetectSourceFailureDegradesToNoop(t *testing.T) {
	detector := newDetector(failingSource{err: errors.New("definitions unavailable")})
	snap := detector.Capture(loanRecord("Draft"))
	if _, ok := detector.Detect(loanRecord("Pending Approval"), snap); ok {
		t.Fatal("source failure must not produce a transition")
	}
}

func TestSnapshotIsolatedFromLaterMutation(t *testing.T) {
	detector := newDetector(workflow.StaticSource{"LoanApplication": loanDefinition()})
	rec := loanRecord("Draft")
	snap := detector.Capture(rec)

	rec.SetField("workflow_state", "Pending Approval")
	change, ok := detector.Detect(rec, snap)
	if !ok {
		t.Fatal("expected transition after in-place mutation")
	}
	if change.From != "Draft" {
		t.Fatalf("snapshot leaked mutation: %+v", change)
	}
}
