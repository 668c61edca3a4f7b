package notify_test

import (
	"strings"
	"testing"

	"statewatch/internal/notify"
	"statewatch/internal/record"
	"statewatch/internal/workflow"
)

func TestHumanize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LoanApplication", "Loan Application"},
		{"leave_request", "Leave Request"},
		{"purchase-order", "Purchase Order"},
		{"Task", "Task"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := notify.Humanize(tc.in); got != tc.want {
			t.Errorf("Humanize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestComposeSubjectAndBody(t *testing.T) {
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001"}
	change := workflow.StateChange{From: "Draft", To: "Pending Approval", Field: "workflow_state"}

	msg := notify.Compose(rec, change, "")
	if msg.Subject != "Loan Application LOAN-0001: Pending Approval" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "moved from Draft to Pending Approval") {
		t.Fatalf("body = %q", msg.Body)
	}
	if msg.Link != "" {
		t.Fatalf("unexpected link: %q", msg.Link)
	}
}

func TestComposeAppendsRecordLink(t *testing.T) {
	rec := &record.Record{Type: "LoanApplication", Name: "LOAN-0001"}
	change := workflow.StateChange{From: "Draft", To: "Approved", Field: "workflow_state"}

	msg := notify.Compose(rec, change, "https://erp.example.com/app")
	want := "https://erp.example.com/app/LoanApplication/LOAN-0001"
	if msg.Link != want {
		t.Fatalf("link = %q, want %q", msg.Link, want)
	}
	if !strings.Contains(msg.Body, want) {
		t.Fatalf("body missing link: %q", msg.Body)
	}
}

func TestComposeLabelsAbsentOrigin(t *testing.T) {
	rec := &record.Record{Type: "Task", Name: "T-1"}
	change := workflow.StateChange{From: "", To: "Open", Field: "status"}

	msg := notify.Compose(rec, change, "")
	if !strings.Contains(msg.Body, "moved from (none) to Open") {
		t.Fatalf("body = %q", msg.Body)
	}
}
