package notify

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"statewatch/internal/record"
	"statewatch/internal/workflow"
)

// Message is one composed notification, shared by every channel for a
// given state change. Channels decide how much of it to render.
type Message struct {
	Subject string
	Body    string
	Ref     record.Ref
	From    string
	To      string
	Link    string
}

// Compose renders the subject and body for a detected state change.
// baseURL, when set, yields a record link appended to the body.
func Compose(rec *record.Record, change workflow.StateChange, baseURL string) Message {
	typeLabel := Humanize(rec.Type)
	subject := fmt.Sprintf("%s %s: %s", typeLabel, rec.Name, change.To)

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s moved from %s to %s.", typeLabel, rec.Name, stateLabel(change.From), change.To)

	msg := Message{
		Subject: subject,
		Ref:     rec.Ref(),
		From:    change.From,
		To:      change.To,
	}
	if baseURL != "" {
		msg.Link = fmt.Sprintf("%s/%s/%s", baseURL, rec.Type, rec.Name)
		fmt.Fprintf(&body, "\n\n%s", msg.Link)
	}
	msg.Body = body.String()
	return msg
}

func stateLabel(state string) string {
	if state == "" {
		return "(none)"
	}
	return state
}

// Humanize turns identifiers like "LoanApplication" or
// "leave_request" into "Loan Application" / "Leave Request".
func Humanize(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return identifier
	}

	var words strings.Builder
	prev := rune(0)
	for _, r := range identifier {
		switch {
		case r == '_' || r == '-':
			words.WriteRune(' ')
		case unicode.IsUpper(r) && prev != 0 && !unicode.IsUpper(prev) && prev != ' ':
			words.WriteRune(' ')
			words.WriteRune(r)
		default:
			words.WriteRune(r)
		}
		prev = r
	}
	// cases.Caser carries internal state, so build one per call.
	caser := cases.Title(language.English)
	return caser.String(strings.Join(strings.Fields(words.String()), " "))
}
