package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/services"
)

func emailConfig() config.Email {
	return config.Email{
		Enabled:  true,
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		From:     "statewatch@example.com",
	}
}

func TestEmailSendRendersHeaders(t *testing.T) {
	channel := NewEmailChannel(emailConfig())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	channel.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	user := directory.User{ID: "u1", Email: "u1@example.com", Enabled: true}
	msg := Message{Subject: "Loan Application LOAN-0001: Approved", Body: "body text"}
	if err := channel.Send(context.Background(), user, msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if gotFrom != "statewatch@example.com" || len(gotTo) != 1 || gotTo[0] != "u1@example.com" {
		t.Fatalf("envelope = %q -> %v", gotFrom, gotTo)
	}
	rendered := string(gotMsg)
	if !strings.Contains(rendered, "Subject: Loan Application LOAN-0001: Approved\r\n") {
		t.Fatalf("missing subject header: %q", rendered)
	}
	if !strings.Contains(rendered, "\r\n\r\nbody text") {
		t.Fatalf("missing body: %q", rendered)
	}
}

func TestEmailSkipsUncontactableRecipients(t *testing.T) {
	channel := NewEmailChannel(emailConfig())
	channel.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail called for uncontactable recipient")
		return nil
	}

	noEmail := directory.User{ID: "u1", Enabled: true}
	if err := channel.Send(context.Background(), noEmail, Message{}); !errors.Is(err, ErrSkip) {
		t.Fatalf("no-email err = %v, want ErrSkip", err)
	}

	disabled := directory.User{ID: "u2", Email: "u2@example.com", Enabled: false}
	if err := channel.Send(context.Background(), disabled, Message{}); !errors.Is(err, ErrSkip) {
		t.Fatalf("disabled err = %v, want ErrSkip", err)
	}
}

func TestEmailFailureIsDeliveryError(t *testing.T) {
	channel := NewEmailChannel(emailConfig())
	channel.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	user := directory.User{ID: "u1", Email: "u1@example.com", Enabled: true}
	err := channel.Send(context.Background(), user, Message{Subject: "s"})
	if !errors.Is(err, services.ErrDelivery) {
		t.Fatalf("err = %v, want delivery error", err)
	}
}
