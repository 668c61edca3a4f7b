package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/notify"
	"statewatch/internal/services"
)

func TestPushChannelDisabledWithoutTopic(t *testing.T) {
	if channel := notify.NewPushChannel(config.Push{}); channel != nil {
		t.Fatal("expected nil channel when no topic configured")
	}
}

func TestPushSendSetsHeaders(t *testing.T) {
	var gotTitle, gotClick, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotClick = r.Header.Get("Click")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := notify.NewPushChannel(config.Push{Topic: server.URL})
	user := directory.User{ID: "u1", FullName: "Avery Banks", Enabled: true}
	msg := notify.Message{
		Subject: "Loan Application LOAN-0001: Approved",
		Body:    "moved from Draft to Approved",
		Link:    "https://erp.example.com/app/LoanApplication/LOAN-0001",
	}

	if err := channel.Send(context.Background(), user, msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotTitle != msg.Subject {
		t.Fatalf("title = %q", gotTitle)
	}
	if gotClick != msg.Link {
		t.Fatalf("click = %q", gotClick)
	}
	if !strings.Contains(gotBody, "Avery Banks") || !strings.Contains(gotBody, msg.Body) {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestPushSendSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	channel := notify.NewPushChannel(config.Push{Topic: server.URL})
	user := directory.User{ID: "u1", Enabled: true}
	err := channel.Send(context.Background(), user, notify.Message{Subject: "s"})
	if !errors.Is(err, services.ErrDelivery) {
		t.Fatalf("err = %v, want delivery error", err)
	}
}

func TestPushSkipsDisabledUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("request sent for disabled user")
	}))
	defer server.Close()

	channel := notify.NewPushChannel(config.Push{Topic: server.URL})
	disabled := directory.User{ID: "u1", Enabled: false}
	if err := channel.Send(context.Background(), disabled, notify.Message{}); !errors.Is(err, notify.ErrSkip) {
		t.Fatalf("err = %v, want ErrSkip", err)
	}
}
