package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nudge/internal/notifications"
	"nudge/internal/services"
	"nudge/internal/testsupport"
)

func TestNewNtfyNilWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	if d := notifications.NewNtfy(cfg); d != nil {
		t.Fatalf("expected nil dispatcher, got %T", d)
	}
}

func TestNtfyPostsSubjectAndText(t *testing.T) {
	var gotTitle, gotBody, gotTags string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	d := notifications.NewNtfy(cfg)
	if err := d.Send(context.Background(), notifications.Message{Subject: "Evening Reminder", Text: "Log your progress"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotTitle != "Evening Reminder" || gotBody != "Log your progress" || gotTags != "nudge,reminder" {
		t.Fatalf("unexpected request title=%q body=%q tags=%q", gotTitle, gotBody, gotTags)
	}
}

func TestNtfyReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	err := notifications.NewNtfy(cfg).Send(context.Background(), notifications.Message{Subject: "x"})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

type stubDispatcher struct {
	calls int
	err   error
}

func (s *stubDispatcher) Send(context.Context, notifications.Message) error {
	s.calls++
	return s.err
}

func TestFanoutReportsPrimaryResult(t *testing.T) {
	primary := &stubDispatcher{}
	mirror := &stubDispatcher{err: errors.New("mirror down")}
	fan := notifications.NewFanout(primary, nil, mirror, nil)

	if err := fan.Send(context.Background(), notifications.Message{Subject: "x"}); err != nil {
		t.Fatalf("mirror failure must not surface: %v", err)
	}
	if primary.calls != 1 || mirror.calls != 1 {
		t.Fatalf("expected both dispatchers called once, got %d/%d", primary.calls, mirror.calls)
	}

	primary.err = errors.New("smtp down")
	if err := fan.Send(context.Background(), notifications.Message{Subject: "x"}); err == nil {
		t.Fatal("expected primary failure to surface")
	}
	if mirror.calls != 2 {
		t.Fatalf("mirror should still be attempted, got %d", mirror.calls)
	}
}
