package notifications_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wneessen/go-mail"

	"nudge/internal/notifications"
	"nudge/internal/services"
	"nudge/internal/testsupport"
)

type fakeTransport struct {
	dials int
	sent  []*mail.Msg
	err   error
}

func (f *fakeTransport) Deliver(_ context.Context, msg *mail.Msg) error {
	f.dials++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestEmailMissingSettingsNeverDials(t *testing.T) {
	tests := []struct {
		name                        string
		sender, password, recipient string
	}{
		{name: "no sender", password: "pw", recipient: "to@example.com"},
		{name: "no password", sender: "from@example.com", recipient: "to@example.com"},
		{name: "no recipient", sender: "from@example.com", password: "pw"},
		{name: "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithEmail(tt.sender, tt.password, tt.recipient))
			transport := &fakeTransport{}
			email := notifications.NewEmail(cfg, notifications.WithTransport(transport))

			err := email.Send(context.Background(), notifications.Message{Subject: "hi", Text: "hello"})
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if transport.dials != 0 {
				t.Fatalf("expected zero dials, got %d", transport.dials)
			}
		})
	}
}

func TestEmailSendsMultipartMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	transport := &fakeTransport{}
	email := notifications.NewEmail(cfg, notifications.WithTransport(transport))

	err := email.Send(context.Background(), notifications.Message{
		Subject: "Good Morning",
		HTML:    "<p>Keep going</p>",
		Text:    "Keep going",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if transport.dials != 1 || len(transport.sent) != 1 {
		t.Fatalf("expected one delivery, got dials=%d sent=%d", transport.dials, len(transport.sent))
	}
	msg := transport.sent[0]
	if got := msg.GetGenHeader(mail.HeaderSubject); len(got) != 1 || got[0] != "Good Morning" {
		t.Fatalf("unexpected subject header %v", got)
	}
	to := msg.GetToString()
	if len(to) != 1 || !strings.Contains(to[0], "founder@example.com") {
		t.Fatalf("unexpected recipients %v", to)
	}
	if len(msg.GetAttachments()) != 0 {
		t.Fatalf("expected no attachments")
	}
}

func TestEmailAttachesExistingFileOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	transport := &fakeTransport{}
	email := notifications.NewEmail(cfg, notifications.WithTransport(transport))

	video := filepath.Join(t.TempDir(), "tesphase_final_20260501.mp4")
	testsupport.WriteFile(t, video, 128)

	if err := email.Send(context.Background(), notifications.Message{Subject: "with video", Text: "x", Attachment: video}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := len(transport.sent[0].GetAttachments()); got != 1 {
		t.Fatalf("expected one attachment, got %d", got)
	}

	if err := os.Remove(video); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := email.Send(context.Background(), notifications.Message{Subject: "no video", Text: "x", Attachment: video}); err != nil {
		t.Fatalf("Send without attachment: %v", err)
	}
	if got := len(transport.sent[1].GetAttachments()); got != 0 {
		t.Fatalf("expected missing attachment to be skipped, got %d", got)
	}
}

func TestEmailTransportFailureIsWrapped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	transport := &fakeTransport{err: errors.New("535 authentication failed")}
	email := notifications.NewEmail(cfg, notifications.WithTransport(transport))

	err := email.Send(context.Background(), notifications.Message{Subject: "x", Text: "y"})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "535") {
		t.Fatalf("expected cause in error, got %v", err)
	}
	if transport.dials != 1 {
		t.Fatalf("expected exactly one attempt, got %d", transport.dials)
	}
}
