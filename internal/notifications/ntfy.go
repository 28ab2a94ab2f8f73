package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nudge/internal/config"
	"nudge/internal/services"
)

const userAgent = "nudge/0.1.0"

// NewNtfy builds a push mirror when notifications.ntfy_topic is set. It
// returns nil when no topic is configured.
func NewNtfy(cfg *config.Config) Dispatcher {
	if cfg == nil {
		return nil
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return nil
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfy{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type ntfy struct {
	endpoint string
	client   *http.Client
}

func (n *ntfy) Send(ctx context.Context, msg Message) error {
	if n == nil || n.client == nil {
		return nil
	}
	body := strings.TrimSpace(msg.Text)
	if body == "" {
		body = msg.Subject
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransport, "ntfy", "build request", "", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if subject := strings.TrimSpace(msg.Subject); subject != "" {
		req.Header.Set("Title", subject)
	}
	req.Header.Set("Tags", "nudge,reminder")

	resp, err := n.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "ntfy", "send", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransport, "ntfy", "send",
			fmt.Sprintf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
