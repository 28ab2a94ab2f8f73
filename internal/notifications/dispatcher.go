package notifications

import (
	"context"
	"errors"
	"log/slog"

	"nudge/internal/logging"
)

// Message is a composed reminder ready for delivery.
type Message struct {
	Subject    string
	HTML       string
	Text       string
	Attachment string
}

// Dispatcher delivers a message. A nil error means the message was accepted.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// Fanout sends to a primary dispatcher and best-effort mirrors.
type Fanout struct {
	primary Dispatcher
	mirrors []Dispatcher
	logger  *slog.Logger
}

// NewFanout wraps primary with zero or more mirrors. Nil mirrors are skipped.
func NewFanout(primary Dispatcher, logger *slog.Logger, mirrors ...Dispatcher) *Fanout {
	if logger == nil {
		logger = logging.NewNop()
	}
	kept := make([]Dispatcher, 0, len(mirrors))
	for _, m := range mirrors {
		if m != nil {
			kept = append(kept, m)
		}
	}
	return &Fanout{primary: primary, mirrors: kept, logger: logging.NewComponentLogger(logger, "notifications")}
}

// Send delivers through the primary and then every mirror. Mirror failures
// are logged and do not change the returned error.
func (f *Fanout) Send(ctx context.Context, msg Message) error {
	if f == nil || f.primary == nil {
		return errors.New("fanout has no primary dispatcher")
	}
	err := f.primary.Send(ctx, msg)
	for _, mirror := range f.mirrors {
		if mirrorErr := mirror.Send(ctx, msg); mirrorErr != nil {
			logging.WarnWithContext(logging.WithContext(ctx, f.logger), "notification mirror failed", "notification_mirror_failed",
				logging.Error(mirrorErr),
				logging.String("subject", msg.Subject),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network reachability"),
				logging.String(logging.FieldImpact, "push mirror missed this reminder; email delivery unaffected"),
			)
		}
	}
	return err
}
