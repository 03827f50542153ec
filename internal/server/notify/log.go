package notify

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/logging"
)

// LogNotifier writes messages to the log instead of delivering them. It is
// meant for local development, where the logged body stands in for the
// inbox.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify.log")}
}

func (n *LogNotifier) Deliver(ctx context.Context, msg Message) error {
	n.logger.Debug(ctx, "outbound message",
		"channel", string(msg.Channel), "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	n.logger.Info(ctx, "message logged", "channel", string(msg.Channel), "to", msg.To)
	return nil
}
