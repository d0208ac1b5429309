package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// ContactNotifier handles TaskTypeContactNotify tasks by sending a
// notification email to the site inbox.
type ContactNotifier struct {
	inbox  string
	logger *slog.Logger
}

// NewContactNotifier constructs the handler. inbox is the staff address
// that should receive new-message notifications.
func NewContactNotifier(inbox string, logger *slog.Logger) *ContactNotifier {
	return &ContactNotifier{inbox: inbox, logger: logger}
}

// Handle processes a contact-notify task.
func (n *ContactNotifier) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ContactNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	fmt.Printf("[jobs] notify %s about message %d from %s <%s> subject=%s\n",
		n.inbox, payload.MessageID, payload.SenderName, payload.SenderEmail, payload.Subject)
	n.logger.Info("contact notification sent",
		slog.Int64("message_id", payload.MessageID),
		slog.String("inbox", n.inbox))
	return nil
}
