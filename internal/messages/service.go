package messages

import (
	"context"
	"log/slog"
	"strings"
)

// Notifier enqueues a notification for a newly received message.
// The asynq-backed job client satisfies this interface.
type Notifier interface {
	EnqueueContactNotify(ctx context.Context, messageID int64, senderName, senderEmail, subject string) error
}

// Service coordinates intake and administration of contact messages.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the service. notifier may be nil, in which case
// no notification is sent after intake.
func NewService(repo RepositoryPort, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Submit stores an inbound message and enqueues a notification.
// Notification failures are logged, not surfaced; the message is already
// persisted and the sender should see success.
func (s *Service) Submit(ctx context.Context, m Message) (Message, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Subject = strings.TrimSpace(m.Subject)

	stored, err := s.repo.Insert(ctx, m)
	if err != nil {
		return Message{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueContactNotify(ctx, stored.ID, stored.Name, stored.Email, stored.Subject); err != nil {
			s.logger.Error("enqueue contact notification", "message_id", stored.ID, "error", err)
		}
	}
	return stored, nil
}

// List returns all messages.
func (s *Service) List(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx)
}

// Get returns one message.
func (s *Service) Get(ctx context.Context, id int64) (Message, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a message.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
