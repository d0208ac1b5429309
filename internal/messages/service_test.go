package messages

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	inserted []Message
	err      error
}

func (s *stubRepo) Insert(_ context.Context, m Message) (Message, error) {
	if s.err != nil {
		return Message{}, s.err
	}
	m.ID = int64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, m)
	return m, nil
}

func (s *stubRepo) List(context.Context) ([]Message, error)     { return s.inserted, nil }
func (s *stubRepo) Get(context.Context, int64) (Message, error) { return Message{}, nil }
func (s *stubRepo) Delete(context.Context, int64) error         { return nil }

type stubNotifier struct {
	calls int
	last  int64
	err   error
}

func (s *stubNotifier) EnqueueContactNotify(_ context.Context, messageID int64, _, _, _ string) error {
	s.calls++
	s.last = messageID
	return s.err
}

func TestSubmitNormalizesAndNotifies(t *testing.T) {
	repo := &stubRepo{}
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, slog.Default())

	stored, err := svc.Submit(context.Background(), Message{
		Name:    "  Jane Visitor ",
		Email:   " Jane@Example.COM ",
		Subject: " Hello ",
		Body:    "I would like a quote.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Visitor", stored.Name)
	assert.Equal(t, "jane@example.com", stored.Email)
	assert.Equal(t, "Hello", stored.Subject)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, stored.ID, notifier.last)
}

func TestSubmitNotificationFailureIsNotFatal(t *testing.T) {
	repo := &stubRepo{}
	notifier := &stubNotifier{err: errors.New("queue down")}
	svc := NewService(repo, notifier, slog.Default())

	_, err := svc.Submit(context.Background(), Message{Name: "A", Email: "a@b.c", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Len(t, repo.inserted, 1)
}

func TestSubmitStoreFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, slog.Default())

	_, err := svc.Submit(context.Background(), Message{Name: "A", Email: "a@b.c", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Zero(t, notifier.calls, "no notification for unsaved message")
}

func TestSubmitWithoutNotifier(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, slog.Default())

	_, err := svc.Submit(context.Background(), Message{Name: "A", Email: "a@b.c", Subject: "s", Body: "b"})
	require.NoError(t, err)
}
