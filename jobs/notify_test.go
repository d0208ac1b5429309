package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactNotifyRoundTrip(t *testing.T) {
	task, err := NewContactNotifyTask(ContactNotifyPayload{
		MessageID:   42,
		SenderName:  "Jane Visitor",
		SenderEmail: "jane@example.com",
		Subject:     "Quote request",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeContactNotify, task.Type())

	handler := NewContactNotifier("info@lumina.local", slog.Default())
	assert.NoError(t, handler.Handle(context.Background(), task))
}

func TestContactNotifyBadPayloadSkipsRetry(t *testing.T) {
	handler := NewContactNotifier("info@lumina.local", slog.Default())

	err := handler.Handle(context.Background(), asynq.NewTask(TaskTypeContactNotify, []byte("{broken")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
