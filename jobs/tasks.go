package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueSystem carries long-running maintenance jobs such as backups.
	QueueSystem = "system"

	// TaskTypeContactNotify is the task type for notifying staff about a
	// new contact-form message.
	TaskTypeContactNotify = "contact:notify"
	// TaskTypeDatabaseBackup is the task type for dumping the database.
	TaskTypeDatabaseBackup = "db:backup"
	// TaskTypeDatabaseRestore is the task type for restoring a dump.
	TaskTypeDatabaseRestore = "db:restore"
)

// ContactNotifyPayload identifies the message staff should be told about.
type ContactNotifyPayload struct {
	MessageID   int64  `json:"message_id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
}

// NewContactNotifyTask constructs an Asynq task.
func NewContactNotifyTask(payload ContactNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeContactNotify, data), nil
}

// BackupPayload names the backup record the worker should produce.
type BackupPayload struct {
	BackupID string `json:"backup_id"`
}

// NewBackupTask constructs an Asynq task.
func NewBackupTask(payload BackupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDatabaseBackup, data), nil
}

// RestorePayload names the backup record to restore from.
type RestorePayload struct {
	BackupID string `json:"backup_id"`
}

// NewRestoreTask constructs an Asynq task.
func NewRestoreTask(payload RestorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDatabaseRestore, data), nil
}
