package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BackupRunner executes database backup and restore tasks. Dumps are
// written as pg_dump custom-format archives under dir, one file per
// backup record.
type BackupRunner struct {
	pool   *pgxpool.Pool
	dsn    string
	dir    string
	logger *slog.Logger
}

// NewBackupRunner constructs the runner.
func NewBackupRunner(pool *pgxpool.Pool, dsn, dir string, logger *slog.Logger) *BackupRunner {
	return &BackupRunner{pool: pool, dsn: dsn, dir: dir, logger: logger}
}

// HandleBackup processes TaskTypeDatabaseBackup tasks.
func (b *BackupRunner) HandleBackup(ctx context.Context, t *asynq.Task) error {
	var payload BackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.BackupID == "" {
		return asynq.SkipRetry
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}
	path := b.archivePath(payload.BackupID)

	cmd := exec.CommandContext(ctx, "pg_dump", "--format=custom", "--file="+path, "--dbname="+b.dsn)
	out, err := cmd.CombinedOutput()
	if err != nil {
		b.logger.Error("pg_dump failed",
			slog.String("backup_id", payload.BackupID),
			slog.String("output", string(out)),
			slog.Any("error", err))
		b.markFailed(ctx, payload.BackupID)
		return err
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	_, err = b.pool.Exec(ctx, `
		UPDATE backups
		SET status = 'completed', file_path = $2, size_bytes = $3, completed_at = now()
		WHERE id = $1`,
		payload.BackupID, path, size)
	if err != nil {
		return err
	}
	b.logger.Info("backup completed",
		slog.String("backup_id", payload.BackupID),
		slog.Int64("size_bytes", size))
	return nil
}

// HandleRestore processes TaskTypeDatabaseRestore tasks.
func (b *BackupRunner) HandleRestore(ctx context.Context, t *asynq.Task) error {
	var payload RestorePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var path string
	err := b.pool.QueryRow(ctx, `
		SELECT file_path FROM backups WHERE id = $1 AND status = 'completed'`,
		payload.BackupID).Scan(&path)
	if errors.Is(err, pgx.ErrNoRows) {
		b.logger.Warn("restore requested for unknown or incomplete backup",
			slog.String("backup_id", payload.BackupID))
		return asynq.SkipRetry
	}
	if err != nil {
		return err
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "pg_restore", "--clean", "--if-exists", "--dbname="+b.dsn, path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		b.logger.Error("pg_restore failed",
			slog.String("backup_id", payload.BackupID),
			slog.String("output", string(out)),
			slog.Any("error", err))
		return err
	}
	b.logger.Info("restore completed",
		slog.String("backup_id", payload.BackupID),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (b *BackupRunner) archivePath(backupID string) string {
	return filepath.Join(b.dir, backupID+".dump")
}

func (b *BackupRunner) markFailed(ctx context.Context, backupID string) {
	if _, err := b.pool.Exec(ctx, `
		UPDATE backups SET status = 'failed', completed_at = now() WHERE id = $1`,
		backupID); err != nil {
		b.logger.Error("mark backup failed", slog.String("backup_id", backupID), slog.Any("error", err))
	}
}
