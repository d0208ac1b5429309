// Package system exposes operational diagnostics and database
// backup management.
package system

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Backup records one database dump and its lifecycle state.
type Backup struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	FilePath    string     `json:"file_path,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
	RequestedBy int64      `json:"requested_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Info is a point-in-time snapshot of process and dependency health.
type Info struct {
	GoVersion    string       `json:"go_version"`
	NumGoroutine int          `json:"num_goroutine"`
	NumCPU       int          `json:"num_cpu"`
	HeapAllocMB  uint64       `json:"heap_alloc_mb"`
	Uptime       string       `json:"uptime"`
	Database     DatabaseInfo `json:"database"`
	Redis        RedisInfo    `json:"redis"`
}

// DatabaseInfo reports connection-pool state.
type DatabaseInfo struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// RedisInfo reports client-pool state.
type RedisInfo struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

// Enqueuer submits backup and restore jobs to the queue.
// The asynq-backed job client satisfies this interface.
type Enqueuer interface {
	EnqueueBackup(ctx context.Context, backupID string) error
	EnqueueRestore(ctx context.Context, backupID string) error
}

// Service coordinates diagnostics and backup bookkeeping.
type Service struct {
	pool     *pgxpool.Pool
	cache    *redis.Client
	enqueuer Enqueuer
	started  time.Time
}

// NewService constructs the service.
func NewService(pool *pgxpool.Pool, cache *redis.Client, enqueuer Enqueuer) *Service {
	return &Service{pool: pool, cache: cache, enqueuer: enqueuer, started: time.Now()}
}

// Info collects the current snapshot.
func (s *Service) Info(ctx context.Context) Info {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := Info{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		HeapAllocMB:  mem.HeapAlloc / (1 << 20),
		Uptime:       time.Since(s.started).Round(time.Second).String(),
	}
	if s.pool != nil {
		stat := s.pool.Stat()
		info.Database = DatabaseInfo{
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
		}
	}
	if s.cache != nil {
		stat := s.cache.PoolStats()
		info.Redis = RedisInfo{
			Hits:       stat.Hits,
			Misses:     stat.Misses,
			TotalConns: stat.TotalConns,
			IdleConns:  stat.IdleConns,
		}
	}
	return info
}

const backupColumns = `id, status, COALESCE(file_path, ''), size_bytes, requested_by, created_at, completed_at`

// ListBackups returns all backup records, newest first.
func (s *Service) ListBackups(ctx context.Context) ([]Backup, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+backupColumns+` FROM backups ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Backup
	for rows.Next() {
		var b Backup
		if err := rows.Scan(&b.ID, &b.Status, &b.FilePath, &b.SizeBytes, &b.RequestedBy, &b.CreatedAt, &b.CompletedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// StartBackup records a pending backup and hands it to the worker.
func (s *Service) StartBackup(ctx context.Context, requestedBy int64) (Backup, error) {
	b := Backup{
		ID:          uuid.NewString(),
		Status:      "pending",
		RequestedBy: requestedBy,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO backups (id, status, size_bytes, requested_by, created_at)
		VALUES ($1, 'pending', 0, $2, now())
		RETURNING created_at`,
		b.ID, requestedBy,
	).Scan(&b.CreatedAt)
	if err != nil {
		return Backup{}, err
	}
	if err := s.enqueuer.EnqueueBackup(ctx, b.ID); err != nil {
		return Backup{}, err
	}
	return b, nil
}

// StartRestore hands a completed backup to the worker for restoration.
func (s *Service) StartRestore(ctx context.Context, backupID string) error {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM backups WHERE id = $1`, backupID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != "completed" {
		return ErrBackupNotReady
	}
	return s.enqueuer.EnqueueRestore(ctx, backupID)
}

// ErrBackupNotReady is returned when a restore targets a backup that has
// not finished successfully.
var ErrBackupNotReady = errors.New("system: backup not ready for restore")
