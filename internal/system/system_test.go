package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoSnapshotWithoutDependencies(t *testing.T) {
	svc := NewService(nil, nil, nil)

	info := svc.Info(context.Background())

	assert.NotEmpty(t, info.GoVersion)
	assert.Greater(t, info.NumGoroutine, 0)
	assert.Greater(t, info.NumCPU, 0)
	assert.NotEmpty(t, info.Uptime)
	assert.Zero(t, info.Database.MaxConns)
	assert.Zero(t, info.Redis.TotalConns)
}
