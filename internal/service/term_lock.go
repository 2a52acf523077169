package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/models"
)

// releaseScript deletes the lock only when the stored token matches, so a
// lock that expired and was re-acquired elsewhere is never released by the
// previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TermLock serialises generation runs per (academic year, semester) across
// all instances using a redis SETNX lease.
type TermLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTermLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TermLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermLock{client: client, ttl: ttl, logger: logger}
}

func termLockKey(academicYear string, semester models.Semester) string {
	return fmt.Sprintf("timetable:generation:lock:%s:%d", academicYear, semester)
}

// Acquire takes the term lease. ok is false when another run holds it. The
// returned release func is safe to call exactly once and logs instead of
// failing when redis is unreachable.
func (l *TermLock) Acquire(ctx context.Context, academicYear string, semester models.Semester) (func(), bool, error) {
	key := termLockKey(academicYear, semester)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire term lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Sugar().Warnw("failed to release term lock", "key", key, "error", err)
		}
	}
	return release, true, nil
}
