// Package events announces completed pipeline runs on a Redis channel
// so downstream services can react without polling the run history.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// RunCompletedChannel carries run-completed announcements.
const RunCompletedChannel = "content-engine:runs:completed"

// Announcer publishes run lifecycle events.
type Announcer interface {
	AnnounceRunCompleted(ctx context.Context, run *domain.Run)
	Close() error
}

// RedisAnnouncer publishes run summaries to Redis pub/sub. A nil
// RedisAnnouncer is a safe no-op, so callers never need to branch on
// whether Redis is configured.
type RedisAnnouncer struct {
	client *redis.Client
	logger logger.Logger
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options, log logger.Logger) (*RedisAnnouncer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, pingErr)
	}

	return &RedisAnnouncer{client: client, logger: log}, nil
}

// AnnounceRunCompleted publishes the run summary. Publish failures are
// logged and swallowed; announcements never fail a run.
func (a *RedisAnnouncer) AnnounceRunCompleted(ctx context.Context, run *domain.Run) {
	if a == nil {
		return
	}

	payload, marshalErr := json.Marshal(run.Summary())
	if marshalErr != nil {
		a.logger.Warn("marshal run announcement failed", logger.Error(marshalErr))
		return
	}

	if pubErr := a.client.Publish(ctx, RunCompletedChannel, payload).Err(); pubErr != nil {
		a.logger.Warn("publish run announcement failed",
			logger.String("run_id", run.ID),
			logger.Error(pubErr),
		)
		return
	}

	a.logger.Debug("run announced",
		logger.String("run_id", run.ID),
		logger.String("status", string(run.Status)),
	)
}

// Ping reports whether the Redis connection is healthy.
func (a *RedisAnnouncer) Ping(ctx context.Context) bool {
	if a == nil {
		return false
	}
	return a.client.Ping(ctx).Err() == nil
}

// Close releases the Redis connection.
func (a *RedisAnnouncer) Close() error {
	if a == nil {
		return nil
	}
	return a.client.Close()
}
