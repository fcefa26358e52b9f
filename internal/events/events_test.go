package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/events"
	"github.com/jonesrussell/content-engine/internal/logger"
)

func TestNew_ConnectFailure(t *testing.T) {
	t.Parallel()

	_, newErr := events.New(context.Background(), events.Options{Addr: "127.0.0.1:1"}, logger.NewNop())
	assert.Error(t, newErr)
}

func TestRedisAnnouncer_AnnounceRunCompleted(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	announcer, newErr := events.New(context.Background(), events.Options{Addr: mr.Addr()}, logger.NewNop())
	require.NoError(t, newErr)
	t.Cleanup(func() { _ = announcer.Close() })

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()}).Subscribe(context.Background(), events.RunCompletedChannel)
	t.Cleanup(func() { _ = sub.Close() })

	// Wait for the subscription before publishing.
	_, recvErr := sub.Receive(context.Background())
	require.NoError(t, recvErr)

	run := &domain.Run{
		ID:           "run-1",
		PipelineType: domain.PipelineFull,
		Status:       domain.RunSuccess,
		StartedAt:    time.Now().UTC(),
	}

	announcer.AnnounceRunCompleted(context.Background(), run)

	select {
	case msg := <-sub.Channel():
		var summary domain.RunSummary
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &summary))
		assert.Equal(t, "run-1", summary.ID)
		assert.Equal(t, domain.RunSuccess, summary.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no announcement received")
	}
}

func TestRedisAnnouncer_NilIsNoOp(t *testing.T) {
	t.Parallel()

	var announcer *events.RedisAnnouncer

	announcer.AnnounceRunCompleted(context.Background(), &domain.Run{ID: "run-2"})
	assert.NoError(t, announcer.Close())
}
