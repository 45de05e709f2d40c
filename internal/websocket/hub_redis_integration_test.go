//go:build integration

package websocket

import (
	"context"
	"testing"
	"time"

	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/events"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestHubFansOutAcrossInstances(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	runHub := func() *Hub {
		rdb := redis.NewClient(opts)
		t.Cleanup(func() { _ = rdb.Close() })
		hub := NewHub(rdb, logger.NewNopLogger())
		hubCtx, cancel := context.WithCancel(ctx)
		t.Cleanup(cancel)
		go hub.Run(hubCtx)
		return hub
	}

	sender := runHub()
	receiver := runHub()
	alice := attach(t, receiver, "alice")

	// The receiver's subscription is asynchronous, so keep publishing until
	// a frame arrives.
	var frame []byte
	require.Eventually(t, func() bool {
		require.NoError(t, sender.Publish(ctx, events.NewMessageAdded("alice", "m1", "Cross-instance hello", true, nil)))
		select {
		case frame = <-alice.Send:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 50*time.Millisecond)

	require.Contains(t, string(frame), "Cross-instance hello")
}
