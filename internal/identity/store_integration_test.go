//go:build integration

package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisURL := fmt.Sprintf("redis://%s:%s", host, port.Port())

	cleanup := func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	}

	return redisURL, cleanup
}

func TestRedisStore_SharedSessionAcrossHolders(t *testing.T) {
	redisURL, cleanup := setupRedis(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	first, err := NewRedisStore(opts, "it")
	require.NoError(t, err)
	defer first.Close()

	h, err := Open(ctx, first, KeyUser, discardLogger())
	require.NoError(t, err)
	require.NoError(t, h.Set(ctx, "u-shared"))

	// A second terminal opening the same namespace sees the session
	second, err := NewRedisStore(opts, "it")
	require.NoError(t, err)
	defer second.Close()

	other, err := Open(ctx, second, KeyUser, discardLogger())
	require.NoError(t, err)
	token, ok := other.Current()
	assert.True(t, ok)
	assert.Equal(t, "u-shared", token)

	require.NoError(t, other.Clear(ctx))
	_, err = first.Load(ctx, KeyUser)
	assert.ErrorIs(t, err, ErrNoValue)
}
