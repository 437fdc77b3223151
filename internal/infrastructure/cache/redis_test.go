package cache

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/config"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("unreachable server returns error", func(t *testing.T) {
		// grab a free port and release it so nothing listens there
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		client, err := NewRedisClient(&config.RedisConfig{Host: "127.0.0.1", Port: port})

		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to redis")
	})
}
