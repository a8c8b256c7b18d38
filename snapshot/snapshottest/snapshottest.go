// Package snapshottest provides a snapshot store backed by an in-process
// Redis server for tests.
package snapshottest

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"go-connect4/snapshot"
)

// New starts a miniredis server that is shut down when the test ends.
func New(tb testing.TB) (*snapshot.RedisStore, *miniredis.Miniredis) {
	tb.Helper()
	mr := miniredis.RunT(tb)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = client.Close() })
	return snapshot.NewRedisStore(client, snapshot.DefaultTTL), mr
}
