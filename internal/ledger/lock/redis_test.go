package lock

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisLockWithoutClient(t *testing.T) {
	var l *Redis
	_, err := l.Lock(context.Background(), "a")
	assert.Error(t, err)
}

func TestRedisLockSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedis(client, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := l.Lock(ctx, "tenant:customer")
	assert.Error(t, err)

	_, err = l.Lock(ctx, "")
	assert.Error(t, err)
}
