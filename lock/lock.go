// Package lock provides short-lived locks shared by every instance of the
// service.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/irsalhamdi/e-learning/random"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Only the holder's token may release a key.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

const releaseTimeout = 2 * time.Second

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewRedis returns a locker whose keys expire after ttl even when their
// holder never releases them.
func NewRedis(client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Redis {
	return &Redis{client: client, ttl: ttl, log: log}
}

func (l *Redis) Lock(ctx context.Context, key string) (unlock func(), ok bool, err error) {
	token, err := random.Token(24)
	if err != nil {
		return nil, false, fmt.Errorf("generating lock token: %w", err)
	}

	ok, err = l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring lock[%s]: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock = func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.WithError(err).WithField("key", key).Warn("releasing lock")
		}
	}

	return unlock, true, nil
}
