package cache

import (
	"context"
	"sync"
	"time"

	"social-scheduler/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const triggerLockPrefix = "scheduler:trigger:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// TriggerLock is a SET NX lock shared by every instance behind the webhook.
type TriggerLock struct {
	client *redis.Client
}

func NewTriggerLock(client *redis.Client) *TriggerLock {
	return &TriggerLock{client: client}
}

func (l *TriggerLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, triggerLockPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Release must outlive a cancelled request context.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.client, []string{triggerLockPrefix + key}, token).Err(); err != nil && err != redis.Nil {
			logger.GetLogger().WithField("error", err).WithField("key", key).Warn("failed releasing trigger lock")
		}
	}
	return release, true, nil
}

// LocalTriggerLock serializes triggers within one process. Used when Redis is not configured.
type LocalTriggerLock struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewLocalTriggerLock() *LocalTriggerLock {
	return &LocalTriggerLock{held: make(map[string]time.Time), now: time.Now}
}

func (l *LocalTriggerLock) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return nil, false, nil
	}
	expiry := now.Add(ttl)
	l.held[key] = expiry
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == expiry {
			delete(l.held, key)
		}
	}, true, nil
}
