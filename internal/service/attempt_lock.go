package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrLockTimeout = errors.New("timed out waiting for attempt lock")

// AttemptLocker 跨实例串行化同一 (user, exam) 的开考请求
type AttemptLocker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisAttemptLocker struct {
	Client        *redis.Client
	TTL           time.Duration
	RetryInterval time.Duration
	MaxWait       time.Duration
}

func NewRedisAttemptLocker(client *redis.Client) *RedisAttemptLocker {
	return &RedisAttemptLocker{
		Client:        client,
		TTL:           10 * time.Second,
		RetryInterval: 50 * time.Millisecond,
		MaxWait:       5 * time.Second,
	}
}

func (l *RedisAttemptLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	lockKey := fmt.Sprintf("exam_grader:lock:%s", key)
	token := uuid.NewString()
	deadline := time.Now().Add(l.MaxWait)

	for {
		ok, err := l.Client.SetNX(ctx, lockKey, token, l.TTL).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.RetryInterval):
		}
	}

	defer releaseScript.Run(context.Background(), l.Client, []string{lockKey}, token)

	return fn()
}

// LocalAttemptLocker 单实例部署时使用的进程内按键互斥
type LocalAttemptLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocalAttemptLocker() *LocalAttemptLocker {
	return &LocalAttemptLocker{locks: make(map[string]*keyedLock)}
}

func (l *LocalAttemptLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}()

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
