package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/set-night/stanbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	key := domain.SessionKey{UserID: "a", ConversationID: "1"}

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(context.Background(), key)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxActive)
	assert.Equal(t, 0, k.size())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	unlockA, err := k.Lock(context.Background(), domain.SessionKey{UserID: "a", ConversationID: "1"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		unlock, err := k.Lock(context.Background(), domain.SessionKey{UserID: "b", ConversationID: "1"})
		if assert.NoError(t, err) {
			unlock()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	unlockA()
	assert.Equal(t, 0, k.size())
}

func TestKeyedMutexWaitHonoursDeadline(t *testing.T) {
	k := newKeyedMutex()
	key := domain.SessionKey{UserID: "a", ConversationID: "1"}

	unlock, err := k.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, key)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, k.size())

	unlock()
	assert.Equal(t, 0, k.size())

	unlock, err = k.Lock(context.Background(), key)
	require.NoError(t, err)
	unlock()
}
