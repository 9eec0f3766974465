package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_StopsWhenDone(t *testing.T) {
	var calls atomic.Int32
	polls, err := Until(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return calls.Add(1) == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
}

func TestUntil_Timeout(t *testing.T) {
	_, err := Until(context.Background(), 5*time.Millisecond, 30*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestUntil_CheckError(t *testing.T) {
	boom := errors.New("boom")
	polls, err := Until(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, polls)
}

func TestUntil_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Until(ctx, 5*time.Millisecond, time.Minute, func(context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}
