package goroutine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_GoAndWait(t *testing.T) {
	m := NewManager(4)
	errBoom := errors.New("boom")

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 3; i++ {
		ok := m.Go(context.Background(), func(context.Context) error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
		assert.True(t, ok)
	}
	assert.True(t, m.Go(context.Background(), func(context.Context) error { return errBoom }))

	err := m.Wait()
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, ran)
}

func TestManager_RejectsWhenClosed(t *testing.T) {
	m := NewManager(1)
	assert.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_RejectsWhenFull(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	assert.True(t, m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
}

func TestManager_RejectsCanceledContext(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, m.Go(ctx, func(context.Context) error { return nil }))
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)

	assert.True(t, m.Go(context.Background(), func(context.Context) error {
		panic("unexpected")
	}))
	assert.EqualError(t, m.Wait(), "goroutine panic: unexpected")
}

func TestManager_NilIsSafe(t *testing.T) {
	var m *Manager
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
