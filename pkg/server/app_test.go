package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppStopsOnParentCancel(t *testing.T) {
	var closed atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	app := New("test",
		WithWorkers(WorkerFunc{ID: "idle", Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}}),
		WithClosers(func() error { closed.Add(1); return nil }),
	)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, int32(1), closed.Load())
}

func TestAppReturnsFirstWorkerError(t *testing.T) {
	boom := errors.New("boom")
	app := New("test", WithWorkers(WorkerFunc{ID: "fails", Fn: func(context.Context) error {
		return boom
	}}))

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAppClosersRunInReverse(t *testing.T) {
	var order []int
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := New("test", WithClosers(
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return nil },
	))
	require.NoError(t, app.Run(ctx))
	assert.Equal(t, []int{2, 1}, order)
}
