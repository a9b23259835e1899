package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("should release only expired holds", func(t *testing.T) {
		manager, store, holds, _ := newTestHoldManager()

		expired, err := manager.RequestHold(ctx, "show-1", []string{"A1", "A2"}, time.Minute)
		require.NoError(t, err)

		live, err := manager.RequestHold(ctx, "show-1", []string{"A3"}, 10*time.Minute)
		require.NoError(t, err)

		sweeper := NewSweeper(manager, 0, testLogger)
		sweeper.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		sweeper.Sweep(ctx)

		statuses := seatStatuses(t, store, "show-1")
		assert.Equal(t, domain.SeatAvailable, statuses["A1"])
		assert.Equal(t, domain.SeatAvailable, statuses["A2"])
		assert.Equal(t, domain.SeatHeld, statuses["A3"])

		_, err = holds.GetByToken(ctx, expired.Token)
		assert.ErrorIs(t, err, domain.ErrHoldNotFound)

		_, err = holds.GetByToken(ctx, live.Token)
		assert.NoError(t, err)
	})

	t.Run("should skip holds awaiting a payment outcome", func(t *testing.T) {
		manager, store, holds, _ := newTestHoldManager()

		hold, err := manager.RequestHold(ctx, "show-1", []string{"A1"}, time.Minute)
		require.NoError(t, err)

		require.NoError(t, holds.MarkPaymentPending(ctx, hold.Token, time.Now().Add(time.Minute)))

		sweeper := NewSweeper(manager, 0, testLogger)
		sweeper.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		sweeper.Sweep(ctx)

		statuses := seatStatuses(t, store, "show-1")
		assert.Equal(t, domain.SeatHeld, statuses["A1"])

		_, err = holds.GetByToken(ctx, hold.Token)
		assert.NoError(t, err)
	})

	t.Run("should do nothing when no hold has expired", func(t *testing.T) {
		manager, store, _, _ := newTestHoldManager()

		_, err := manager.RequestHold(ctx, "show-1", []string{"A1"}, 5*time.Minute)
		require.NoError(t, err)

		sweeper := NewSweeper(manager, 0, testLogger)
		sweeper.Sweep(ctx)

		statuses := seatStatuses(t, store, "show-1")
		assert.Equal(t, domain.SeatHeld, statuses["A1"])
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		manager, _, _, _ := newTestHoldManager()

		sweeper := NewSweeper(manager, time.Millisecond, testLogger)

		runCtx, cancel := context.WithCancel(ctx)

		done := make(chan struct{})
		go func() {
			sweeper.Run(runCtx)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop after context cancellation")
		}
	})
}
