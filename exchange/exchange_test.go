package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itqwq/tmonitor/model"
)

type stubFeeder struct {
	bars  []model.Bar
	err   error
	calls int
}

func (s *stubFeeder) BarsByLimit(context.Context, string, int) ([]model.Bar, error) {
	s.calls++
	return s.bars, s.err
}

func (s *stubFeeder) BarsByPeriod(context.Context, string, time.Time, time.Time) ([]model.Bar, error) {
	s.calls++
	return s.bars, s.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	bars := []model.Bar{{Symbol: "600869", Close: 10}}

	t.Run("first healthy", func(t *testing.T) {
		primary := &stubFeeder{bars: bars}
		secondary := &stubFeeder{bars: bars}
		result, err := NewFallback(primary, secondary).BarsByLimit(ctx, "600869", 1)
		require.NoError(t, err)
		require.Equal(t, bars, result)
		require.Equal(t, 1, primary.calls)
		require.Zero(t, secondary.calls)
	})

	t.Run("alternate endpoint", func(t *testing.T) {
		primary := &stubFeeder{err: errors.New("timeout")}
		empty := &stubFeeder{}
		secondary := &stubFeeder{bars: bars}
		result, err := NewFallback(primary, empty, secondary).BarsByPeriod(ctx, "600869", time.Time{}, time.Now())
		require.NoError(t, err)
		require.Equal(t, bars, result)
		require.Equal(t, 1, empty.calls)
	})

	t.Run("all failed", func(t *testing.T) {
		failure := errors.New("timeout")
		_, err := NewFallback(&stubFeeder{err: failure}, &stubFeeder{}).BarsByLimit(ctx, "600869", 1)
		require.ErrorIs(t, err, failure)
		require.ErrorIs(t, err, ErrNoData)

		_, err = NewFallback().BarsByLimit(ctx, "600869", 1)
		require.ErrorIs(t, err, ErrNoData)
	})

	t.Run("canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewFallback(&stubFeeder{bars: bars}).BarsByLimit(canceled, "600869", 1)
		require.ErrorIs(t, err, context.Canceled)
	})
}
