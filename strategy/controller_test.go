package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itqwq/tmonitor/indicator"
	"github.com/itqwq/tmonitor/model"
)

func rawBar(i int, close float64) model.Bar {
	return model.Bar{
		Symbol: "600869",
		Time:   barTime(i),
		Open:   close,
		High:   close + 0.05,
		Low:    close - 0.05,
		Close:  close,
		Volume: 1000,
	}
}

func TestController_OnBar(t *testing.T) {
	cfg := testConfig()
	controller := NewStrategyController("600869", cfg, NewDivergence(cfg))

	for i := 0; i < 10; i++ {
		_, _, err := controller.OnBar(rawBar(i, 10+0.1*math.Sin(float64(i))))
		require.NoError(t, err)
	}
	require.Equal(t, 10, controller.Bars())

	last, ok := controller.Last()
	require.True(t, ok)
	require.Equal(t, 9, last.Index)
	require.Equal(t, barTime(9), last.Time)
	require.Len(t, controller.History(), 10)

	t.Run("late bar", func(t *testing.T) {
		_, _, err := controller.OnBar(rawBar(5, 10))
		require.ErrorIs(t, err, indicator.ErrOutOfOrder)
		require.Equal(t, 10, controller.Bars())
	})

	t.Run("invalid bar", func(t *testing.T) {
		bar := rawBar(20, 10)
		bar.Close = math.NaN()
		_, _, err := controller.OnBar(bar)
		require.ErrorIs(t, err, ErrInvalidBar)
	})

	t.Run("wrong symbol", func(t *testing.T) {
		bar := rawBar(20, 10)
		bar.Symbol = "000001"
		_, _, err := controller.OnBar(bar)
		require.ErrorIs(t, err, ErrInvalidBar)
	})

	t.Run("empty symbol", func(t *testing.T) {
		bar := rawBar(20, 10)
		bar.Symbol = ""
		_, _, err := controller.OnBar(bar)
		require.NoError(t, err)
	})
}

func TestController_HistoryDepth(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHistoryBars = 3
	controller := NewStrategyController("600869", cfg, NewDivergence(cfg))

	start := time.Now()
	for i := 0; i < 50; i++ {
		bar := rawBar(i, 10)
		bar.Time = start.Add(time.Duration(i) * time.Minute)
		_, _, err := controller.OnBar(bar)
		require.NoError(t, err)
	}
	require.Len(t, controller.History(), scorePeriod, "history keeps what the strategy needs")
}
