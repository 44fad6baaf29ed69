package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itqwq/tmonitor/model"
)

func hintBar(i int, close float64) model.BarState {
	st := withKDJ(peakAt(i, close+0.1, 0.4), 85, 85)
	st.Close = close
	st.EMA5 = close - 0.2
	return st
}

func TestHintDetector(t *testing.T) {
	cfg := model.DefaultConfig()
	prev := neutral(0)

	t.Run("sell", func(t *testing.T) {
		hints := NewHintDetector(cfg)
		hint, ok := hints.Check(model.SideTypeSell, hintBar(1, 10), prev, true)
		require.True(t, ok)
		require.Equal(t, model.SideTypeSell, hint.Side)
		require.Equal(t, 10.0, hint.Price)
		require.Equal(t, "600869", hint.Symbol)

		_, ok = hints.Check(model.SideTypeBuy, hintBar(1, 10), prev, true)
		require.False(t, ok)
	})

	t.Run("not an extremum", func(t *testing.T) {
		hints := NewHintDetector(cfg)
		_, ok := hints.Check(model.SideTypeSell, hintBar(1, 10), prev, false)
		require.False(t, ok)
	})

	t.Run("macd accelerating", func(t *testing.T) {
		hints := NewHintDetector(cfg)
		st := hintBar(1, 10)
		st.MACD = 0.6
		st.DIF, st.DEA = 0.5, 0.2
		_, ok := hints.Check(model.SideTypeSell, st, prev, true)
		require.False(t, ok)
	})

	t.Run("min price change", func(t *testing.T) {
		hints := NewHintDetector(cfg)
		_, ok := hints.Check(model.SideTypeSell, hintBar(1, 10), prev, true)
		require.True(t, ok)

		_, ok = hints.Check(model.SideTypeSell, hintBar(2, 10.01), prev, true)
		require.False(t, ok)

		_, ok = hints.Check(model.SideTypeSell, hintBar(25, 10.01), prev, true)
		require.True(t, ok)
	})

	t.Run("cooldown below ema5", func(t *testing.T) {
		hints := NewHintDetector(cfg)
		_, ok := hints.Check(model.SideTypeSell, hintBar(1, 10), prev, true)
		require.True(t, ok)

		st := hintBar(3, 10.5)
		st.EMA5 = 10.6
		_, ok = hints.Check(model.SideTypeSell, st, prev, true)
		require.False(t, ok)
	})
}
