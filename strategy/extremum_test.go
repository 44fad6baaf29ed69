package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtremumDetector(t *testing.T) {
	detector := NewExtremumDetector(2)

	t.Run("warmup", func(t *testing.T) {
		peak, trough := detector.Detect(peakAt(1, 10, 1))
		require.Nil(t, peak)
		require.Nil(t, trough)
	})

	t.Run("peak", func(t *testing.T) {
		peak, trough := detector.Detect(peakAt(3, 10, 1))
		require.NotNil(t, peak)
		require.Nil(t, trough)
		require.Equal(t, 3, peak.Index)
		require.Equal(t, 10.0, peak.Price)
		require.Equal(t, 1.0, peak.MACD)
	})

	t.Run("tie with rolling high", func(t *testing.T) {
		st := neutral(4)
		st.RollingHigh = st.High
		peak, _ := detector.Detect(st)
		require.NotNil(t, peak, "matching the rolling extreme still counts")
	})

	t.Run("both", func(t *testing.T) {
		st := neutral(5)
		st.RollingHigh = st.High
		st.RollingLow = st.Low
		peak, trough := detector.Detect(st)
		require.NotNil(t, peak)
		require.NotNil(t, trough)
		require.Equal(t, st.Low, trough.Price)
	})

	t.Run("none", func(t *testing.T) {
		peak, trough := detector.Detect(neutral(6))
		require.Nil(t, peak)
		require.Nil(t, trough)
	})
}
