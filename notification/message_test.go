package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itqwq/tmonitor/model"
)

func testSignal() model.Signal {
	return model.Signal{
		Symbol:    "600869",
		Name:      "远东股份",
		Side:      model.SideTypeSell,
		PriceDiff: 0.025,
		MACDDiff:  0.4,
		Price:     10.25,
		Time:      time.Date(2025, 8, 28, 10, 15, 0, 0, time.UTC),
		K:         85.12,
		D:         80.54,
		J:         94.26,
	}
}

func TestFormatSignal(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		text := FormatSignal(testSignal())
		require.Equal(t, "【T警告】[远东股份 600869] SELL信号！ 价格变动：2.50% MACD变动：40.00% "+
			"KDJ(85.1,80.5,94.3) 现价：10.25 [2025-08-28 10:15:00]", text)
	})

	t.Run("historical with position", func(t *testing.T) {
		signal := testSignal()
		signal.Historical = true
		signal.PositionPct = 60
		signal.PositionScore = 0.35
		text := FormatSignal(signal)
		require.Contains(t, text, "【历史信号】")
		require.Contains(t, text, " 建议仓位:60% (pos=0.35)")
	})

	t.Run("diagnostic", func(t *testing.T) {
		signal := testSignal()
		signal.Name = ""
		signal.Side = model.SideTypeBuy
		signal.Diagnostic = "path=pending MACD@2025-08-28 10:13:00 KDJ@2025-08-28 10:15:00 lag=2"
		text := FormatSignal(signal)
		require.Contains(t, text, "[600869] BUY-背离 价格变动：2.50%")
		require.Contains(t, text, "[2025-08-28 10:15:00] | path=pending")
	})
}

func TestFormatHint(t *testing.T) {
	hint := model.Hint{
		Symbol: "600869",
		Side:   model.SideTypeBuy,
		Price:  9.8,
		Time:   time.Date(2025, 8, 28, 10, 15, 0, 0, time.UTC),
	}
	require.Equal(t, "【弱提示】[远东股份 600869] BUY-减速 现价：9.80 [2025-08-28 10:15:00]", FormatHint("远东股份", hint))
}
