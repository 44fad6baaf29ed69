package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/itqwq/tmonitor/model"
)

const (
	prefixLive       = "【T警告】"
	prefixHistorical = "【历史信号】"
	prefixHint       = "【弱提示】"
)

func label(name, symbol string) string {
	return strings.TrimSpace(name + " " + symbol)
}

// FormatSignal 生成推送文本，开启诊断时附带确认路径
func FormatSignal(signal model.Signal) string {
	prefix := prefixLive
	if signal.Historical {
		prefix = prefixHistorical
	}

	ts := signal.Time.Format(time.DateTime)
	var text string
	if signal.Diagnostic == "" {
		text = fmt.Sprintf("%s[%s] %s信号！ 价格变动：%.2f%% MACD变动：%.2f%% KDJ(%.1f,%.1f,%.1f) 现价：%.2f [%s]",
			prefix, label(signal.Name, signal.Symbol), signal.Side, signal.PriceDiff*100, signal.MACDDiff*100,
			signal.K, signal.D, signal.J, signal.Price, ts)
	} else {
		text = fmt.Sprintf("%s[%s] %s-背离 价格变动：%.2f%% MACD变动：%.2f%% KDJ(%.1f,%.1f,%.1f) 现价：%.2f [%s] | %s",
			prefix, label(signal.Name, signal.Symbol), signal.Side, signal.PriceDiff*100, signal.MACDDiff*100,
			signal.K, signal.D, signal.J, signal.Price, ts, signal.Diagnostic)
	}

	if signal.PositionPct > 0 {
		text += fmt.Sprintf(" 建议仓位:%d%% (pos=%.2f)", signal.PositionPct, signal.PositionScore)
	}
	return text
}

func FormatHint(name string, hint model.Hint) string {
	return fmt.Sprintf("%s[%s] %s", prefixHint, label(name, hint.Symbol), hint)
}
