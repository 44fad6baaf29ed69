package service

import (
	"context" // 为管理进程和操作的生命周期提供原语。
	"time"

	"github.com/itqwq/tmonitor/model"
)

//go:generate mockery --name=Feeder --output=../mocks
//go:generate mockery --name=Notifier --output=../mocks

// Feeder K线数据源，返回的K线按时间升序排列，只包含已经收盘的K线。
// 非交易时段的空档不补齐。
type Feeder interface {
	// BarsByLimit 最近 limit 根K线
	BarsByLimit(ctx context.Context, symbol string, limit int) ([]model.Bar, error)
	// BarsByPeriod [start, end] 区间内的K线，用于回放
	BarsByPeriod(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)
}

// Notifier 信号推送。实现需要支持多个监控协程并发调用，推送失败只记录日志，不向上返回。
type Notifier interface {
	Notify(string)                // 发送文本消息
	OnSignal(signal model.Signal) // 信号确认后的回调
	OnError(err error)            // 监控出错时的回调
}

type Telegram interface {
	Notifier
	Start()
}
