package storage

import (
	"time"

	"github.com/itqwq/tmonitor/model"
)

// SignalFilter 查询信号时的过滤条件
type SignalFilter func(model.Signal) bool

// Storage 信号日志，按信号时间升序返回
type Storage interface {
	CreateSignal(signal *model.Signal) error
	Signals(filters ...SignalFilter) ([]*model.Signal, error)
}

func WithSymbol(symbol string) SignalFilter {
	return func(signal model.Signal) bool {
		return signal.Symbol == symbol
	}
}

func WithSide(side model.SideType) SignalFilter {
	return func(signal model.Signal) bool {
		return signal.Side == side
	}
}

// WithSince 信号时间不早于 since
func WithSince(since time.Time) SignalFilter {
	return func(signal model.Signal) bool {
		return !signal.Time.Before(since)
	}
}

func WithHistorical(historical bool) SignalFilter {
	return func(signal model.Signal) bool {
		return signal.Historical == historical
	}
}

func match(signal model.Signal, filters []SignalFilter) bool {
	for _, filter := range filters {
		if !filter(signal) {
			return false
		}
	}
	return true
}
