package model

import "time"

// ExtremumKind 极值类型
type ExtremumKind int

const (
	Peak ExtremumKind = iota + 1
	Trough
)

func (k ExtremumKind) String() string {
	switch k {
	case Peak:
		return "peak"
	case Trough:
		return "trough"
	}
	return "unknown"
}

// ExtremumPoint 局部高点/低点，创建后不再修改
type ExtremumPoint struct {
	Index int       // 所在K线序号
	Time  time.Time // 所在K线时间
	Price float64   // 高点取最高价，低点取最低价
	MACD  float64   // 所在K线的 MACD 柱
	Kind  ExtremumKind
}

// PendingConfirmation 已经形成价格/MACD背离但 KDJ 尚未确认的候选
type PendingConfirmation struct {
	Node      ExtremumPoint // 新极值点
	Ref       ExtremumPoint // 参照的历史极值点
	Side      SideType
	PriceDiff float64
	MACDDiff  float64
	Deadline  time.Time // Node.Time + 容忍K线数 * 周期，仅用于展示
}
