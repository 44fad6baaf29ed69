package model

import (
	"fmt"
	"time"
)

// SideType 信号方向
type SideType string

var (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

// 信号确认路径
const (
	PathImmediate = "immediate" // 背离出现时 KDJ 已经确认
	PathPending   = "pending"   // 背离先入队，随后在容忍窗口内被 KDJ 确认
)

// Signal 经过背离匹配、KDJ确认以及去重之后对外发出的交易信号
type Signal struct {
	ID     int64    `db:"id" json:"id" gorm:"primaryKey,autoIncrement"`
	Symbol string   `db:"symbol" json:"symbol" gorm:"index"`
	Name   string   `db:"name" json:"name"` // 股票名称，可为空
	Side   SideType `db:"side" json:"side"`

	PriceDiff float64 `db:"price_diff" json:"price_diff"` // 价格变动比例，0.025 表示 2.5%
	MACDDiff  float64 `db:"macd_diff" json:"macd_diff"`   // MACD变动比例
	Price     float64 `db:"price" json:"price"`           // 新极值点价格

	Time     time.Time `db:"time" json:"time"`           // 信号时间：immediate 为极值点时间，pending 为确认K线时间
	NodeTime time.Time `db:"node_time" json:"node_time"` // 极值点时间
	RefTime  time.Time `db:"ref_time" json:"ref_time"`   // 参照极值点时间

	K float64 `db:"k" json:"k"`
	D float64 `db:"d" json:"d"`
	J float64 `db:"j" json:"j"`

	Path string `db:"path" json:"path"`
	Lag  int    `db:"lag" json:"lag"` // pending 路径下确认时距离极值点的K线数

	PositionScore float64 `db:"position_score" json:"position_score"`
	PositionPct   int     `db:"position_pct" json:"position_pct"` // 建议仓位百分比，0 表示未计算
	Historical    bool    `db:"historical" json:"historical"`     // 实盘启动时补算出的历史信号

	Diagnostic string `db:"diagnostic" json:"diagnostic,omitempty"`
}

func (s Signal) String() string {
	return fmt.Sprintf("[%s] %s %s | price: %.2f, price diff: %.2f%%, macd diff: %.2f%%, path: %s",
		s.Time.Format("2006-01-02 15:04"), s.Side, s.Symbol, s.Price, s.PriceDiff*100, s.MACDDiff*100, s.Path)
}

// Less 按信号时间排序，时间相同时按股票代码
func (s Signal) Less(j Item) bool {
	other := j.(Signal)
	if !s.Time.Equal(other.Time) {
		return s.Time.Before(other.Time)
	}
	return s.Symbol < other.Symbol
}

// TriggeredSignal 已经发出的信号，用于去重
type TriggeredSignal struct {
	Price float64
	Time  time.Time
	Side  SideType
}

// Hint 弱提示：高位/低位减速但还没有形成背离，只写日志不推送
type Hint struct {
	Symbol string
	Side   SideType
	Price  float64
	Time   time.Time
}

func (h Hint) String() string {
	return fmt.Sprintf("%s-减速 现价：%.2f [%s]", h.Side, h.Price, h.Time.Format("2006-01-02 15:04:05"))
}
