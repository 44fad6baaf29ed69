package model

import (
	"fmt"     // 用于格式化输出
	"math"    // 提供基本的数学函数
	"strconv" // 提供字符串与基本数据类型的转换
	"time"    // 提供时间相关的函数和方法
)

// TelegramSettings Telegram 推送配置
type TelegramSettings struct {
	Enabled bool   // 是否启用Telegram通知
	Token   string // Telegram bot的Token
	Users   []int  // 接收通知的用户ID列表
}

// FeishuSettings 飞书机器人 webhook 配置，URL 为空时不推送只记录日志
type FeishuSettings struct {
	Enabled    bool
	WebhookURL string
}

// MailSettings 邮件推送配置
type MailSettings struct {
	Enabled  bool
	From     string
	To       string
	Server   string
	Port     int
	Password string
}

// Settings 进程级设置：监控的股票列表以及推送渠道
type Settings struct {
	Symbols  []string         // 股票代码列表，如 600869
	Telegram TelegramSettings // Telegram通知的设置
	Feishu   FeishuSettings
	Mail     MailSettings
}

// Bar 一根已经收盘的K线，同一只股票的 Bar 时间严格递增
type Bar struct {
	Symbol string    // 股票代码
	Time   time.Time // K线时间
	Open   float64   // 开盘价
	High   float64   // 最高价
	Low    float64   // 最低价
	Close  float64   // 收盘价
	Volume float64   // 成交量
}

// Valid 判断K线数据是否可用：价格为正且不含 NaN，最高价不低于最低价
func (b Bar) Valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 || b.Volume < 0 {
		return false
	}
	return b.High >= b.Low
}

// ToSlice 转成 CSV 行：time,open,close,low,high,volume
func (b Bar) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", b.Time.Unix()),                  // 时间戳
		strconv.FormatFloat(b.Open, 'f', precision, 64),   // 开盘价
		strconv.FormatFloat(b.Close, 'f', precision, 64),  // 收盘价
		strconv.FormatFloat(b.Low, 'f', precision, 64),    // 最低价
		strconv.FormatFloat(b.High, 'f', precision, 64),   // 最高价
		strconv.FormatFloat(b.Volume, 'f', precision, 64), // 成交量
	}
}

func (b Bar) String() string {
	return fmt.Sprintf("[%s] %s O:%.3f H:%.3f L:%.3f C:%.3f V:%.0f",
		b.Symbol, b.Time.Format("2006-01-02 15:04"), b.Open, b.High, b.Low, b.Close, b.Volume)
}

// BarState 一根K线加上截至该K线的全部指标值，只追加不修改
type BarState struct {
	Bar

	Index int // 在该股票序列中的序号，从0开始

	DIF  float64 // EMA(fast) - EMA(slow)
	DEA  float64 // EMA(DIF, signal)
	MACD float64 // 2 * (DIF - DEA)
	K    float64
	D    float64
	J    float64
	EMA5 float64 // 弱提示使用的短均线

	RollingHigh float64 // 最近 W 根K线（含当前）的最高价
	RollingLow  float64 // 最近 W 根K线（含当前）的最低价
}
