package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/itqwq/tmonitor/model"
)

var ErrInsufficientData = errors.New("insufficient data")

// 时间列支持 unix 秒或者以下格式（北京时间）
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// SymbolFeed 一只股票对应的 CSV 文件
type SymbolFeed struct {
	Symbol string
	File   string
}

// CSVFeed 从 CSV 文件读取K线，用于回放。
// 默认列顺序 time,open,close,low,high,volume；带表头时按表头取列。
type CSVFeed struct {
	Feeds        map[string]SymbolFeed
	BarsBySymbol map[string][]model.Bar
}

func parseHeaders(headers []string) (index map[string]int, ok bool) {
	headerMap := map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}

	if _, err := parseTime(headers[0]); err == nil {
		return headerMap, false
	}

	for index, h := range headers {
		if h == "datetime" || h == "date" {
			h = "time"
		}
		headerMap[h] = index
	}
	return headerMap, true
}

func parseTime(value string) (time.Time, error) {
	if timestamp, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(timestamp, 0).In(Location), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time: %q", value)
}

func NewCSVFeed(feeds ...SymbolFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Feeds:        make(map[string]SymbolFeed),
		BarsBySymbol: make(map[string][]model.Bar),
	}

	for _, feed := range feeds {
		bars, err := readBars(feed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", feed.File, err)
		}
		csvFeed.Feeds[feed.Symbol] = feed
		csvFeed.BarsBySymbol[feed.Symbol] = bars
	}

	return csvFeed, nil
}

func readBars(feed SymbolFeed) ([]model.Bar, error) {
	csvFile, err := os.Open(feed.File)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(csvLines) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInsufficientData)
	}

	headerMap, hasHeaders := parseHeaders(csvLines[0])
	if hasHeaders {
		csvLines = csvLines[1:]
	}

	bars := make([]model.Bar, 0, len(csvLines))
	for line, row := range csvLines {
		bar := model.Bar{Symbol: feed.Symbol}

		bar.Time, err = parseTime(row[headerMap["time"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}

		for name, target := range map[string]*float64{
			"open": &bar.Open, "close": &bar.Close, "low": &bar.Low, "high": &bar.High, "volume": &bar.Volume,
		} {
			*target, err = strconv.ParseFloat(row[headerMap[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line+1, name, err)
			}
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// Limit 只保留最后 duration 时间内的K线
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for symbol, bars := range c.BarsBySymbol {
		if len(bars) == 0 {
			continue
		}
		start := bars[len(bars)-1].Time.Add(-duration)

		c.BarsBySymbol[symbol] = lo.Filter(bars, func(bar model.Bar, _ int) bool {
			return bar.Time.After(start)
		})
	}
	return c
}

func (c CSVFeed) BarsByPeriod(_ context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	bars, ok := c.BarsBySymbol[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, symbol)
	}

	return lo.Filter(bars, func(bar model.Bar, _ int) bool {
		return !bar.Time.Before(start) && !bar.Time.After(end)
	}), nil
}

// BarsByLimit 最后 limit 根K线，不足时返回全部
func (c CSVFeed) BarsByLimit(_ context.Context, symbol string, limit int) ([]model.Bar, error) {
	bars := c.BarsBySymbol[symbol]
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, symbol)
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return append([]model.Bar(nil), bars...), nil
}
