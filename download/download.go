package download

import (
	"context"
	"encoding/csv"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"

	"github.com/itqwq/tmonitor/service"
	"github.com/itqwq/tmonitor/tools/log"
)

const (
	batchSize      = 240 // 一个交易日的1分钟K线数
	pricePrecision = 3   // ETF 报价到厘
)

// Downloader 把数据源的K线落成 CSV，供回放使用
type Downloader struct {
	feeder service.Feeder
	now    func() time.Time
	silent bool
}

type DownloaderOption func(*Downloader)

// WithClock 测试用
func WithClock(now func() time.Time) DownloaderOption {
	return func(d *Downloader) {
		d.now = now
	}
}

// WithoutProgress 不输出进度条
func WithoutProgress() DownloaderOption {
	return func(d *Downloader) {
		d.silent = true
	}
}

func NewDownloader(feeder service.Feeder, options ...DownloaderOption) Downloader {
	downloader := Downloader{
		feeder: feeder,
		now:    time.Now,
	}
	for _, option := range options {
		option(&downloader)
	}
	return downloader
}

type Parameters struct {
	Start time.Time
	End   time.Time
}

type Option func(*Parameters)

func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

func WithDays(days int) Option {
	return func(parameters *Parameters) {
		parameters.Start = time.Now().AddDate(0, 0, -days)
		parameters.End = time.Now()
	}
}

func batchCount(start, end time.Time, timeframe string) (int, time.Duration, error) {
	interval, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return 0, 0, err
	}
	window := interval * batchSize
	return int((end.Sub(start) + window - 1) / window), interval, nil
}

// Download 按批次拉取 [Start, End] 的K线写入 output，默认最近5天
func (d Downloader) Download(ctx context.Context, symbol, timeframe, output string, options ...Option) error {
	recordFile, err := os.Create(output)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	now := d.now()
	parameters := &Parameters{
		Start: now.AddDate(0, 0, -5),
		End:   now,
	}

	for _, option := range options {
		option(parameters)
	}

	if parameters.End.After(now) {
		parameters.End = now
	}

	batches, interval, err := batchCount(parameters.Start, parameters.End, timeframe)
	if err != nil {
		return err
	}

	log.Infof("Downloading %s bars of %s from %s to %s", timeframe, symbol,
		parameters.Start.Format(time.DateTime), parameters.End.Format(time.DateTime))

	writer := csv.NewWriter(recordFile)
	err = writer.Write([]string{
		"time", "open", "close", "low", "high", "volume",
	})
	if err != nil {
		return err
	}

	var progressBar *progressbar.ProgressBar
	if !d.silent {
		progressBar = progressbar.Default(int64(batches))
	}

	total, empty := 0, 0
	for begin := parameters.Start; begin.Before(parameters.End); begin = begin.Add(interval * batchSize) {
		end := begin.Add(interval * batchSize)
		if end.Before(parameters.End) {
			end = end.Add(-1 * time.Second)
		} else {
			end = parameters.End
		}

		bars, err := d.feeder.BarsByPeriod(ctx, symbol, begin, end)
		if err != nil {
			return err
		}

		for _, bar := range bars {
			if err := writer.Write(bar.ToSlice(pricePrecision)); err != nil {
				return err
			}
		}

		total += len(bars)
		if len(bars) == 0 {
			empty++
		}

		if progressBar != nil {
			if err = progressBar.Add(1); err != nil {
				log.Warnf("update progresbar fail: %s", err.Error())
			}
		}
	}

	if progressBar != nil {
		if err = progressBar.Close(); err != nil {
			log.Warnf("close progresbar fail: %s", err.Error())
		}
	}

	if empty > 0 {
		log.Debugf("%d batches without bars (non-trading periods)", empty)
	}

	writer.Flush()
	log.Infof("Done! %d bars written to %s", total, output)
	return writer.Error()
}
