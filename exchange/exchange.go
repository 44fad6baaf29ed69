package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/service"
	"github.com/itqwq/tmonitor/tools/log"
)

var ErrNoData = errors.New("no data")

// Fallback 依次尝试多个数据源，返回第一个成功的结果
type Fallback struct {
	feeders []service.Feeder
}

func NewFallback(feeders ...service.Feeder) *Fallback {
	return &Fallback{feeders: feeders}
}

func (f *Fallback) BarsByLimit(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	return f.try(ctx, func(feeder service.Feeder) ([]model.Bar, error) {
		return feeder.BarsByLimit(ctx, symbol, limit)
	})
}

func (f *Fallback) BarsByPeriod(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	return f.try(ctx, func(feeder service.Feeder) ([]model.Bar, error) {
		return feeder.BarsByPeriod(ctx, symbol, start, end)
	})
}

func (f *Fallback) try(ctx context.Context, fetch func(service.Feeder) ([]model.Bar, error)) ([]model.Bar, error) {
	if len(f.feeders) == 0 {
		return nil, fmt.Errorf("%w: no feeder configured", ErrNoData)
	}

	var errs []error
	for i, feeder := range f.feeders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bars, err := fetch(feeder)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
		if err == nil {
			err = ErrNoData
		}
		log.WithField("feeder", fmt.Sprintf("%T", feeder)).Debugf("feeder %d failed: %s", i, err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
