package storage

import (
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/itqwq/tmonitor/model"
)

// SQL 基于 gorm 的信号日志，方言由调用方决定
type SQL struct {
	db *gorm.DB
}

func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (Storage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&model.Signal{})
	if err != nil {
		return nil, err
	}

	return &SQL{
		db: db,
	}, nil
}

func (s *SQL) CreateSignal(signal *model.Signal) error {
	result := s.db.Create(signal)
	return result.Error
}

func (s *SQL) Signals(filters ...SignalFilter) ([]*model.Signal, error) {
	signals := make([]*model.Signal, 0)

	result := s.db.Order("time asc, id asc").Find(&signals)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, result.Error
	}

	return lo.Filter(signals, func(signal *model.Signal, _ int) bool {
		return match(*signal, filters)
	}), nil
}
