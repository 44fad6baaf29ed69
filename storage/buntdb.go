package storage

import (
	"encoding/json"
	"strconv"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/buntdb"

	"github.com/itqwq/tmonitor/model"
)

// Bunt 基于 buntdb 的信号日志，key 为信号ID，按信号时间建索引
type Bunt struct {
	lastID int64
	db     *buntdb.DB
}

func FromMemory() (Storage, error) {
	return newBunt(":memory:")
}

func FromFile(file string) (Storage, error) {
	return newBunt(file)
}

func newBunt(sourceFile string) (Storage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, err
	}

	err = db.CreateIndex("time_index", "*", buntdb.IndexJSON("time"))
	if err != nil {
		return nil, err
	}

	bunt := &Bunt{db: db}

	// 文件已存在时从最大ID继续编号
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("*", func(key, _ string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > bunt.lastID {
				bunt.lastID = id
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	return bunt, nil
}

func (b *Bunt) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

func (b *Bunt) CreateSignal(signal *model.Signal) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		signal.ID = b.getID()
		content, err := json.Marshal(signal)
		if err != nil {
			return err
		}

		_, _, err = tx.Set(strconv.FormatInt(signal.ID, 10), string(content), nil)
		return err
	})
}

func (b *Bunt) Signals(filters ...SignalFilter) ([]*model.Signal, error) {
	signals := make([]*model.Signal, 0)
	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("time_index", func(key, value string) bool {
			var signal model.Signal
			err := json.Unmarshal([]byte(value), &signal)
			if err != nil {
				log.WithField("key", key).Error(err)
				return true
			}

			if match(signal, filters) {
				signals = append(signals, &signal)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return signals, nil
}
