package feed

import (
	"sync"

	"github.com/itqwq/tmonitor/model"
)

// AllSymbols 订阅全部股票的信号
const AllSymbols = "*"

// DataFeed 一个代码的待投递队列。队列不设上限，Publish 只追加不等待，
// 消费协程被慢的通知渠道卡住时也不会阻塞发布信号的监控协程
type DataFeed struct {
	mu      sync.Mutex
	queue   []model.Signal
	closed  bool
	pending chan struct{}
}

func newDataFeed() *DataFeed {
	return &DataFeed{pending: make(chan struct{}, 1)}
}

func (f *DataFeed) push(signal model.Signal) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.queue = append(f.queue, signal)
	f.mu.Unlock()

	select {
	case f.pending <- struct{}{}:
	default:
	}
}

// drain 取出当前全部信号，队列为空且已关闭时返回 false
func (f *DataFeed) drain() ([]model.Signal, bool) {
	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			signals := f.queue
			f.queue = nil
			f.mu.Unlock()
			return signals, true
		}
		if f.closed {
			f.mu.Unlock()
			return nil, false
		}
		f.mu.Unlock()
		<-f.pending
	}
}

func (f *DataFeed) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	select {
	case f.pending <- struct{}{}:
	default:
	}
}

// Len 尚未投递的信号数量
func (f *DataFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

type FeedConsumer func(signal model.Signal)

// Feed 按股票代码分发信号，每个代码一个队列和一个消费协程，同一代码的信号按发布顺序送达
type Feed struct {
	mu                    sync.RWMutex
	wg                    sync.WaitGroup
	started               bool
	closed                bool
	SignalFeeds           map[string]*DataFeed
	SubscriptionsBySymbol map[string][]Subscription
}

type Subscription struct {
	onlyLive bool // 跳过启动时补算出的历史信号
	consumer FeedConsumer
}

func NewSignalFeed() *Feed {
	return &Feed{
		SignalFeeds:           make(map[string]*DataFeed),
		SubscriptionsBySymbol: make(map[string][]Subscription),
	}
}

// Subscribe 需在 Start 之前调用
func (d *Feed) Subscribe(symbol string, consumer FeedConsumer, onlyLive bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.SignalFeeds[symbol]; !ok {
		d.SignalFeeds[symbol] = newDataFeed()
	}

	d.SubscriptionsBySymbol[symbol] = append(d.SubscriptionsBySymbol[symbol], Subscription{
		onlyLive: onlyLive,
		consumer: consumer,
	})
}

// Publish 把信号放入对应代码和 "*" 的队列后立即返回，不等待消费
func (d *Feed) Publish(signal model.Signal) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	for _, key := range []string{signal.Symbol, AllSymbols} {
		if feed, ok := d.SignalFeeds[key]; ok {
			feed.push(signal)
		}
	}
}

func (d *Feed) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true

	for symbol, feed := range d.SignalFeeds {
		d.wg.Add(1)
		go func(subscriptions []Subscription, feed *DataFeed) {
			defer d.wg.Done()
			for {
				signals, ok := feed.drain()
				if !ok {
					return
				}
				for _, signal := range signals {
					for _, subscription := range subscriptions {
						if subscription.onlyLive && signal.Historical {
							continue
						}
						subscription.consumer(signal)
					}
				}
			}
		}(d.SubscriptionsBySymbol[symbol], feed)
	}
}

// Stop 停止接收新信号并等待已发布的信号消费完
func (d *Feed) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, feed := range d.SignalFeeds {
		feed.close()
	}
	d.mu.Unlock()

	d.wg.Wait()
}
