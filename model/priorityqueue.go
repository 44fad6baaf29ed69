package model

import "sync"

// PriorityQueue 并发安全的最小堆，用于把多只股票的信号按时间顺序合并
type PriorityQueue struct {
	sync.Mutex
	length int
	data   []Item
}

type Item interface {
	Less(Item) bool
}

func NewPriorityQueue(data []Item) *PriorityQueue {
	q := &PriorityQueue{data: data, length: len(data)}
	if q.length > 0 {
		for i := (q.length >> 1) - 1; i >= 0; i-- {
			q.down(i)
		}
	}
	return q
}

func (q *PriorityQueue) Push(item Item) {
	q.Lock()
	defer q.Unlock()

	q.data = append(q.data, item)
	q.length++
	q.up(q.length - 1)
}

func (q *PriorityQueue) Pop() Item {
	q.Lock()
	defer q.Unlock()

	if q.length == 0 {
		return nil
	}
	top := q.data[0]
	q.length--
	if q.length > 0 {
		q.data[0] = q.data[q.length]
		q.down(0)
	}
	q.data = q.data[:q.length]
	return top
}

func (q *PriorityQueue) Peek() Item {
	q.Lock()
	defer q.Unlock()

	if q.length == 0 {
		return nil
	}
	return q.data[0]
}

func (q *PriorityQueue) Len() int {
	q.Lock()
	defer q.Unlock()

	return q.length
}

// Drain 依次弹出全部元素，返回有序结果
func (q *PriorityQueue) Drain() []Item {
	items := make([]Item, 0, q.Len())
	for item := q.Pop(); item != nil; item = q.Pop() {
		items = append(items, item)
	}
	return items
}

func (q *PriorityQueue) down(pos int) {
	data := q.data
	halfLength := q.length >> 1
	item := data[pos]
	for pos < halfLength {
		left := (pos << 1) + 1
		right := left + 1
		best := left
		if right < q.length && data[right].Less(data[best]) {
			best = right
		}
		if !data[best].Less(item) {
			break
		}
		data[pos] = data[best]
		pos = best
	}
	data[pos] = item
}

func (q *PriorityQueue) up(pos int) {
	data := q.data
	item := data[pos]
	for pos > 0 {
		parent := (pos - 1) >> 1
		current := data[parent]
		if !item.Less(current) {
			break
		}
		data[pos] = current
		pos = parent
	}
	data[pos] = item
}
