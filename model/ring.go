package model

// Ring 固定容量的环形缓冲区，写满后覆盖最旧的元素。非并发安全，只在单个监控协程内使用
type Ring[T any] struct {
	data  []T
	start int // 最旧元素的位置
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Push 追加元素，容量已满时丢弃最旧的元素
func (r *Ring[T]) Push(v T) {
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = v
		r.size++
		return
	}
	r.data[r.start] = v
	r.start = (r.start + 1) % len(r.data)
}

func (r *Ring[T]) Len() int {
	return r.size
}

func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// At 按时间顺序取第 i 个元素，0 为最旧
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("ring: index out of range")
	}
	return r.data[(r.start+i)%len(r.data)]
}

// Last 取倒数第 i 个元素，0 为最新
func (r *Ring[T]) Last(i int) T {
	return r.At(r.size - 1 - i)
}

// Values 按时间顺序复制出全部元素
func (r *Ring[T]) Values() []T {
	values := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		values[i] = r.At(i)
	}
	return values
}
