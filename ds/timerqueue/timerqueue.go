package timerqueue

import (
	"math"

	"github.com/fixkme/evloop/errs"
)

// UnsetWhen 表示到期时间未设置
const UnsetWhen int64 = math.MinInt64

// Watcher 一个待触发的定时事件
// 入队之后 Id 和 When 都不能再修改, 改期先Remove再Insert
type Watcher struct {
	Id   int64 // 调用方分配, 队列内唯一
	When int64 // 到期时间戳 毫秒
}

type ExtractState int8

const (
	Extracted ExtractState = iota // 取出了一个到期的watcher
	NotDue                        // 最小到期时间还没到
	Empty                         // 队列为空
)

// TimerQueue 数组小顶堆 + id到堆下标的索引
// 索引使按任意id删除也是 O(log n), 普通堆只能删堆顶
type TimerQueue struct {
	heap  []*Watcher
	index map[int64]int
}

func NewTimerQueue() *TimerQueue {
	return &TimerQueue{
		index: make(map[int64]int),
	}
}

func (q *TimerQueue) Len() int {
	return len(q.heap)
}

// Insert 插入一个watcher
// When未设置或者id重复是调用方的bug, 返回错误且队列不变
func (q *TimerQueue) Insert(w *Watcher) error {
	if w.When == UnsetWhen {
		return errs.TimerNoWhen.Printf("id:%d", w.Id)
	}
	if _, ok := q.index[w.Id]; ok {
		return errs.TimerDuplicated.Printf("id:%d", w.Id)
	}
	q.heap = append(q.heap, w)
	q.up(len(q.heap) - 1)
	return nil
}

// Remove 删除指定watcher, 不在队列中则什么也不做
func (q *TimerQueue) Remove(w *Watcher) {
	if w == nil {
		return
	}
	q.RemoveId(w.Id)
}

// RemoveId 按id删除, 返回被删除的watcher, 不存在返回nil
func (q *TimerQueue) RemoveId(id int64) *Watcher {
	p, ok := q.index[id]
	if !ok {
		return nil
	}
	return q.removeAt(p)
}

// Extract 堆顶到期则取出返回
// 队列为空返回Empty, 堆顶未到期返回NotDue且队列不变
func (q *TimerQueue) Extract(now int64) (*Watcher, ExtractState) {
	if len(q.heap) == 0 {
		return nil, Empty
	}
	if q.heap[0].When > now {
		return nil, NotDue
	}
	return q.removeAt(0), Extracted
}

// Peek 返回最小到期时间, 队列为空时ok为false
func (q *TimerQueue) Peek() (when int64, ok bool) {
	if len(q.heap) == 0 {
		return 0, false
	}
	return q.heap[0].When, true
}

// removeAt 用末尾元素填补p位置, 然后单方向修堆
func (q *TimerQueue) removeAt(p int) *Watcher {
	w := q.heap[p]
	last := len(q.heap) - 1
	if p != last {
		q.heap[p] = q.heap[last]
		q.index[q.heap[p].Id] = p
	}
	q.heap[last] = nil // 让gc回收
	q.heap = q.heap[:last]
	delete(q.index, w.Id)
	if p < len(q.heap) {
		// 点替换只可能破坏一个方向的堆序
		if !q.down(p) {
			q.up(p)
		}
	}
	return w
}

// up 向上调整, 父节点不大于自己时停止
func (q *TimerQueue) up(p int) {
	w := q.heap[p]
	for p > 0 {
		parent := (p - 1) / 2
		if q.heap[parent].When <= w.When {
			break
		}
		q.heap[p] = q.heap[parent]
		q.index[q.heap[p].Id] = p
		p = parent
	}
	q.heap[p] = w
	q.index[w.Id] = p
}

// down 向下调整, 发生过移动返回true
func (q *TimerQueue) down(p int) bool {
	w := q.heap[p]
	n := len(q.heap)
	moved := false
	for {
		child := 2*p + 1
		if child >= n {
			break
		}
		if r := child + 1; r < n && q.heap[r].When < q.heap[child].When {
			child = r
		}
		if w.When <= q.heap[child].When {
			break
		}
		q.heap[p] = q.heap[child]
		q.index[q.heap[p].Id] = p
		p = child
		moved = true
	}
	q.heap[p] = w
	q.index[w.Id] = p
	return moved
}
