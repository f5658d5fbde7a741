package timerqueue

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/fixkme/evloop/errs"
)

// 校验堆序和索引一致性
func checkQueue(t *testing.T, q *TimerQueue) {
	t.Helper()
	n := len(q.heap)
	for i := 0; i < n; i++ {
		w := q.heap[i]
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < n && q.heap[c].When < w.When {
				t.Fatalf("heap broken: parent[%d]=%d > child[%d]=%d", i, w.When, c, q.heap[c].When)
			}
		}
		p, ok := q.index[w.Id]
		if !ok || p != i {
			t.Fatalf("index broken: id %d at slot %d, index says %d,%v", w.Id, i, p, ok)
		}
	}
	if len(q.index) != n {
		t.Fatalf("index has %d entries, heap has %d", len(q.index), n)
	}
}

// 参照线性扫描求最小值
func scanMin(q *TimerQueue) (int64, bool) {
	if len(q.heap) == 0 {
		return 0, false
	}
	min := q.heap[0].When
	for _, w := range q.heap {
		if w.When < min {
			min = w.When
		}
	}
	return min, true
}

func TestInsertPeek(t *testing.T) {
	q := NewTimerQueue()
	if _, ok := q.Peek(); ok {
		t.Fatal("peek on empty queue")
	}
	size := 200
	pool := make([]int, size)
	for i := range pool {
		pool[i] = i + 1
	}
	rand.Shuffle(size, func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for _, v := range pool {
		w := &Watcher{Id: int64(v), When: int64(v * 10)}
		if err := q.Insert(w); err != nil {
			t.Fatal(err)
		}
		checkQueue(t, q)
		want, _ := scanMin(q)
		got, ok := q.Peek()
		if !ok || got != want {
			t.Fatalf("peek %d, scan %d", got, want)
		}
	}
	if q.Len() != size {
		t.Fatalf("len %d, want %d", q.Len(), size)
	}
}

func TestInsertErrors(t *testing.T) {
	q := NewTimerQueue()
	if err := q.Insert(&Watcher{Id: 1, When: UnsetWhen}); !errors.Is(err, errs.TimerNoWhen) {
		t.Fatalf("expect TimerNoWhen, got %v", err)
	}
	if q.Len() != 0 {
		t.Fatal("failed insert must not modify the queue")
	}
	if err := q.Insert(&Watcher{Id: 1, When: 100}); err != nil {
		t.Fatal(err)
	}
	err := q.Insert(&Watcher{Id: 1, When: 200})
	if !errors.Is(err, errs.TimerDuplicated) {
		t.Fatalf("expect TimerDuplicated, got %v", err)
	}
	if q.Len() != 1 {
		t.Fatal("duplicate insert must not modify the queue")
	}
	checkQueue(t, q)
	if when, _ := q.Peek(); when != 100 {
		t.Fatalf("peek %d after rejected insert", when)
	}
}

func TestExtract(t *testing.T) {
	q := NewTimerQueue()
	if w, st := q.Extract(1 << 60); w != nil || st != Empty {
		t.Fatalf("empty queue: %v %v", w, st)
	}
	q.Insert(&Watcher{Id: 1, When: 50})
	q.Insert(&Watcher{Id: 2, When: 10})
	q.Insert(&Watcher{Id: 3, When: 30})
	if when, _ := q.Peek(); when != 10 {
		t.Fatalf("peek %d", when)
	}
	if w, st := q.Extract(5); w != nil || st != NotDue {
		t.Fatalf("not due: %v %v", w, st)
	}
	if q.Len() != 3 {
		t.Fatal("NotDue must not modify the queue")
	}
	w, st := q.Extract(20)
	if st != Extracted || w.Id != 2 {
		t.Fatalf("extract(20): %v %v", w, st)
	}
	checkQueue(t, q)
	if when, _ := q.Peek(); when != 30 {
		t.Fatalf("peek %d", when)
	}
	q.RemoveId(1)
	checkQueue(t, q)
	w, st = q.Extract(100)
	if st != Extracted || w.Id != 3 {
		t.Fatalf("extract(100): %v %v", w, st)
	}
	if w, st := q.Extract(100); w != nil || st != Empty {
		t.Fatalf("cancelled watcher resurfaced: %v %v", w, st)
	}
}

func TestRemove(t *testing.T) {
	q := NewTimerQueue()
	if got := q.RemoveId(42); got != nil {
		t.Fatalf("remove unknown id returned %v", got)
	}
	q.Remove(nil)
	q.Remove(&Watcher{Id: 42, When: 1})

	size := 100
	ws := make([]*Watcher, 0, size)
	for i := 1; i <= size; i++ {
		w := &Watcher{Id: int64(i), When: int64(rand.Intn(1000))}
		ws = append(ws, w)
		if err := q.Insert(w); err != nil {
			t.Fatal(err)
		}
	}
	rand.Shuffle(size, func(i, j int) {
		ws[i], ws[j] = ws[j], ws[i]
	})
	for _, w := range ws {
		before := q.Len()
		got := q.RemoveId(w.Id)
		if got != w {
			t.Fatalf("removed %v, want %v", got, w)
		}
		if q.Len() != before-1 {
			t.Fatalf("len %d after remove, want %d", q.Len(), before-1)
		}
		checkQueue(t, q)
		if got := q.RemoveId(w.Id); got != nil {
			t.Fatalf("double remove returned %v", got)
		}
		if q.Len() != before-1 {
			t.Fatal("no-op remove changed the queue")
		}
	}
	if q.Len() != 0 {
		t.Fatalf("len %d after removing all", q.Len())
	}
}

func TestDrainOrder(t *testing.T) {
	q := NewTimerQueue()
	size := 300
	now := int64(5000)
	dueCount := 0
	for i := 1; i <= size; i++ {
		when := int64(rand.Intn(10000))
		if when <= now {
			dueCount++
		}
		if err := q.Insert(&Watcher{Id: int64(i), When: when}); err != nil {
			t.Fatal(err)
		}
	}
	prev := int64(-1)
	drained := 0
	for {
		w, st := q.Extract(now)
		if st != Extracted {
			if st == NotDue {
				if when, _ := q.Peek(); when <= now {
					t.Fatalf("NotDue but peek=%d <= now=%d", when, now)
				}
			}
			break
		}
		if w.When > now {
			t.Fatalf("extracted not-due watcher id:%d when:%d", w.Id, w.When)
		}
		if w.When < prev {
			t.Fatalf("drain out of order: %d after %d", w.When, prev)
		}
		prev = w.When
		drained++
		checkQueue(t, q)
	}
	if drained != dueCount {
		t.Fatalf("drained %d, want %d", drained, dueCount)
	}
	// 留下的全部未到期
	for q.Len() > 0 {
		w, st := q.Extract(1 << 62)
		if st != Extracted {
			t.Fatalf("state %v with %d left", st, q.Len())
		}
		if w.When <= now {
			t.Fatalf("due watcher id:%d when:%d survived the drain", w.Id, w.When)
		}
	}
}

// 随机混合操作下的不变式
func TestRandomOps(t *testing.T) {
	q := NewTimerQueue()
	live := map[int64]*Watcher{}
	var nextId int64
	now := int64(0)
	for step := 0; step < 5000; step++ {
		switch rand.Intn(4) {
		case 0, 1:
			nextId++
			w := &Watcher{Id: nextId, When: now + int64(rand.Intn(200))}
			if err := q.Insert(w); err != nil {
				t.Fatal(err)
			}
			live[w.Id] = w
		case 2:
			for id := range live {
				q.RemoveId(id)
				delete(live, id)
				break
			}
		case 3:
			now += int64(rand.Intn(50))
			for {
				w, st := q.Extract(now)
				if st != Extracted {
					break
				}
				if w.When > now {
					t.Fatalf("not due: when:%d now:%d", w.When, now)
				}
				if _, ok := live[w.Id]; !ok {
					t.Fatalf("extracted dead id:%d", w.Id)
				}
				delete(live, w.Id)
			}
		}
		if q.Len() != len(live) {
			t.Fatalf("len %d, live %d", q.Len(), len(live))
		}
	}
	checkQueue(t, q)
	fmt.Printf("final size %d, now %d\n", q.Len(), now)
}
