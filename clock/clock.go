package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fixkme/evloop/ds/timerqueue"
	"github.com/fixkme/evloop/errs"
	"github.com/fixkme/evloop/mlog"
	utime "github.com/fixkme/evloop/util/time"
)

const (
	defaultTaskSize = 10240
	retrySpanMs     = 20               // 接收方繁忙时的重投间隔 毫秒
	idleSpan        = 10 * time.Minute // 队列为空时的兜底睡眠
)

// Clock 单协程驱动的定时器调度器
// 所有对队列的修改都通过taskch投递到run协程执行
type Clock struct {
	genId  int64
	tq     *timerqueue.TimerQueue
	locs   map[int64]*_Timer // id -> 定时器数据
	taskch chan func()
	closed atomic.Bool
	mutex  sync.RWMutex // 保证closed和taskch投递的原子性
}

func NewClock() *Clock {
	c := &Clock{
		tq:     timerqueue.NewTimerQueue(),
		locs:   make(map[int64]*_Timer),
		taskch: make(chan func(), defaultTaskSize),
	}
	c.closed.Store(false)
	return c
}

func (c *Clock) Start(quit <-chan struct{}) {
	go c.run(quit)
}

func (c *Clock) NewTimer(when int64, data any, receiver chan<- *Promise, batch chan<- []*Promise) (id int64, err error) {
	t := &_Timer{
		data:     data,
		receiver: receiver,
		batch:    batch,
	}
	t.When = when
	var addErr error
	err = c.pushTask(func() {
		c.genId++
		t.Id = c.genId
		if addErr = c.addTimer(t); addErr == nil {
			id = t.Id
		}
	})
	if err == nil {
		err = addErr
	}
	return
}

func (c *Clock) CancelTimer(id int64) (ok bool, err error) {
	err = c.pushTask(func() {
		t := c.delTimer(id)
		ok = t != nil
	})
	return
}

func (c *Clock) UpdateTimer(id int64, when int64) (ok bool, err error) {
	var updErr error
	err = c.pushTask(func() {
		ok, updErr = c.updateTimer(id, when)
	})
	if err == nil {
		err = updErr
	}
	return
}

func (c *Clock) addTimer(timer *_Timer) error {
	if err := c.tq.Insert(&timer.Watcher); err != nil {
		mlog.Errorf("add timer failed id:%d, when:%d, err:%v", timer.Id, timer.When, err)
		return err
	}
	c.locs[timer.Id] = timer
	mlog.Debugf("------------add timer id:%d, when:%d, now:%d", timer.Id, timer.When, utime.NowMs())
	return nil
}

func (c *Clock) delTimer(id int64) *_Timer {
	timer, ok := c.locs[id]
	if ok {
		c.tq.RemoveId(id)
		delete(c.locs, id)
		return timer
	}
	return nil
}

func (c *Clock) updateTimer(id int64, when int64) (bool, error) {
	// 先校验再摘除, 非法的when不能弄丢原定时器
	if when == timerqueue.UnsetWhen {
		return false, errs.TimerNoWhen.Printf("id:%d", id)
	}
	t := c.delTimer(id)
	if t == nil {
		return false, nil
	}
	t.When = when
	if err := c.addTimer(t); err != nil {
		return false, err
	}
	return true, nil
}

// trigger 取出所有到期定时器并投递
func (c *Clock) trigger(nowMs int64) {
	var batchs map[chan<- []*Promise][]*Promise
	var retries []*_Timer
	for {
		w, st := c.tq.Extract(nowMs)
		if st != timerqueue.Extracted {
			break
		}
		timer := c.locs[w.Id]
		delete(c.locs, w.Id)
		if timer == nil {
			mlog.Errorf("timer data lost id:%d", w.Id)
			continue
		}
		mlog.Debugf("------------timer trigger id:%d, when:%d, now:%d", timer.Id, timer.When, nowMs)
		//传递到期定时器
		promise := &Promise{TimerId: timer.Id, NowTs: nowMs, Data: timer.data}
		if timer.batch != nil {
			if batchs == nil {
				batchs = make(map[chan<- []*Promise][]*Promise)
			}
			batchs[timer.batch] = append(batchs[timer.batch], promise)
		} else {
			select {
			case timer.receiver <- promise:
			default:
				retries = append(retries, timer) //接收方满了, 延后重投
			}
		}
	}
	for ch, promises := range batchs {
		ch <- promises
	}
	for _, timer := range retries {
		timer.When = nowMs + retrySpanMs
		c.addTimer(timer)
	}
}

// rearm 按堆顶到期时间设置下次唤醒
func (c *Clock) rearm(sleepTimer *time.Timer) {
	if !sleepTimer.Stop() {
		select {
		case <-sleepTimer.C:
		default:
		}
	}
	d := idleSpan
	if when, ok := c.tq.Peek(); ok {
		if diff := when - utime.NowMs(); diff > 0 {
			d = time.Duration(diff) * time.Millisecond
		} else {
			d = 0
		}
	}
	sleepTimer.Reset(d)
}

func (c *Clock) run(quit <-chan struct{}) {
	sleepTimer := time.NewTimer(idleSpan)
	defer sleepTimer.Stop()
	for {
		c.rearm(sleepTimer)
		select {
		case <-quit:
			// 拿写锁设置closed, 之后不会再有新任务进入taskch
			c.mutex.Lock()
			c.closed.Store(true)
			c.mutex.Unlock()
			c.drainTasks()
			return
		case fn, ok := <-c.taskch:
			if ok {
				fn()
			}
		case <-sleepTimer.C:
			c.trigger(utime.NowMs())
		}
	}
}

// drainTasks 退出时执行残留任务, 让等待方拿到closed错误
func (c *Clock) drainTasks() {
	for {
		select {
		case fn, ok := <-c.taskch:
			if ok {
				fn()
			}
		default:
			return
		}
	}
}

func (c *Clock) pushTask(f func()) (err error) {
	errch := make(chan error, 1)
	ff := func() {
		defer close(errch)
		if c.closed.Load() {
			errch <- errs.ClockClosed
			return
		}
		f()
	}
	// 读锁覆盖closed判断和投递, 与run退出时的写锁互斥,
	// 投进taskch的任务保证会被执行或drain
	c.mutex.RLock()
	if c.closed.Load() {
		c.mutex.RUnlock()
		return errs.ClockClosed
	}
	select {
	case c.taskch <- ff:
		c.mutex.RUnlock()
	default:
		c.mutex.RUnlock()
		return errs.ClockTaskFull
	}
	err = <-errch
	return
}
