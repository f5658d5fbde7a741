package clock

import "sync"

var (
	builtinClock *Clock
	once         sync.Once
	NewTimer     func(when int64, data any, receiver chan<- *Promise, batch chan<- []*Promise) (id int64, err error)
	CancelTimer  func(id int64) (ok bool, err error)
	UpdateTimer  func(id int64, when int64) (ok bool, err error)
)

// Default 返回内置时钟, Start之后可用
func Default() *Clock {
	return builtinClock
}

func Start(quit <-chan struct{}) {
	once.Do(func() {
		builtinClock = NewClock()
		builtinClock.Start(quit)
		NewTimer = builtinClock.NewTimer
		CancelTimer = builtinClock.CancelTimer
		UpdateTimer = builtinClock.UpdateTimer
	})
}
