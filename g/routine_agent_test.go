package g

import (
	"testing"
	"time"

	"github.com/fixkme/evloop/clock"
	utime "github.com/fixkme/evloop/util/time"
)

func TestRoutineAgentTimer(t *testing.T) {
	quit := make(chan struct{})
	defer close(quit)
	c := clock.NewClock()
	c.Start(quit)

	a := NewRoutineAgent(1024, 64)
	fired := make(chan int64, 8)
	a.Init(func(tid int64, now int64, data any) {
		fired <- tid
	}, nil)
	go a.Run()
	defer a.Close()

	waitFired := func(want int64) {
		t.Helper()
		select {
		case tid := <-fired:
			if tid != want {
				t.Fatalf("fired %d, want %d", tid, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timer %d never fired", want)
		}
	}

	now := utime.NowMs()
	id, err := c.NewTimer(now+50, nil, a.GetTimerReceiver(), nil)
	if err != nil {
		t.Fatal(err)
	}
	waitFired(id)

	id, err = c.NewTimer(utime.NowMs()+50, nil, nil, a.GetBatchReceiver())
	if err != nil {
		t.Fatal(err)
	}
	waitFired(id)
}

func TestRoutineAgentRunFunc(t *testing.T) {
	a := NewRoutineAgent(1024, 16)
	a.Init(func(tid int64, now int64, data any) {}, nil)
	go a.Run()

	ran := false
	if err := a.SyncRunFunc(func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("SyncRunFunc did not run the task")
	}

	a.Close()
	time.Sleep(50 * time.Millisecond)
	if err := a.TryRunFunc(func() {}); err != ErrRoutineClosed {
		t.Fatalf("expect ErrRoutineClosed, got %v", err)
	}
}
