package clock

import (
	"github.com/fixkme/evloop/ds/timerqueue"
)

type Promise struct {
	TimerId int64
	NowTs   int64 // 当前时间戳 毫秒
	Data    any
}

// 定时器实现
// receiver和batch 两种投递方式是互斥的，选择其中一个
// 如果batch可用的话，默认优先使用batch，否则使用receiver
type _Timer struct {
	timerqueue.Watcher                   // id和到期时间, 在队列中期间不可修改
	data               any               // 数据
	receiver           chan<- *Promise   // 处理器
	batch              chan<- []*Promise // 批量处理器
}
