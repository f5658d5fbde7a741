package errs

const (
	ErrCode_OK              = 0
	ErrCode_Unknown         = 1
	ErrCode_TimerNoWhen     = 2
	ErrCode_TimerDuplicated = 3
	ErrCode_ClockClosed     = 4
	ErrCode_ClockTaskFull   = 5
)

var (
	Unknown         = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	TimerNoWhen     = CreateCodeError(ErrCode_TimerNoWhen, "TIMER_NO_WHEN")
	TimerDuplicated = CreateCodeError(ErrCode_TimerDuplicated, "TIMER_DUPLICATED")
	ClockClosed     = CreateCodeError(ErrCode_ClockClosed, "CLOCK_CLOSED")
	ClockTaskFull   = CreateCodeError(ErrCode_ClockTaskFull, "CLOCK_TASK_FULL")
)
