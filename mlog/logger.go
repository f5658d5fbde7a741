package mlog

import (
	"context"
	"sync"
)

type Level uint32

const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	NoticeLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// Logger Fatal级别由实现负责退出进程
type Logger interface {
	Log(level Level, args ...any)
	Logf(level Level, format string, args ...any)
}

var logger Logger

func SetLogger(l Logger) {
	logger = l
}

func UseDefaultLogger(ctx context.Context, wg *sync.WaitGroup, path string, logName string, level Level, stdOut bool) error {
	l, err := newDefaultLogger(path, logName, level, stdOut)
	if err != nil {
		return err
	}
	l.Start(ctx, wg)
	SetLogger(l)
	return nil
}

func UseStdLogger(level Level) error {
	SetLogger(newStdoutLogger(level))
	return nil
}

func getLevelTag(level Level) string {
	switch level {
	case FatalLevel:
		return "[fatal] "
	case ErrorLevel:
		return "[error] "
	case WarnLevel:
		return "[warn] "
	case NoticeLevel:
		return "[notice] "
	case InfoLevel:
		return "[info] "
	case DebugLevel:
		return "[debug] "
	case TraceLevel:
		return "[trace] "
	}
	return ""
}

func Trace(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(TraceLevel, a...)
}

func Tracef(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(TraceLevel, format, a...)
}

func Debug(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(DebugLevel, a...)
}

func Debugf(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(DebugLevel, format, a...)
}

func Info(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(InfoLevel, a...)
}

func Infof(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(InfoLevel, format, a...)
}

func Notice(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(NoticeLevel, a...)
}

func Noticef(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(NoticeLevel, format, a...)
}

func Warn(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(WarnLevel, a...)
}

func Warnf(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(WarnLevel, format, a...)
}

func Error(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(ErrorLevel, a...)
}

func Errorf(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(ErrorLevel, format, a...)
}

func Fatal(a ...any) {
	if logger == nil {
		return
	}
	logger.Log(FatalLevel, a...)
}

func Fatalf(format string, a ...any) {
	if logger == nil {
		return
	}
	logger.Logf(FatalLevel, format, a...)
}
