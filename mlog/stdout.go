package mlog

import (
	"fmt"
	"log"
	"os"
)

type stdoutLogger struct {
	level Level
}

func newStdoutLogger(level Level) *stdoutLogger {
	log.SetFlags(log.Ldate | log.Lmicroseconds)
	return &stdoutLogger{
		level: level,
	}
}

func (l *stdoutLogger) Log(level Level, args ...any) {
	if l.level >= level {
		log.Println(getLevelTag(level) + fmt.Sprint(args...))
	}
	if level == FatalLevel {
		os.Exit(1)
	}
}

func (l *stdoutLogger) Logf(level Level, format string, args ...any) {
	if l.level >= level {
		log.Println(getLevelTag(level) + fmt.Sprintf(format, args...))
	}
	if level == FatalLevel {
		os.Exit(1)
	}
}
