package mlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultDirMode  os.FileMode = 0755
	defaultFileMode os.FileMode = 0644
	defaultFileFlag int         = os.O_APPEND | os.O_CREATE | os.O_WRONLY

	rotateMaxSize  = int64(100 * 1024 * 1024) // 100 MB
	rotateInterval = 30 * time.Second
)

type loggerImp struct {
	path   string
	file   *os.File
	ll     *log.Logger
	buff   chan string
	level  Level
	stdOut bool
}

func newDefaultLogger(logpath, logName string, level Level, stdOut bool) (*loggerImp, error) {
	// 默认使用当前路径
	if len(logpath) == 0 {
		logpath = "."
	}
	if logName == "" {
		logName = "mlog"
	}
	logfile, err := openFile(filepath.Join(logpath, logName+".log"))
	if err != nil {
		return nil, err
	}
	if stdOut {
		log.SetFlags(log.Ldate | log.Lmicroseconds)
	}
	return &loggerImp{
		path:   logpath,
		ll:     log.New(logfile, "", log.Ldate|log.Lmicroseconds),
		file:   logfile,
		buff:   make(chan string, 0x10000),
		level:  level,
		stdOut: stdOut,
	}, nil
}

// Start 启动落盘协程, ctx取消时写完残留日志再退出
func (me *loggerImp) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("log recover error %v\n", r)
			}
			me.file.Close()
			wg.Done()
		}()

		timer := time.NewTimer(rotateInterval)
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case str := <-me.buff:
						me.output(str)
					default:
						return
					}
				}
			case str := <-me.buff:
				me.output(str)
			case <-timer.C:
				me.tryRotate()
				timer.Reset(rotateInterval)
			}
		}
	}()
}

func (me *loggerImp) output(str string) {
	if me.stdOut {
		log.Println(str)
	}
	me.ll.Println(str)
}

func (me *loggerImp) tryRotate() {
	info, err := os.Stat(me.file.Name())
	if err != nil {
		log.Println("mlog stat error", err)
		return
	}
	if info.Size() <= rotateMaxSize {
		return
	}
	file, err := rotateLogFile(me.file.Name())
	if err != nil {
		log.Println("mlog rotateLogFile error", err)
		return
	}
	me.ll.SetOutput(file)
	me.file.Close()
	me.file = file
}

func (me *loggerImp) Log(level Level, args ...any) {
	if me.level >= level {
		me.buff <- getLevelTag(level) + fmt.Sprint(args...)
	}
	if level == FatalLevel {
		time.Sleep(time.Second) //尽量让缓冲落盘
		os.Exit(1)
	}
}

func (me *loggerImp) Logf(level Level, format string, args ...any) {
	if me.level >= level {
		me.buff <- getLevelTag(level) + fmt.Sprintf(format, args...)
	}
	if level == FatalLevel {
		time.Sleep(time.Second)
		os.Exit(1)
	}
}

func openFile(fullpath string) (*os.File, error) {
	fullpath = strings.ReplaceAll(fullpath, "\\", "/")
	dir := filepath.Dir(fullpath)
	if _, err := os.Stat(dir); err != nil && !os.IsExist(err) {
		if err = os.MkdirAll(dir, defaultDirMode); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(fullpath, defaultFileFlag, defaultFileMode)
}

func rotateLogFile(filePath string) (*os.File, error) {
	timestamp := time.Now().Format("20060102_150405")
	if err := os.Rename(filePath, fmt.Sprintf("%s.%s", filePath, timestamp)); err != nil {
		return nil, err
	}
	return os.Create(filePath)
}
