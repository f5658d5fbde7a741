package time

import (
	"fmt"
	"time"
)

const (
	SecMs  = 1000
	MinMs  = 60 * SecMs
	HourMs = 60 * MinMs
	DayMs  = 24 * HourMs
)

const TimeFormat = "2006-01-02T15:04:05.000Z"

var (
	timezoneOffset = int64(0)         // ms 与零时区的偏移毫秒数
	timeOffset     = time.Duration(0) // 时间偏移
	location       = time.UTC         // 默认UTC时区
)

// SetTimezone 设置时区
func SetTimezone(offsetSeconds int64) {
	name := fmt.Sprintf("UTC%+d", offsetSeconds/3600)
	location = time.FixedZone(name, int(offsetSeconds))
	timezoneOffset = offsetSeconds * 1e3
}

func GetLocation() *time.Location {
	return location
}

// GetTimeZoneOffset 获取时区偏移量
func GetTimeZoneOffset() int64 {
	return timezoneOffset
}

// SetTimeOffset 设置时间偏移量, 用于调试时拨快时钟
func SetTimeOffset(newOffset time.Duration) {
	timeOffset = newOffset
}

// GetTimeOffset 获取时间偏移量
func GetTimeOffset() time.Duration {
	return timeOffset
}

// Now 获取当前时间
func Now() time.Time {
	now := time.Now()
	if timeOffset != 0 {
		now = now.Add(timeOffset)
	}
	return now.In(location)
}

// NowMs 获取当前时间的毫秒时间戳
func NowMs() int64 {
	return Now().UnixMilli()
}

// Time2Ms 系统时间转化为 ms时间戳
func Time2Ms(t time.Time) int64 {
	return t.UnixMilli()
}

// Ms2Time ms时间戳转化为时间
func Ms2Time(ms int64) time.Time {
	return time.UnixMilli(ms).In(location)
}
