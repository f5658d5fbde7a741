package time

import (
	"testing"
	"time"
)

func TestTimeOffset(t *testing.T) {
	defer SetTimeOffset(0)
	SetTimeOffset(time.Hour)
	if GetTimeOffset() != time.Hour {
		t.Fatalf("offset %v", GetTimeOffset())
	}
	diff := NowMs() - time.Now().UnixMilli()
	if diff < HourMs-SecMs || diff > HourMs+SecMs {
		t.Fatalf("shifted now off by %dms", diff)
	}
	SetTimeOffset(0)
	if GetTimeOffset() != 0 {
		t.Fatalf("offset not reset: %v", GetTimeOffset())
	}
}

func TestTimezone(t *testing.T) {
	defer SetTimezone(0)
	SetTimezone(8 * 3600)
	if GetTimeZoneOffset() != 8*3600*1000 {
		t.Fatalf("timezone offset %d", GetTimeZoneOffset())
	}
	// 时区只影响展示, 不影响时间戳
	if d := NowMs() - time.Now().UnixMilli(); d < -SecMs || d > SecMs {
		t.Fatalf("timezone shifted the timestamp by %dms", d)
	}
	_, off := Now().Zone()
	if off != 8*3600 {
		t.Fatalf("zone offset %d", off)
	}
	if Ms2Time(0).Location() != GetLocation() {
		t.Fatal("Ms2Time not in configured location")
	}
}
