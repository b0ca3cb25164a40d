package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}

	// Verify it's not returning time.Now() by waiting a bit
	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestFromAppleSeconds(t *testing.T) {
	// 0 seconds after the reference date is 2001-01-01 00:00:00 UTC
	got := FromAppleSeconds(0)
	want := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Time().Equal(want) {
		t.Errorf("FromAppleSeconds(0) = %v, want %v", got.Time(), want)
	}

	// One day later
	got = FromAppleSeconds(86400)
	want = time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Time().Equal(want) {
		t.Errorf("FromAppleSeconds(86400) = %v, want %v", got.Time(), want)
	}

	if got.AppleSeconds() != 86400 {
		t.Errorf("AppleSeconds() = %v, want 86400", got.AppleSeconds())
	}
}
