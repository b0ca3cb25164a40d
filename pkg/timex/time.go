// Package timex 提供固定时间值的包装类型与 Apple 参考时间换算
package timex

import "time"

// AppleEpochOffset Apple 参考时间（2001-01-01 00:00:00 UTC）相对 Unix 纪元的秒数
const AppleEpochOffset int64 = 978307200

// Time 包装 time.Time，保证取值静态不变
type Time time.Time

// Now 返回当前时间的 Time
func Now() Time {
	return Time(time.Now())
}

// Time 返回底层 time.Time
func (t Time) Time() time.Time {
	return time.Time(t)
}

// Unix 返回 Unix 秒
func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

// UnixMilli 返回 Unix 毫秒
func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

// UnixMicro 返回 Unix 微秒
func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

// UnixNano 返回 Unix 纳秒
func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// IsZero 判断是否为零值
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

// Format 按布局格式化
func (t Time) Format(layout string) string {
	return time.Time(t).Format(layout)
}

// MarshalJSON 以 RFC3339 字符串序列化
func (t Time) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

// UnmarshalJSON 从 RFC3339 字符串反序列化
func (t *Time) UnmarshalJSON(data []byte) error {
	var tt time.Time
	if err := tt.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Time(tt)
	return nil
}

// FromAppleSeconds converts seconds since the Apple reference date to a Time.
// FromAppleSeconds 将 Apple 参考时间秒数转换为 Time
func FromAppleSeconds(sec float64) Time {
	unix := float64(AppleEpochOffset) + sec
	s := int64(unix)
	ns := int64((unix - float64(s)) * float64(time.Second))
	return Time(time.Unix(s, ns).UTC())
}

// AppleSeconds returns the value in seconds since the Apple reference date.
// AppleSeconds 返回相对 Apple 参考时间的秒数
func (t Time) AppleSeconds() float64 {
	return float64(t.Unix() - AppleEpochOffset)
}
