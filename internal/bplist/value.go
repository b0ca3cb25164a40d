// Package bplist 实现二进制 property list 的解码
// 输出为通用值树：nil/bool/int64/float64/time.Time/[]byte/string/UID/[]any/*Dict
package bplist

import "github.com/spf13/cast"

// UID keyed archiver 对象表引用
// 仅相对伴随的对象表有意义，离开解析层前必须被解析掉
type UID uint64

// Dict 保序字典，键值都是通用值
type Dict struct {
	// Keys 按出现顺序的键
	Keys []any
	// Values 与 Keys 对应的值
	Values []any
}

// Len 返回键值对数量
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Keys)
}

// Get 按字符串键查找值
func (d *Dict) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	for i, k := range d.Keys {
		if s, ok := k.(string); ok && s == key {
			return d.Values[i], true
		}
	}
	return nil, false
}

// GetString 按字符串键查找并转为字符串
func (d *Dict) GetString(key string) string {
	v, ok := d.Get(key)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// Set 追加或覆盖一个字符串键
func (d *Dict) Set(key string, value any) {
	for i, k := range d.Keys {
		if s, ok := k.(string); ok && s == key {
			d.Values[i] = value
			return
		}
	}
	d.Keys = append(d.Keys, key)
	d.Values = append(d.Values, value)
}

// ObjectGraph 解码结果：对象表加根对象
type ObjectGraph struct {
	// Objects 物化后的对象表，可按下标寻址
	Objects []any
	// Root 根对象（对象表 topObject 项）
	Root any
	// Degraded 是否来自降级的线性扫描（trailer 缺失/不一致时）
	Degraded bool
}
