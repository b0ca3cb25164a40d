// Package code 定义导入流程使用的错误码
package code

import "fmt"

// Code 错误码对象，携带状态码与消息
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误消息
	msg string
	// 错误详细信息
	details []string
}

var codes = map[int]string{}

// NewError 注册一个失败错误码，重复注册会 panic
func NewError(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = msg
	return &Code{code: code, status: false, msg: msg}
}

// NewSuss 注册一个成功码
func NewSuss(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	codes[code] = msg
	return &Code{code: code, status: true, msg: msg}
}

// Code 返回状态码
func (e *Code) Code() int {
	return e.code
}

// Msg 返回消息
func (e *Code) Msg() string {
	return e.msg
}

// Status 返回状态
func (e *Code) Status() bool {
	return e.status
}

// Details 返回详情
func (e *Code) Details() []string {
	return e.details
}

// WithDetails 追加详情并返回新的 Code
func (e *Code) WithDetails(details ...string) *Code {
	newCode := *e
	newCode.details = append(newCode.details[:len(newCode.details):len(newCode.details)], details...)
	return &newCode
}

// Error 实现 error 接口
func (e *Code) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.code, e.msg)
}
