package global

import (
	"fmt"
	"runtime"

	dumpx "github.com/gookit/goutil/dump"
	"go.uber.org/zap"
)

// Logger 导入管线的进程级日志器，由 import 命令在配置就绪后赋值
// Process-wide logger for the import pipeline, assigned by the import command once config is ready
var Logger *zap.Logger

func Log() *zap.Logger {
	return Logger
}

// Dump 调试用：带调用位置打印任意值
func Dump(a ...any) {
	_, file, line, ok := runtime.Caller(1)
	if ok {
		fmt.Printf("\033[32m%s:%d:\033[0m\n", file, line)
	}
	dumpx.P(a...)
}
