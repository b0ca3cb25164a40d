package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger startup stage logger
// bootstrapLogger 启动阶段日志器
// Covers config loading and flag parsing before the import pipeline logger exists
// 覆盖导入管线日志器就绪之前的配置加载与参数解析阶段
var bootstrapLogger *zap.Logger

func init() {
	// Console encoder for the startup stage
	// 启动阶段使用控制台 encoder
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	consoleWriter := zapcore.Lock(os.Stderr)

	// DEBUG environment variable lowers the level to debug
	// DEBUG 环境变量把级别降到 debug
	level := zapcore.InfoLevel
	if os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(consoleEncoder, consoleWriter, level)
	bootstrapLogger = zap.New(core, zap.AddCaller())
}

// BootstrapLogger returns the startup stage logger
// BootstrapLogger 返回启动阶段日志器
func BootstrapLogger() *zap.Logger {
	return bootstrapLogger
}
