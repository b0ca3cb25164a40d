// Package app 提供应用配置与版本信息
package app

import (
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File   string       `yaml:"-"` // 配置文件路径，不序列化
	Log    LogConfig    `yaml:"log"`
	Import ImportConfig `yaml:"import"`
	Report ReportConfig `yaml:"report"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"false"`
}

// ImportConfig 导入流程配置
type ImportConfig struct {
	// StrictDecode blob 解码失败时报错而不是降级为空结果
	StrictDecode bool `yaml:"strict-decode" default:"false"`
	// Workers 行映射的并发 worker 数，<=1 表示串行
	Workers int `yaml:"workers" default:"4"`
	// CollapseWarnRatio 输出坍缩告警阈值
	CollapseWarnRatio float64 `yaml:"collapse-warn-ratio" default:"0.9"`
	// TempPath 数据库解包临时路径，为空时使用系统临时目录
	TempPath string `yaml:"temp-path" default:"storage/temp"`
}

// ReportConfig 报告输出配置
type ReportConfig struct {
	// Path 报告 JSON 输出路径
	Path string `yaml:"path" default:"storage/report.json"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}
