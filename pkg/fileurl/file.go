// Package fileurl 提供文件路径相关的工具函数
package fileurl

import (
	"os"
	"path/filepath"
	"strings"
)

// IsFile determines if the given path is a file
// IsFile 判断所给路径是否为文件
func IsFile(path string) bool {
	return !IsDir(path)
}

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if a file or directory exists
// IsExist 判断文件或文件夹是否存在
func IsExist(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// GetFileExt gets file extension
// GetFileExt 获取文件后缀
func GetFileExt(name string) string {
	return filepath.Ext(name)
}

// GetFileName strips directory parts from a path
// GetFileName 获取不含目录的文件名
func GetFileName(name string) string {
	return filepath.Base(name)
}

// GetExePath returns the directory of the running executable
// GetExePath 获取程序执行目录
func GetExePath() string {
	exePath, err := os.Executable()
	if err != nil {
		dir, _ := os.Getwd()
		return dir
	}
	return filepath.Dir(exePath)
}

// CreatePath creates all parent directories for the given file path
// CreatePath 为所给文件路径创建全部父目录
func CreatePath(path string, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// HasSuffixFold reports whether name ends with suffix, case-insensitively
// HasSuffixFold 判断文件名是否以某后缀结尾（忽略大小写）
func HasSuffixFold(name, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix))
}
