package util

import "strings"

// UniqueStrings filters a slice to first occurrences, preserving order
// UniqueStrings 过滤切片保留首次出现的元素，维持原顺序
func UniqueStrings(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// UniqueTrimmedStrings filters to first occurrences of trimmed, non-empty values
// UniqueTrimmedStrings 去重并丢弃修剪后为空的元素
func UniqueTrimmedStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, item)
	}
	return out
}

// ContainsString reports whether the slice contains the value
func ContainsString(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
