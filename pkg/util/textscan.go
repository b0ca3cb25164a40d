// Package util 提供通用工具函数
// Package util provides common utility functions
package util

import (
	"regexp"
	"strings"
)

// NoteLink represents a cross-note URI reference extracted from content
// NoteLink 表示从内容中提取的跨笔记 URI 引用
type NoteLink struct {
	NoteID string // The referenced note id // 被引用的笔记 ID
	Raw    string // The full matched URI // 完整匹配到的 URI
}

// hashtagRegex matches #tag and the full-width ＃tag variant at a word start
// Group 1: the tag text without the leading marker
// hashtagRegex 匹配 #tag 与全角 ＃tag，捕获组为去掉前缀的标签文本
var hashtagRegex = regexp.MustCompile(`(?:^|\s)[#＃]([^\s#＃]+)`)

// noteLinkRegex matches marginnote4app://note/<id> style URIs
// noteLinkRegex 匹配 marginnote4app://note/<id> 形式的 URI
var noteLinkRegex = regexp.MustCompile(`marginnote4app://note/([0-9A-Za-z\-]+)`)

// ParseHashtags extracts hashtags from content, deduplicated in first-seen order
// ParseHashtags 从内容中提取话题标签，按首次出现顺序去重
func ParseHashtags(content string) []string {
	if content == "" {
		return nil
	}

	matches := hashtagRegex.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var tags []string
	for _, match := range matches {
		tag := match[1]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// ParseNoteLinks extracts cross-note URI references, deduplicated by note id
// ParseNoteLinks 提取跨笔记 URI 引用，按笔记 ID 去重
func ParseNoteLinks(content string) []NoteLink {
	if content == "" {
		return nil
	}

	matches := noteLinkRegex.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var links []NoteLink
	for _, match := range matches {
		id := match[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, NoteLink{NoteID: id, Raw: match[0]})
	}
	return links
}

// IsTagOrLinkLine reports whether a line consists only of hashtags and note links
// IsTagOrLinkLine 判断一行是否只包含标签与笔记链接
func IsTagOrLinkLine(line string) bool {
	rest := noteLinkRegex.ReplaceAllString(line, "")
	rest = hashtagRegex.ReplaceAllString(rest, "")
	return strings.TrimSpace(rest) == ""
}

// 列表行标记：数字、字母、罗马数字编号以及常见项目符号
var listMarkerRegexes = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\d+[.)、]\s*`),                 // 1.  2)  3、
	regexp.MustCompile(`^\s*[a-zA-Z][.)]\s+`),             // a.  B)
	regexp.MustCompile(`^\s*[ivxlcIVXLC]+[.)]\s+`),        // iv.  VII)
	regexp.MustCompile(`^\s*[-*•·‣◦]\s+`),                 // bullets
	regexp.MustCompile(`^\s*[（(]\s*\d+\s*[)）]\s*`),        // (1)  （2）
}

// IsListMarkerLine reports whether the line starts with a list marker
// IsListMarkerLine 判断一行是否以列表标记开头
func IsListMarkerLine(line string) bool {
	for _, re := range listMarkerRegexes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// LooksLikeList reports whether text reads as a bulleted/numbered list:
// at least half of its non-empty lines carry a list marker.
// LooksLikeList 判断文本是否为列表：非空行中至少一半带列表标记
func LooksLikeList(text string) bool {
	var nonEmpty, marked int
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		if IsListMarkerLine(line) {
			marked++
		}
	}
	return nonEmpty > 0 && marked*2 >= nonEmpty
}
