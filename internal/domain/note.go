// Package domain 定义导入流程的领域模型和接口
package domain

import (
	"strings"

	"github.com/haierkeys/margin-note-import-service/pkg/timex"
)

// Rect 页面坐标矩形
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// VisualExcerpt 摘录的可视区域：页码加矩形
type VisualExcerpt struct {
	PageNo int  `json:"pageNo"`
	Rect   Rect `json:"rect"`
}

// Selection 高亮片段的单个选择区域
type Selection struct {
	PageNo int  `json:"pageNo"`
	Rect   Rect `json:"rect"`
}

// Highlight 从高亮 blob 解出的片段
type Highlight struct {
	// Text 高亮文本
	Text string `json:"text"`
	// CoordsHash 坐标哈希，用于与媒体记录关联
	CoordsHash string `json:"coordsHash"`
	// Selections 选择区域列表
	Selections []Selection `json:"selections,omitempty"`
}

// NoteLink 指向其他笔记的链接，带展示文本
type NoteLink struct {
	// TargetID 目标笔记 ID
	TargetID string `json:"targetId"`
	// Text 链接展示文本
	Text string `json:"text,omitempty"`
}

// TextKind 其他文本片段的分类
type TextKind string

const (
	// TextKindList 列表（编号/项目符号行占多数）
	TextKindList TextKind = "list"
	// TextKindProse 普通段落
	TextKindProse TextKind = "prose"
)

// TextFragment 非标签、非链接的其他格式化文本
type TextFragment struct {
	Text string   `json:"text"`
	Kind TextKind `json:"kind"`
}

// NoteRecord 规范化的笔记记录
// NoteID 一经赋值不可变；其余字段可在去重阶段由同组记录补全
type NoteRecord struct {
	// NoteID 唯一标识
	NoteID string `json:"noteId"`
	// TopicID 所属主题
	TopicID string `json:"topicId,omitempty"`
	// GroupNoteID 非空表示合并/派生变体，空表示原始变体
	GroupNoteID string `json:"groupNoteId,omitempty"`
	// ExternalID 外部工具回链
	ExternalID string `json:"externalId,omitempty"`

	// Title 标题
	Title string `json:"title,omitempty"`
	// Excerpt 摘录文本
	Excerpt string `json:"excerpt,omitempty"`
	// NotesText 个人笔记文本
	NotesText string `json:"notesText,omitempty"`

	// Hashtags 提取出的话题标签，按首次出现顺序
	Hashtags []string `json:"hashtags,omitempty"`
	// LinkedNoteIDs 提取出的跨笔记链接 ID，按首次出现顺序
	LinkedNoteIDs []string `json:"linkedNoteIds,omitempty"`
	// OtherTexts 其他格式化文本片段
	OtherTexts []TextFragment `json:"otherTexts,omitempty"`

	// MediaHashes 媒体附件引用（哈希），字节归共享媒体集合所有
	MediaHashes []string `json:"mediaHashes,omitempty"`
	// Visual 可视摘录区域
	Visual *VisualExcerpt `json:"visual,omitempty"`

	// Links 带展示文本的跨笔记链接（来自 notes blob 的 LinkNote 条目）
	Links []NoteLink `json:"links,omitempty"`
	// ChildNoteIDs notes blob 中携带裸 noteid 的子笔记
	ChildNoteIDs []string `json:"childNoteIds,omitempty"`
	// Highlights highlights blob 解出的高亮片段
	Highlights []Highlight `json:"highlights,omitempty"`

	// WordCount CJK 感知的词数统计
	WordCount int `json:"wordCount,omitempty"`

	// CreatedAt / UpdatedAt Apple 参考时间换算后的时间戳
	CreatedAt timex.Time `json:"-"`
	UpdatedAt timex.Time `json:"-"`
}

// IsMerged 判断是否为合并/派生变体
func (n *NoteRecord) IsMerged() bool {
	return n.GroupNoteID != ""
}

// IsOriginal 判断是否为原始变体
func (n *NoteRecord) IsOriginal() bool {
	return n.GroupNoteID == ""
}

// IsContentless 判断记录是否没有任何内容
func (n *NoteRecord) IsContentless() bool {
	return strings.TrimSpace(n.Title) == "" &&
		strings.TrimSpace(n.Excerpt) == "" &&
		strings.TrimSpace(n.NotesText) == "" &&
		len(n.Hashtags) == 0 &&
		len(n.LinkedNoteIDs) == 0 &&
		len(n.OtherTexts) == 0 &&
		len(n.MediaHashes) == 0 &&
		len(n.Highlights) == 0 &&
		n.Visual == nil
}

// RichnessScore 内容丰富度评分，用于在合并变体中挑选主记录
// 权重：摘录 1 倍、笔记 2 倍、标题 3 倍、每个标签 10 分、
// 每个链接 5 分、每个文本片段 2 分、每个媒体 15 分、可视区域 20 分
func (n *NoteRecord) RichnessScore() int {
	score := len(n.Excerpt) + 2*len(n.NotesText) + 3*len(n.Title)
	score += 10 * len(n.Hashtags)
	score += 5 * len(n.LinkedNoteIDs)
	score += 2 * len(n.OtherTexts)
	score += 15 * len(n.MediaHashes)
	if n.Visual != nil {
		score += 20
	}
	return score
}
