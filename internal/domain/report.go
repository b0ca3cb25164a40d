package domain

import "github.com/haierkeys/margin-note-import-service/pkg/timex"

// StageError 单个阶段的失败摘要
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Report 一次导入运行的统计报告
type Report struct {
	// RunID 本次运行的标识
	RunID string `json:"runId"`

	// EntriesTotal / EntriesSkipped 容器条目统计
	EntriesTotal   int `json:"entriesTotal"`
	EntriesSkipped int `json:"entriesSkipped"`

	// NotesTotal 输入的笔记行数
	NotesTotal int `json:"notesTotal"`
	// NotesMapped 成功映射的记录数
	NotesMapped int `json:"notesMapped"`
	// NotesSkipped 映射失败被跳过的行数
	NotesSkipped int `json:"notesSkipped"`

	// Topics / MediaRecords 查找表大小
	Topics       int `json:"topics"`
	MediaRecords int `json:"mediaRecords"`

	// Groups 分组数量
	Groups int `json:"groups"`
	// Deduplicated 去重后输出的记录数
	Deduplicated int `json:"deduplicated"`
	// GroupsDropped 没有产出的空分组数
	GroupsDropped int `json:"groupsDropped"`

	// PlistTruncated UID 解析中被截断的分支数
	PlistTruncated int `json:"plistTruncated"`
	// PlistDegraded 走降级扫描路径的 blob 数
	PlistDegraded int `json:"plistDegraded"`

	// CollapseWarning 输出坍缩超过阈值时置位（只标记，不失败）
	CollapseWarning bool `json:"collapseWarning"`

	// StageErrors 各阶段失败摘要
	StageErrors []StageError `json:"stageErrors,omitempty"`

	// StartedAt / FinishedAt 起止时间
	StartedAt  timex.Time `json:"startedAt"`
	FinishedAt timex.Time `json:"finishedAt"`
}

// AddStageError 记录一个阶段失败
func (r *Report) AddStageError(stage, message string) {
	r.StageErrors = append(r.StageErrors, StageError{Stage: stage, Message: message})
}
