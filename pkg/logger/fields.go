// Package logger 定义统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
package logger

const (
	// FieldRunID 导入运行 ID 字段
	FieldRunID = "runId"

	// FieldStage 导入阶段字段
	FieldStage = "stage"

	// FieldEntry 容器条目名字段
	FieldEntry = "entry"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldTopicID 主题 ID 字段
	FieldTopicID = "topicId"

	// FieldGroup 内容分组主记录 ID 字段
	FieldGroup = "group"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldSize 字节大小字段
	FieldSize = "size"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldPath 文件路径字段
	FieldPath = "path"

	// FieldHash 内容哈希字段
	FieldHash = "hash"
)
