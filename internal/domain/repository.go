package domain

import "context"

// Row 数据库行的扁平字段映射，键为规范化列名
type Row map[string]any

// 笔记行的规范化键
const (
	RowKeyNoteID      = "noteId"
	RowKeyTopicID     = "topicId"
	RowKeyGroupNoteID = "groupNoteId"
	RowKeyExternalID  = "externalId"
	RowKeyTitle       = "title"
	RowKeyExcerpt     = "excerpt"
	RowKeyNotesText   = "notesText"
	RowKeyStartPage   = "startPage"
	RowKeyStartPos    = "startPos"
	RowKeyMediaList   = "mediaList"
	RowKeyCreateDate  = "createDate"
	RowKeyModifyDate  = "modifyDate"
	// RowKeyNotesBlob / RowKeyHighlightsBlob 两个 Apple 归档 blob 列
	RowKeyNotesBlob      = "notesBlob"
	RowKeyHighlightsBlob = "highlightsBlob"
)

// 主题行的规范化键
const (
	RowKeyTopicTitle  = "title"
	RowKeyConfigBlob  = "configBlob"
	RowKeyTopicIDSelf = "topicId"
)

// 媒体行的规范化键
const (
	RowKeyMediaHash = "hash"
	RowKeyMediaData = "data"
)

// RowSource 数据库行抽取边界
// 给定解压后的数据库字节，产出三个行集合（笔记/主题/媒体）
type RowSource interface {
	// Notes 返回全部笔记行，保持数据库迭代顺序
	Notes(ctx context.Context) ([]Row, error)

	// Topics 返回全部主题行
	Topics(ctx context.Context) ([]Row, error)

	// Media 返回全部媒体行
	Media(ctx context.Context) ([]Row, error)

	// Close 释放底层资源
	Close() error
}
