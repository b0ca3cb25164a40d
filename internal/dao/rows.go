package dao

import (
	"context"

	"github.com/haierkeys/margin-note-import-service/internal/domain"
)

// Core Data 列名 → 规范化行键
var noteColumnRename = map[string]string{
	"ZNOTEID":         domain.RowKeyNoteID,
	"ZTOPICID":        domain.RowKeyTopicID,
	"ZGROUPNOTEID":    domain.RowKeyGroupNoteID,
	"ZEVERNOTEID":     domain.RowKeyExternalID,
	"ZNOTETITLE":      domain.RowKeyTitle,
	"ZHIGHLIGHT_TEXT": domain.RowKeyExcerpt,
	"ZNOTES_TEXT":     domain.RowKeyNotesText,
	"ZSTARTPAGE":      domain.RowKeyStartPage,
	"ZSTARTPOS":       domain.RowKeyStartPos,
	"ZMEDIA_LIST":     domain.RowKeyMediaList,
	"ZHIGHLIGHT_DATE": domain.RowKeyCreateDate,
	"ZNOTE_DATE":      domain.RowKeyModifyDate,
	"ZNOTES":          domain.RowKeyNotesBlob,
	"ZHIGHLIGHTS":     domain.RowKeyHighlightsBlob,
}

var topicColumnRename = map[string]string{
	"ZTOPICID": domain.RowKeyTopicIDSelf,
	"ZTITLE":   domain.RowKeyTopicTitle,
	"ZCONFIG":  domain.RowKeyConfigBlob,
}

var mediaColumnRename = map[string]string{
	"ZMD5":  domain.RowKeyMediaHash,
	"ZDATA": domain.RowKeyMediaData,
}

// Notes 返回全部笔记行，按主键顺序保证迭代稳定
func (d *Dao) Notes(ctx context.Context) ([]domain.Row, error) {
	return d.queryRows(ctx, `
		SELECT ZNOTEID, ZTOPICID, ZGROUPNOTEID, ZEVERNOTEID, ZNOTETITLE,
		       ZHIGHLIGHT_TEXT, ZNOTES_TEXT, ZSTARTPAGE, ZSTARTPOS,
		       ZMEDIA_LIST, ZHIGHLIGHT_DATE, ZNOTE_DATE, ZNOTES, ZHIGHLIGHTS
		FROM ZBOOKNOTE
		ORDER BY Z_PK`, noteColumnRename)
}

// Topics 返回全部主题行
func (d *Dao) Topics(ctx context.Context) ([]domain.Row, error) {
	return d.queryRows(ctx, `
		SELECT ZTOPICID, ZTITLE, ZCONFIG
		FROM ZTOPIC
		ORDER BY Z_PK`, topicColumnRename)
}

// Media 返回全部媒体行
func (d *Dao) Media(ctx context.Context) ([]domain.Row, error) {
	return d.queryRows(ctx, `
		SELECT ZMD5, ZDATA
		FROM ZMEDIA
		ORDER BY Z_PK`, mediaColumnRename)
}
