package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/haierkeys/margin-note-import-service/internal/bplist"
	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"
	"github.com/haierkeys/margin-note-import-service/pkg/timex"
	"github.com/haierkeys/margin-note-import-service/pkg/util"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecordService 把数据库行映射为规范化笔记记录
type RecordService interface {
	// BuildNotes 按输入顺序映射全部笔记行
	// 单行失败只计数跳过，不中断整体（严格模式除外）
	BuildNotes(ctx context.Context, rows []domain.Row, media map[string]*domain.MediaRecord) ([]*domain.NoteRecord, *MapStats, error)
}

// MapStats 行映射阶段的累计统计
type MapStats struct {
	Mapped    int
	Skipped   int
	Truncated int
	Degraded  int
}

func (s *MapStats) add(o MapStats) {
	s.Mapped += o.Mapped
	s.Skipped += o.Skipped
	s.Truncated += o.Truncated
	s.Degraded += o.Degraded
}

// recordService 实现 RecordService
type recordService struct {
	config *ServiceConfig
	logger *zap.Logger
}

// NewRecordService 创建 RecordService 实例
func NewRecordService(config *ServiceConfig, log *zap.Logger) RecordService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &recordService{config: config, logger: log}
}

func (s *recordService) BuildNotes(ctx context.Context, rows []domain.Row, media map[string]*domain.MediaRecord) ([]*domain.NoteRecord, *MapStats, error) {
	results := make([]*domain.NoteRecord, len(rows))
	stats := &MapStats{}

	workers := s.config.Workers
	if workers <= 1 || len(rows) < 2 {
		for i, row := range rows {
			note, rowStats, err := s.buildNote(row, media)
			if err != nil {
				return nil, nil, err
			}
			results[i] = note
			stats.add(rowStats)
		}
	} else {
		var mu sync.Mutex
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, row := range rows {
			g.Go(func() error {
				note, rowStats, err := s.buildNote(row, media)
				if err != nil {
					return err
				}
				results[i] = note
				mu.Lock()
				stats.add(rowStats)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	// 压实结果，保持输入顺序
	notes := make([]*domain.NoteRecord, 0, len(rows))
	for _, note := range results {
		if note == nil {
			continue
		}
		notes = append(notes, note)
	}
	return notes, stats, nil
}

// buildNote 映射单行，返回 nil 表示该行被跳过
func (s *recordService) buildNote(row domain.Row, media map[string]*domain.MediaRecord) (*domain.NoteRecord, MapStats, error) {
	var stats MapStats

	noteID := cast.ToString(row[domain.RowKeyNoteID])
	if noteID == "" {
		stats.Skipped++
		s.logger.Warn("note row has no id, skipped")
		return nil, stats, nil
	}

	note := &domain.NoteRecord{
		NoteID:      noteID,
		TopicID:     cast.ToString(row[domain.RowKeyTopicID]),
		GroupNoteID: cast.ToString(row[domain.RowKeyGroupNoteID]),
		ExternalID:  cast.ToString(row[domain.RowKeyExternalID]),
		Title:       cast.ToString(row[domain.RowKeyTitle]),
		Excerpt:     cast.ToString(row[domain.RowKeyExcerpt]),
		NotesText:   cast.ToString(row[domain.RowKeyNotesText]),
	}

	if sec := cast.ToFloat64(row[domain.RowKeyCreateDate]); sec > 0 {
		note.CreatedAt = timex.FromAppleSeconds(sec)
	}
	if sec := cast.ToFloat64(row[domain.RowKeyModifyDate]); sec > 0 {
		note.UpdatedAt = timex.FromAppleSeconds(sec)
	}

	// 媒体引用：连字符分隔的哈希列表，仅保留已知媒体
	for _, hash := range splitMediaList(cast.ToString(row[domain.RowKeyMediaList])) {
		if _, ok := media[hash]; ok {
			note.MediaHashes = append(note.MediaHashes, hash)
		}
	}

	// 行级可视区域：页码 + 起始点
	startPage := cast.ToInt(row[domain.RowKeyStartPage])
	if startPage > 0 {
		if pt, ok := parsePoint(cast.ToString(row[domain.RowKeyStartPos])); ok {
			note.Visual = &domain.VisualExcerpt{
				PageNo: startPage,
				Rect:   domain.Rect{X: pt[0], Y: pt[1]},
			}
		}
	}

	// 两个 Apple 归档 blob 列
	notesVal, blobStats, err := s.decodeRowBlob(row, domain.RowKeyNotesBlob, noteID)
	if err != nil {
		return nil, stats, err
	}
	stats.Truncated += blobStats.Truncated
	if blobStats.Degraded {
		stats.Degraded++
	}
	hlVal, blobStats, err := s.decodeRowBlob(row, domain.RowKeyHighlightsBlob, noteID)
	if err != nil {
		return nil, stats, err
	}
	stats.Truncated += blobStats.Truncated
	if blobStats.Degraded {
		stats.Degraded++
	}

	collectNoteRefs(notesVal, note)
	note.Highlights = collectHighlights(hlVal)

	// 高亮片段可回填缺失的可视区域
	if note.Visual == nil {
		for _, hl := range note.Highlights {
			if len(hl.Selections) > 0 {
				sel := hl.Selections[0]
				note.Visual = &domain.VisualExcerpt{PageNo: sel.PageNo, Rect: sel.Rect}
				break
			}
		}
	}

	s.scanText(note)
	note.WordCount = util.CountWords(note.Title + "\n" + note.Excerpt + "\n" + note.NotesText)

	stats.Mapped++
	return note, stats, nil
}

func (s *recordService) decodeRowBlob(row domain.Row, key, noteID string) (any, BlobStats, error) {
	data, _ := row[key].([]byte)
	v, blobStats, err := decodeArchiveBlob(data, s.config.StrictDecode, s.logger)
	if err != nil {
		return nil, blobStats, err
	}
	if blobStats.Degraded {
		s.logger.Debug("blob decoded via degraded scan",
			zap.String(logger.FieldNoteID, noteID),
			zap.String("column", key))
	}
	return v, blobStats, nil
}

// scanText 从文本字段提取标签、链接与其他文本片段
func (s *recordService) scanText(note *domain.NoteRecord) {
	combined := note.Title + "\n" + note.Excerpt + "\n" + note.NotesText
	note.Hashtags = util.ParseHashtags(combined)
	for _, link := range util.ParseNoteLinks(combined) {
		note.LinkedNoteIDs = append(note.LinkedNoteIDs, link.NoteID)
	}
	note.LinkedNoteIDs = util.UniqueStrings(note.LinkedNoteIDs)

	// 笔记文本中除纯标签/链接行之外的段落构成其他文本片段
	for _, para := range splitParagraphs(note.NotesText) {
		if isTagOrLinkParagraph(para) {
			continue
		}
		kind := domain.TextKindProse
		if util.LooksLikeList(para) {
			kind = domain.TextKindList
		}
		note.OtherTexts = append(note.OtherTexts, domain.TextFragment{Text: para, Kind: kind})
	}
}

// collectNoteRefs 遍历 notes blob 的解码树，收集 LinkNote 条目与裸子笔记引用
func collectNoteRefs(v any, note *domain.NoteRecord) {
	walkValues(v, func(m map[string]any) {
		targetID := cast.ToString(m["noteid"])
		if targetID == "" {
			return
		}
		if cast.ToString(m["type"]) == "LinkNote" {
			note.Links = append(note.Links, domain.NoteLink{
				TargetID: targetID,
				Text:     cast.ToString(m["q_htext"]),
			})
			return
		}
		if !util.ContainsString(note.ChildNoteIDs, targetID) {
			note.ChildNoteIDs = append(note.ChildNoteIDs, targetID)
		}
	})
}

// collectHighlights 遍历 highlights blob 的解码树，收集高亮片段
func collectHighlights(v any) []domain.Highlight {
	var highlights []domain.Highlight
	walkValues(v, func(m map[string]any) {
		text := cast.ToString(m["highlight_text"])
		coordsHash := cast.ToString(m["coords_hash"])
		selections := collectSelections(m["textSelLst"])
		if text == "" && coordsHash == "" && len(selections) == 0 {
			return
		}
		// 缺失坐标哈希时从选择区域推导，相同坐标得到相同哈希
		if coordsHash == "" && len(selections) > 0 {
			coordsHash = util.EncodeHash32(fmt.Sprint(selections))
		}
		highlights = append(highlights, domain.Highlight{
			Text:       text,
			CoordsHash: coordsHash,
			Selections: selections,
		})
	})
	return highlights
}

func collectSelections(v any) []domain.Selection {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var selections []domain.Selection
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rect, ok := parseRect(cast.ToString(m["rect"]))
		if !ok {
			continue
		}
		selections = append(selections, domain.Selection{
			PageNo: cast.ToInt(m["pageNo"]),
			Rect:   rect,
		})
	}
	return selections
}

// walkValues 深度优先遍历解码树，对每个 map 节点调用 fn
// 只下探 map 与 slice，叶子标量直接忽略
func walkValues(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		fn(t)
		for _, child := range t {
			walkValues(child, fn)
		}
	case []any:
		for _, child := range t {
			walkValues(child, fn)
		}
	case *bplist.Dict:
		m := make(map[string]any, t.Len())
		for i, key := range t.Keys {
			m[cast.ToString(key)] = t.Values[i]
		}
		walkValues(m, fn)
	}
}

var (
	floatRegex     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	paragraphRegex = regexp.MustCompile(`\n\s*\n`)
)

// parsePoint 解析 "{x,y}" 形式的坐标点
func parsePoint(s string) ([2]float64, bool) {
	nums := floatRegex.FindAllString(s, 3)
	if len(nums) != 2 {
		return [2]float64{}, false
	}
	return [2]float64{cast.ToFloat64(nums[0]), cast.ToFloat64(nums[1])}, true
}

// parseRect 解析 "{{x,y},{w,h}}" 形式的矩形
func parseRect(s string) (domain.Rect, bool) {
	nums := floatRegex.FindAllString(s, 5)
	if len(nums) != 4 {
		return domain.Rect{}, false
	}
	return domain.Rect{
		X:      cast.ToFloat64(nums[0]),
		Y:      cast.ToFloat64(nums[1]),
		Width:  cast.ToFloat64(nums[2]),
		Height: cast.ToFloat64(nums[3]),
	}, true
}

// splitMediaList 拆分连字符分隔的媒体哈希列表
func splitMediaList(list string) []string {
	if list == "" {
		return nil
	}
	var hashes []string
	for _, hash := range strings.Split(list, "-") {
		if hash = strings.TrimSpace(hash); hash != "" {
			hashes = append(hashes, hash)
		}
	}
	return util.UniqueStrings(hashes)
}

// splitParagraphs 按空行拆分文本为段落
func splitParagraphs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var paras []string
	for _, block := range paragraphRegex.Split(text, -1) {
		if block = strings.TrimSpace(block); block != "" {
			paras = append(paras, block)
		}
	}
	return paras
}

// isTagOrLinkParagraph 判断段落是否只由标签/链接行组成
func isTagOrLinkParagraph(para string) bool {
	for _, line := range strings.Split(para, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !util.IsTagOrLinkLine(line) {
			return false
		}
	}
	return true
}
