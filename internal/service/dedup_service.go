package service

import (
	"strings"

	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"
	"github.com/haierkeys/margin-note-import-service/pkg/util"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// DedupService 把内容分组折叠为去重后的输出记录
type DedupService interface {
	// Deduplicate 每组产出至多一条记录，无内容分组被丢弃
	Deduplicate(groups []*domain.ContentGroup) ([]*domain.NoteRecord, *DedupStats)
}

// DedupStats 去重阶段的统计
type DedupStats struct {
	// InputNotes 进入去重的成员总数
	InputNotes int
	// Output 输出记录数
	Output int
	// GroupsDropped 没有产出的分组数
	GroupsDropped int
	// CollapseWarning 输出坍缩超过阈值
	CollapseWarning bool
}

// dedupService 实现 DedupService
type dedupService struct {
	config *ServiceConfig
	logger *zap.Logger
}

// NewDedupService 创建 DedupService 实例
func NewDedupService(config *ServiceConfig, log *zap.Logger) DedupService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &dedupService{config: config, logger: log}
}

func (s *dedupService) Deduplicate(groups []*domain.ContentGroup) ([]*domain.NoteRecord, *DedupStats) {
	stats := &DedupStats{}
	seen := make(map[string]bool)
	var output []*domain.NoteRecord

	for _, group := range groups {
		stats.InputNotes += len(group.Members)

		record := s.collapseGroup(group)
		if record == nil || record.IsContentless() {
			stats.GroupsDropped++
			continue
		}
		// 终轮按 ID 首见去重
		if seen[record.NoteID] {
			continue
		}
		seen[record.NoteID] = true
		output = append(output, record)
	}

	stats.Output = len(output)
	if stats.InputNotes > 0 {
		collapsed := 1 - float64(stats.Output)/float64(stats.InputNotes)
		if collapsed >= s.config.CollapseWarnRatio {
			stats.CollapseWarning = true
			s.logger.Warn("output collapse above threshold",
				zap.Int(logger.FieldCount, stats.Output),
				zap.Int("input", stats.InputNotes),
				zap.Float64("ratio", collapsed))
		}
	}
	return output, stats
}

// collapseGroup 折叠一个分组：以最富的合并变体为基底，
// 没有合并变体时退回最富的原始变体，再用原始变体补全
func (s *dedupService) collapseGroup(group *domain.ContentGroup) *domain.NoteRecord {
	if len(group.Members) == 0 {
		return nil
	}

	var merged, originals []*domain.NoteRecord
	for _, member := range group.Members {
		if member.IsMerged() {
			merged = append(merged, member)
		} else {
			originals = append(originals, member)
		}
	}

	base := richest(merged)
	if base == nil {
		base = richest(originals)
	}

	// 基底克隆一份再补全，分组成员保持不可变
	record := &domain.NoteRecord{}
	if err := copier.CopyWithOption(record, base, copier.Option{DeepCopy: true}); err != nil {
		s.logger.Error("group base clone failed",
			zap.String(logger.FieldNoteID, base.NoteID),
			zap.Error(err))
		return nil
	}

	// 仅用原始变体补全，合并变体之间不互相渗透；
	// 只有合并变体的分组按最富者原样输出
	for _, member := range originals {
		if member == base {
			continue
		}
		supplement(record, member)
	}
	finalizeRecord(record)
	return record
}

// finalizeRecord 输出前对记录自身做一次去重，
// 单成员分组的重复标签、链接与文本片段也在此裁掉
func finalizeRecord(record *domain.NoteRecord) {
	record.Hashtags = util.UniqueStrings(record.Hashtags)
	record.LinkedNoteIDs = util.UniqueStrings(record.LinkedNoteIDs)
	record.MediaHashes = util.UniqueStrings(record.MediaHashes)
	record.ChildNoteIDs = util.UniqueStrings(record.ChildNoteIDs)
	record.Links = mergeLinks(nil, record.Links)
	record.OtherTexts = mergeFragments(nil, record.OtherTexts)
	record.Highlights = mergeHighlights(nil, record.Highlights)
}

// richest 按内容丰富度取最大者，同分取先出现者
func richest(members []*domain.NoteRecord) *domain.NoteRecord {
	var best *domain.NoteRecord
	bestScore := -1
	for _, member := range members {
		if score := member.RichnessScore(); score > bestScore {
			best = member
			bestScore = score
		}
	}
	return best
}

// supplement 用 donor 补全 record：空文本字段填充，列表字段并集合并
// record 的 NoteID 不变
func supplement(record, donor *domain.NoteRecord) {
	if strings.TrimSpace(record.Title) == "" {
		record.Title = donor.Title
	}
	if strings.TrimSpace(record.Excerpt) == "" {
		record.Excerpt = donor.Excerpt
	}
	if strings.TrimSpace(record.NotesText) == "" {
		record.NotesText = donor.NotesText
	}
	if record.TopicID == "" {
		record.TopicID = donor.TopicID
	}
	if record.ExternalID == "" {
		record.ExternalID = donor.ExternalID
	}
	if record.Visual == nil && donor.Visual != nil {
		visual := *donor.Visual
		record.Visual = &visual
	}

	record.Hashtags = util.UniqueStrings(append(record.Hashtags, donor.Hashtags...))
	record.LinkedNoteIDs = util.UniqueStrings(append(record.LinkedNoteIDs, donor.LinkedNoteIDs...))
	record.MediaHashes = util.UniqueStrings(append(record.MediaHashes, donor.MediaHashes...))
	record.ChildNoteIDs = util.UniqueStrings(append(record.ChildNoteIDs, donor.ChildNoteIDs...))

	record.Links = mergeLinks(record.Links, donor.Links)
	record.OtherTexts = mergeFragments(record.OtherTexts, donor.OtherTexts)
	record.Highlights = mergeHighlights(record.Highlights, donor.Highlights)

	if donor.WordCount > record.WordCount {
		record.WordCount = donor.WordCount
	}
	if record.CreatedAt.IsZero() || (!donor.CreatedAt.IsZero() && donor.CreatedAt.Unix() < record.CreatedAt.Unix()) {
		record.CreatedAt = donor.CreatedAt
	}
	if donor.UpdatedAt.Unix() > record.UpdatedAt.Unix() {
		record.UpdatedAt = donor.UpdatedAt
	}
}

func mergeLinks(dst, src []domain.NoteLink) []domain.NoteLink {
	seen := make(map[string]bool, len(dst))
	for _, link := range dst {
		seen[link.TargetID] = true
	}
	for _, link := range src {
		if seen[link.TargetID] {
			continue
		}
		seen[link.TargetID] = true
		dst = append(dst, link)
	}
	return dst
}

// mergeFragments 片段按裁剪后的文本判重，裁剪后为空的丢弃
func mergeFragments(dst, src []domain.TextFragment) []domain.TextFragment {
	seen := make(map[string]bool, len(dst))
	for _, frag := range dst {
		seen[strings.TrimSpace(frag.Text)] = true
	}
	for _, frag := range src {
		key := strings.TrimSpace(frag.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, frag)
	}
	return dst
}

func mergeHighlights(dst, src []domain.Highlight) []domain.Highlight {
	seen := make(map[string]bool, len(dst))
	for _, hl := range dst {
		seen[hl.Text+"\x00"+hl.CoordsHash] = true
	}
	for _, hl := range src {
		key := hl.Text + "\x00" + hl.CoordsHash
		if seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, hl)
	}
	return dst
}
