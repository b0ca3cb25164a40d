package service

import (
	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"
	"github.com/haierkeys/margin-note-import-service/pkg/unionfind"

	"go.uber.org/zap"
)

// GroupService 按内容身份把笔记记录聚为分组
type GroupService interface {
	// BuildGroups 对记录做传递闭包分组并为每组选主
	// 分组顺序对固定输入顺序确定
	BuildGroups(notes []*domain.NoteRecord, topics map[string]*domain.TopicRecord) []*domain.ContentGroup
}

// groupService 实现 GroupService
type groupService struct {
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(log *zap.Logger) GroupService {
	return &groupService{logger: log}
}

func (s *groupService) BuildGroups(notes []*domain.NoteRecord, topics map[string]*domain.TopicRecord) []*domain.ContentGroup {
	byID := make(map[string]int, len(notes))
	for i, note := range notes {
		byID[note.NoteID] = i
	}

	set := unionfind.New(len(notes))

	// 同一身份键首次出现的下标；后续出现并入该下标
	byGroupKey := make(map[string]int)
	byExternalKey := make(map[string]int)

	for i, note := range notes {
		// 合并链：GroupNoteID 指向已知记录时直接连边，
		// 指向未知记录时仍按共享键聚合兄弟变体
		if note.GroupNoteID != "" {
			if j, ok := byID[note.GroupNoteID]; ok {
				set.Union(i, j)
			}
			if j, ok := byGroupKey[note.GroupNoteID]; ok {
				set.Union(i, j)
			} else {
				byGroupKey[note.GroupNoteID] = i
			}
		}

		// 外部回链：ExternalID 命中已知记录时直接连边，
		// 否则共享同一 ExternalID 的记录仍视为同一内容
		if note.ExternalID != "" {
			if j, ok := byID[note.ExternalID]; ok {
				set.Union(i, j)
			}
			if j, ok := byExternalKey[note.ExternalID]; ok {
				set.Union(i, j)
			} else {
				byExternalKey[note.ExternalID] = i
			}
		}

		// 指向已知记录的内联链接
		for _, target := range note.LinkedNoteIDs {
			if j, ok := byID[target]; ok {
				set.Union(i, j)
			}
		}
	}

	groups := make([]*domain.ContentGroup, 0, set.Count())
	for _, indices := range set.Groups() {
		group := &domain.ContentGroup{
			MemberIDs: make([]string, 0, len(indices)),
			Members:   make([]*domain.NoteRecord, 0, len(indices)),
		}
		for _, idx := range indices {
			group.MemberIDs = append(group.MemberIDs, notes[idx].NoteID)
			group.Members = append(group.Members, notes[idx])
		}
		group.Master = selectMaster(group.Members, topics)
		group.MasterID = group.Master.NoteID
		group.Class = classOf(group.Master, topics)
		groups = append(groups, group)

		if len(indices) > 1 {
			s.logger.Debug("content group formed",
				zap.String(logger.FieldGroup, group.MasterID),
				zap.Int(logger.FieldCount, len(indices)))
		}
	}
	return groups
}

// classOf 返回记录所属主题的分类，主题未知时归为 Unknown
func classOf(note *domain.NoteRecord, topics map[string]*domain.TopicRecord) domain.TopicClass {
	if topic, ok := topics[note.TopicID]; ok {
		return topic.Class
	}
	return domain.TopicClassUnknown
}

// selectMaster 按主题分类优先级选主：Project > Book > ReviewTopic > 其他；
// 同级内原始变体优先于合并变体，再同级按输入顺序取先出现者
func selectMaster(members []*domain.NoteRecord, topics map[string]*domain.TopicRecord) *domain.NoteRecord {
	master := members[0]
	best := masterRank(master, topics)
	for _, candidate := range members[1:] {
		if rank := masterRank(candidate, topics); rank > best {
			master = candidate
			best = rank
		}
	}
	return master
}

// masterRank 把（分类优先级, 是否原始）折叠为可比较的整数
func masterRank(note *domain.NoteRecord, topics map[string]*domain.TopicRecord) int {
	rank := classOf(note, topics).Priority() * 2
	if note.IsOriginal() {
		rank++
	}
	return rank
}
