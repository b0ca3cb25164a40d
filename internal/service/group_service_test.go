package service

import (
	"testing"

	"github.com/haierkeys/margin-note-import-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testGroupService() GroupService {
	return NewGroupService(zap.NewNop())
}

func topicLookup() map[string]*domain.TopicRecord {
	return map[string]*domain.TopicRecord{
		"t-project": {TopicID: "t-project", Class: domain.TopicClassProject},
		"t-book":    {TopicID: "t-book", Class: domain.TopicClassBook},
		"t-review":  {TopicID: "t-review", Class: domain.TopicClassReviewTopic},
	}
}

func TestBuildGroupsTransitiveChain(t *testing.T) {
	svc := testGroupService()
	// A←B 通过 GroupNoteID，B←C 通过共享 ExternalID：A、B、C 传递成组
	notes := []*domain.NoteRecord{
		{NoteID: "A", TopicID: "t-book"},
		{NoteID: "B", TopicID: "t-book", GroupNoteID: "A", ExternalID: "ext-x"},
		{NoteID: "C", TopicID: "t-book", GroupNoteID: "gone", ExternalID: "ext-x"},
		{NoteID: "D", TopicID: "t-book"},
	}

	groups := svc.BuildGroups(notes, topicLookup())
	require.Len(t, groups, 2)

	merged := groups[0]
	assert.ElementsMatch(t, []string{"A", "B", "C"}, merged.MemberIDs)
	assert.True(t, merged.Contains("C"))

	solo := groups[1]
	assert.Equal(t, []string{"D"}, solo.MemberIDs)
}

func TestBuildGroupsExternalIDNamesKnownNote(t *testing.T) {
	svc := testGroupService()
	// B 的 ExternalID 直接指向已知记录 C 的 NoteID，
	// 与 A←B 的合并链连通后三条记录合为一组
	notes := []*domain.NoteRecord{
		{NoteID: "A", TopicID: "t-book", GroupNoteID: "B"},
		{NoteID: "B", TopicID: "t-book", ExternalID: "C"},
		{NoteID: "C", TopicID: "t-book"},
	}

	groups := svc.BuildGroups(notes, topicLookup())
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, groups[0].MemberIDs)
}

func TestBuildGroupsSharedDanglingGroupID(t *testing.T) {
	svc := testGroupService()
	// GroupNoteID 指向不存在的记录，但共享同一个键的兄弟变体仍然归组
	notes := []*domain.NoteRecord{
		{NoteID: "v1", GroupNoteID: "missing-parent"},
		{NoteID: "v2", GroupNoteID: "missing-parent"},
	}

	groups := svc.BuildGroups(notes, nil)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"v1", "v2"}, groups[0].MemberIDs)
}

func TestBuildGroupsLinkedNoteIDs(t *testing.T) {
	svc := testGroupService()
	notes := []*domain.NoteRecord{
		{NoteID: "A", LinkedNoteIDs: []string{"B", "unknown-target"}},
		{NoteID: "B"},
	}

	groups := svc.BuildGroups(notes, nil)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, groups[0].MemberIDs)
}

func TestSelectMasterTopicPriority(t *testing.T) {
	svc := testGroupService()
	// Book 主题的原始记录先出现，Project 主题的合并变体仍然胜出
	notes := []*domain.NoteRecord{
		{NoteID: "book-orig", TopicID: "t-book", ExternalID: "ext-y"},
		{NoteID: "proj-merged", TopicID: "t-project", GroupNoteID: "book-orig", ExternalID: "ext-y"},
	}

	groups := svc.BuildGroups(notes, topicLookup())
	require.Len(t, groups, 1)
	assert.Equal(t, "proj-merged", groups[0].MasterID)
	assert.Equal(t, domain.TopicClassProject, groups[0].Class)
}

func TestSelectMasterOriginalPreferredWithinClass(t *testing.T) {
	svc := testGroupService()
	notes := []*domain.NoteRecord{
		{NoteID: "merged-first", TopicID: "t-review", GroupNoteID: "orig", ExternalID: "ext-z"},
		{NoteID: "orig", TopicID: "t-review", ExternalID: "ext-z"},
	}

	groups := svc.BuildGroups(notes, topicLookup())
	require.Len(t, groups, 1)
	assert.Equal(t, "orig", groups[0].MasterID)
}

func TestSelectMasterInputOrderTieBreak(t *testing.T) {
	svc := testGroupService()
	// 同分类、同变体类型：先出现者为主
	notes := []*domain.NoteRecord{
		{NoteID: "first", TopicID: "t-book", ExternalID: "ext-w"},
		{NoteID: "second", TopicID: "t-book", ExternalID: "ext-w"},
	}

	groups := svc.BuildGroups(notes, topicLookup())
	require.Len(t, groups, 1)
	assert.Equal(t, "first", groups[0].MasterID)
}

func TestBuildGroupsUnknownTopicClass(t *testing.T) {
	svc := testGroupService()
	notes := []*domain.NoteRecord{{NoteID: "A", TopicID: "no-such-topic"}}

	groups := svc.BuildGroups(notes, topicLookup())
	require.Len(t, groups, 1)
	assert.Equal(t, domain.TopicClassUnknown, groups[0].Class)
}
