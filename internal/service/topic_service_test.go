package service

import (
	"testing"

	"github.com/haierkeys/margin-note-import-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassifyConfigMap(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   domain.TopicClass
	}{
		{"project marker", map[string]any{"projectInfo": map[string]any{}}, domain.TopicClassProject},
		{"book marker", map[string]any{"bookMd5": "abc"}, domain.TopicClassBook},
		{"review marker", map[string]any{"reviewCards": []any{}}, domain.TopicClassReviewTopic},
		{"nested marker", map[string]any{"settings": map[string]any{"docMd5": "x"}}, domain.TopicClassBook},
		// Project 标记优先于 Book 标记
		{"priority", map[string]any{"prjTopicId": "t", "bookMd5": "abc"}, domain.TopicClassProject},
		{"no marker", map[string]any{"title": "misc"}, domain.TopicClassGeneral},
		{"empty", map[string]any{}, domain.TopicClassGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyConfigMap(tt.config))
		})
	}
}

func TestBuildLookupUndecodableBlob(t *testing.T) {
	svc := NewTopicService(nil, zap.NewNop())
	rows := []domain.Row{
		{domain.RowKeyTopicIDSelf: "t1", domain.RowKeyTopicTitle: "损坏的配置", domain.RowKeyConfigBlob: []byte("not a plist")},
		{domain.RowKeyTopicIDSelf: "t2", domain.RowKeyTopicTitle: "no blob"},
		{domain.RowKeyTopicIDSelf: "", domain.RowKeyTopicTitle: "dropped"},
	}

	lookup := svc.BuildLookup(rows)
	require.Len(t, lookup, 2)
	assert.Equal(t, domain.TopicClassUnknown, lookup["t1"].Class)
	assert.Equal(t, "损坏的配置", lookup["t1"].Title)
	// 空 blob 解码为空结果，同样归 Unknown
	assert.Equal(t, domain.TopicClassUnknown, lookup["t2"].Class)
}
