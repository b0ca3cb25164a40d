package service

import (
	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// TopicService 主题映射与分类
type TopicService interface {
	// BuildLookup 把主题行集合映射为 topicId → TopicRecord 查找表
	BuildLookup(rows []domain.Row) map[string]*domain.TopicRecord
}

// 配置 blob 中的分类标记字段
// 分类在创建时计算一次，之后不再变化
var (
	projectMarkers = []string{"projectInfo", "prjTopicId"}
	bookMarkers    = []string{"bookMd5", "docMd5"}
	reviewMarkers  = []string{"reviewCards", "cramMode"}
)

// topicService 实现 TopicService
type topicService struct {
	config *ServiceConfig
	logger *zap.Logger
}

// NewTopicService 创建 TopicService 实例
func NewTopicService(config *ServiceConfig, log *zap.Logger) TopicService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &topicService{config: config, logger: log}
}

func (s *topicService) BuildLookup(rows []domain.Row) map[string]*domain.TopicRecord {
	lookup := make(map[string]*domain.TopicRecord, len(rows))
	for _, row := range rows {
		topicID := cast.ToString(row[domain.RowKeyTopicIDSelf])
		if topicID == "" {
			continue
		}
		record := &domain.TopicRecord{
			TopicID: topicID,
			Title:   cast.ToString(row[domain.RowKeyTopicTitle]),
			Class:   s.classify(row),
		}
		lookup[topicID] = record
		s.logger.Debug("topic classified",
			zap.String(logger.FieldTopicID, topicID),
			zap.String("class", string(record.Class)))
	}
	return lookup
}

// classify 解码所有权/配置 blob 并探测标记字段
// 无法解码 → Unknown；可解码但没有任何标记 → General
func (s *topicService) classify(row domain.Row) domain.TopicClass {
	blob, _ := row[domain.RowKeyConfigBlob].([]byte)
	decoded, _, err := decodeArchiveBlob(blob, false, s.logger)
	if err != nil || decoded == nil {
		return domain.TopicClassUnknown
	}
	config, ok := decoded.(map[string]any)
	if !ok {
		return domain.TopicClassUnknown
	}
	return classifyConfigMap(config)
}

// classifyConfigMap 按标记字段的优先级给配置映射定类
func classifyConfigMap(config map[string]any) domain.TopicClass {
	if hasAnyMarker(config, projectMarkers) {
		return domain.TopicClassProject
	}
	if hasAnyMarker(config, bookMarkers) {
		return domain.TopicClassBook
	}
	if hasAnyMarker(config, reviewMarkers) {
		return domain.TopicClassReviewTopic
	}
	return domain.TopicClassGeneral
}

// hasAnyMarker 在配置映射的顶层与一层嵌套内探测标记字段
func hasAnyMarker(config map[string]any, markers []string) bool {
	for _, marker := range markers {
		if _, ok := config[marker]; ok {
			return true
		}
	}
	for _, v := range config {
		if nested, ok := v.(map[string]any); ok {
			for _, marker := range markers {
				if _, ok := nested[marker]; ok {
					return true
				}
			}
		}
	}
	return false
}
