package domain

// TopicClass 主题分类，在创建时计算一次，之后不再变化
type TopicClass string

const (
	TopicClassProject     TopicClass = "project"
	TopicClassBook        TopicClass = "book"
	TopicClassReviewTopic TopicClass = "review"
	TopicClassGeneral     TopicClass = "general"
	TopicClassUnknown     TopicClass = "unknown"
)

// Priority 主分类优先级：Project > Book > ReviewTopic > 其他
func (c TopicClass) Priority() int {
	switch c {
	case TopicClassProject:
		return 3
	case TopicClassBook:
		return 2
	case TopicClassReviewTopic:
		return 1
	default:
		return 0
	}
}

// TopicRecord 主题记录
type TopicRecord struct {
	// TopicID 唯一标识
	TopicID string `json:"topicId"`
	// Title 标题
	Title string `json:"title"`
	// Class 分类，由所有权/配置 blob 的标记字段推断
	Class TopicClass `json:"class"`
}
