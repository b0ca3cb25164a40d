package domain

// MediaKind 媒体 blob 的启发式分类
type MediaKind string

const (
	// MediaKindImage 位图图片（定位到 PNG 签名）
	MediaKindImage MediaKind = "image"
	// MediaKindInk 手写笔迹
	MediaKindInk MediaKind = "ink"
	// MediaKindCoords 坐标载荷
	MediaKindCoords MediaKind = "coords"
	// MediaKindUnknown 未能分类的二进制
	MediaKindUnknown MediaKind = "unknown"
)

// MediaRecord 媒体记录，身份为内容哈希
// 字节所有权归共享媒体集合，笔记仅按哈希弱引用
type MediaRecord struct {
	// Hash 内容哈希
	Hash string `json:"hash"`
	// Kind 检测到的类型
	Kind MediaKind `json:"kind"`
	// Data 原始字节
	Data []byte `json:"-"`
	// Image 在更大 blob 中定位到的图片字节（仅 image）
	Image []byte `json:"-"`
	// HasStrokes 是否检测到笔迹标记（仅 ink）
	HasStrokes bool `json:"hasStrokes,omitempty"`
	// TextSample 坐标载荷的文本样本（仅 coords）
	TextSample string `json:"textSample,omitempty"`
}
