package service

import (
	"bytes"
	"encoding/hex"
	"unicode"

	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"
	"github.com/haierkeys/margin-note-import-service/pkg/util"

	"github.com/spf13/cast"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// MediaService 媒体行映射与启发式分类
type MediaService interface {
	// BuildLookup 把媒体行集合映射为 hash → MediaRecord 查找表
	BuildLookup(rows []domain.Row) map[string]*domain.MediaRecord

	// Classify 对单个 blob 做类型检测
	Classify(data []byte) *domain.MediaRecord
}

// pngSignature PNG 文件签名，允许出现在更大 blob 的任意位置
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// inkMarkers 笔迹格式的子串标记
var inkMarkers = [][]byte{
	[]byte("strokes"),
	[]byte("NSBezierPath"),
	[]byte("UIBezierPath"),
	[]byte("inklist"),
}

// mediaService 实现 MediaService
type mediaService struct {
	logger *zap.Logger
}

// NewMediaService 创建 MediaService 实例
func NewMediaService(log *zap.Logger) MediaService {
	return &mediaService{logger: log}
}

func (s *mediaService) BuildLookup(rows []domain.Row) map[string]*domain.MediaRecord {
	lookup := make(map[string]*domain.MediaRecord, len(rows))
	// 按内容指纹去重：不同行携带相同字节时复用同一条记录
	byContent := make(map[string]*domain.MediaRecord, len(rows))

	for _, row := range rows {
		data, _ := row[domain.RowKeyMediaData].([]byte)
		if len(data) == 0 {
			continue
		}

		// 行自带哈希是笔记行引用媒体的键；缺失时补一个同约定的 md5
		hash := cast.ToString(row[domain.RowKeyMediaHash])
		if hash == "" {
			hash = util.EncodeMD5(string(data))
		}

		fingerprint := ContentHash(data)
		record, ok := byContent[fingerprint]
		if !ok {
			record = s.Classify(data)
			record.Hash = hash
			byContent[fingerprint] = record
		}
		lookup[hash] = record
		s.logger.Debug("media classified",
			zap.String(logger.FieldHash, hash),
			zap.String("kind", string(record.Kind)),
			zap.Int(logger.FieldSize, len(data)))
	}
	return lookup
}

// Classify 启发式分类，尽力而为，不保证对未知二进制总是正确
func (s *mediaService) Classify(data []byte) *domain.MediaRecord {
	record := &domain.MediaRecord{
		Data: data,
		Kind: domain.MediaKindUnknown,
	}

	// PNG 签名可能藏在包装字节之后，取签名到结尾作为图片载荷
	if idx := bytes.Index(data, pngSignature); idx >= 0 {
		record.Kind = domain.MediaKindImage
		record.Image = data[idx:]
		return record
	}

	lower := bytes.ToLower(data)
	for _, marker := range inkMarkers {
		if bytes.Contains(lower, bytes.ToLower(marker)) {
			record.Kind = domain.MediaKindInk
			record.HasStrokes = true
			return record
		}
	}

	if sample, ok := coordSample(data); ok {
		record.Kind = domain.MediaKindCoords
		record.TextSample = sample
		return record
	}

	return record
}

// ContentHash 计算媒体字节的内容指纹，用于同字节去重
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// coordSample 判断 blob 是否像坐标文本载荷（如 "{12.5,40.25}"），
// 返回开头的可打印样本
func coordSample(data []byte) (string, bool) {
	const sampleLen = 64
	n := len(data)
	if n == 0 {
		return "", false
	}
	if n > sampleLen {
		n = sampleLen
	}
	var digits, braces int
	for _, c := range data[:n] {
		r := rune(c)
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", false
		}
		switch {
		case c >= '0' && c <= '9' || c == '.' || c == ',' || c == '-':
			digits++
		case c == '{' || c == '}' || c == '[' || c == ']' || c == '(' || c == ')':
			braces++
		}
	}
	if braces == 0 || digits*2 < n {
		return "", false
	}
	return string(data[:n]), true
}
