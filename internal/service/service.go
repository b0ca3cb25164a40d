// Package service 实现导入流程的业务逻辑层
package service

import (
	"github.com/haierkeys/margin-note-import-service/internal/bplist"
	"github.com/haierkeys/margin-note-import-service/internal/keyedarchive"

	"go.uber.org/zap"
)

// ServiceConfig 服务层共享配置
type ServiceConfig struct {
	// StrictDecode plist/archiver 解码失败时报错而不是降级为空结果
	StrictDecode bool
	// Workers 行映射的并发 worker 数，<=1 表示串行
	Workers int
	// CollapseWarnRatio 输出坍缩告警阈值，默认 0.9
	CollapseWarnRatio float64
}

// DefaultServiceConfig 返回默认配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		StrictDecode:      false,
		Workers:           1,
		CollapseWarnRatio: 0.9,
	}
}

// BlobStats 单个 blob 解码的统计
type BlobStats struct {
	// Truncated UID 解析中被截断的分支数
	Truncated int
	// Degraded 是否走了降级扫描路径
	Degraded bool
}

// decodeArchiveBlob runs one Apple blob column through the plist parser and
// the keyed-archiver resolver. A nil/empty blob or a non-archiver payload
// yields nil. In non-strict mode every decode failure degrades to nil.
// decodeArchiveBlob 解码一个 Apple blob 列；非严格模式下解码失败降级为空
func decodeArchiveBlob(data []byte, strict bool, logger *zap.Logger) (any, BlobStats, error) {
	var stats BlobStats
	if len(data) == 0 {
		return nil, stats, nil
	}

	g, err := bplist.Parse(data)
	if err != nil {
		if strict {
			return nil, stats, err
		}
		if logger != nil {
			logger.Debug("blob plist decode degraded to empty", zap.Error(err))
		}
		return nil, stats, nil
	}
	stats.Degraded = g.Degraded
	if g.Degraded {
		// 降级图不可能是合法归档，直接返回空
		return nil, stats, nil
	}

	v, truncated, err := keyedarchive.Decode(g, strict)
	stats.Truncated = truncated
	if err != nil {
		if strict {
			return nil, stats, err
		}
		return nil, stats, nil
	}
	return v, stats, nil
}
