package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/margin-note-import-service/internal/container"
	"github.com/haierkeys/margin-note-import-service/internal/dao"
	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/code"
	"github.com/haierkeys/margin-note-import-service/pkg/errors"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"
	"github.com/haierkeys/margin-note-import-service/pkg/timex"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// databaseSuffix 容器内数据库条目的后缀
const databaseSuffix = ".marginnotes"

// ImportResult 一次导入运行的产物
type ImportResult struct {
	// Notes 去重后的输出记录，顺序确定
	Notes []*domain.NoteRecord `json:"notes"`
	// Topics 主题查找表
	Topics map[string]*domain.TopicRecord `json:"topics"`
	// Media 媒体查找表
	Media map[string]*domain.MediaRecord `json:"media"`
	// Groups 分组结果
	Groups []*domain.ContentGroup `json:"groups"`
	// Report 统计报告
	Report *domain.Report `json:"report"`
}

// ImportService 编排完整导入流程：
// 容器解包 → 数据库行抽取 → 主题/媒体查找表 → 行映射 → 分组 → 去重
type ImportService interface {
	// ImportFile 读取磁盘上的容器文件并执行导入
	ImportFile(ctx context.Context, path string) (*ImportResult, error)

	// Import 对容器字节执行导入
	Import(ctx context.Context, data []byte) (*ImportResult, error)
}

// importService 实现 ImportService
type importService struct {
	config  *ServiceConfig
	tempDir string
	logger  *zap.Logger

	topics  TopicService
	media   MediaService
	records RecordService
	groups  GroupService
	dedup   DedupService
}

// NewImportService 创建 ImportService 实例，tempDir 为空时使用系统临时目录
func NewImportService(config *ServiceConfig, tempDir string, log *zap.Logger) ImportService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &importService{
		config:  config,
		tempDir: tempDir,
		logger:  log,
		topics:  NewTopicService(config, log),
		media:   NewMediaService(log),
		records: NewRecordService(config, log),
		groups:  NewGroupService(log),
		dedup:   NewDedupService(config, log),
	}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorContainerFormat, err).
			WithStage("read").WithDetails(filepath.Base(path))
	}
	return s.Import(ctx, data)
}

func (s *importService) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String(logger.FieldRunID, runID))
	started := time.Now()

	report := &domain.Report{
		RunID:     runID,
		StartedAt: timex.Now(),
	}

	// 容器解包
	reader, err := container.New(data)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorContainerFormat, err).WithStage("container")
	}
	report.EntriesTotal = len(reader.Entries())
	log.Info("container opened",
		zap.Int(logger.FieldCount, report.EntriesTotal),
		zap.Int(logger.FieldSize, len(data)))

	dbBytes, skipped, err := s.extractDatabase(reader, report, log)
	if err != nil {
		return nil, err
	}
	report.EntriesSkipped = skipped

	// 数据库行抽取
	d, err := dao.NewFromBytes(dbBytes, s.tempDir)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorDatabaseShape, err).WithStage("database")
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Warn("database close failed", zap.Error(err))
		}
	}()

	result, err := s.runPipeline(ctx, d, report, log)
	if err != nil {
		return nil, err
	}

	report.FinishedAt = timex.Now()
	log.Info("import finished",
		zap.Int("notes", report.Deduplicated),
		zap.Int("groups", report.Groups),
		zap.Duration(logger.FieldDuration, time.Since(started)))
	return result, nil
}

// extractDatabase 在容器条目中定位并解出数据库
// 多个候选时取第一个可解出的，其余计入跳过
func (s *importService) extractDatabase(reader *container.Reader, report *domain.Report, log *zap.Logger) ([]byte, int, error) {
	candidates := reader.FindSuffix(databaseSuffix)
	if len(candidates) == 0 {
		return nil, 0, errors.NewAppError(code.ErrorContainerFormat, container.ErrEntryNotFound).
			WithStage("container").WithDetails("no database entry with suffix " + databaseSuffix)
	}

	var skipped int
	for _, entry := range candidates {
		dbBytes, err := reader.Extract(entry)
		if err != nil {
			skipped++
			report.AddStageError("extract", entry.Name+": "+err.Error())
			log.Warn("database entry extraction failed, trying next",
				zap.String(logger.FieldEntry, entry.Name),
				zap.Error(err))
			continue
		}
		log.Info("database entry extracted",
			zap.String(logger.FieldEntry, entry.Name),
			zap.Int(logger.FieldSize, len(dbBytes)))
		return dbBytes, skipped, nil
	}
	return nil, skipped, errors.NewAppError(code.ErrorEntryExtraction, container.ErrCorruptEntry).
		WithStage("extract").WithDetails("all database candidates failed")
}

// runPipeline 在已打开的行源上执行剩余阶段
func (s *importService) runPipeline(ctx context.Context, source domain.RowSource, report *domain.Report, log *zap.Logger) (*ImportResult, error) {
	topicRows, err := source.Topics(ctx)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorDatabaseShape, err).WithStage("topics")
	}
	mediaRows, err := source.Media(ctx)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorDatabaseShape, err).WithStage("media")
	}
	noteRows, err := source.Notes(ctx)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorDatabaseShape, err).WithStage("notes")
	}
	report.NotesTotal = len(noteRows)

	topics := s.topics.BuildLookup(topicRows)
	media := s.media.BuildLookup(mediaRows)
	report.Topics = len(topics)
	report.MediaRecords = len(media)

	notes, mapStats, err := s.records.BuildNotes(ctx, noteRows, media)
	if err != nil {
		return nil, errors.NewAppError(code.ErrorRowMapping, err).WithStage("mapping")
	}
	report.NotesMapped = mapStats.Mapped
	report.NotesSkipped = mapStats.Skipped
	report.PlistTruncated = mapStats.Truncated
	report.PlistDegraded = mapStats.Degraded

	groups := s.groups.BuildGroups(notes, topics)
	report.Groups = len(groups)

	output, dedupStats := s.dedup.Deduplicate(groups)
	report.Deduplicated = dedupStats.Output
	report.GroupsDropped = dedupStats.GroupsDropped
	report.CollapseWarning = dedupStats.CollapseWarning
	if report.CollapseWarning {
		report.AddStageError("dedup", "output collapse above threshold")
	}

	log.Info("pipeline stages complete",
		zap.Int("mapped", report.NotesMapped),
		zap.Int("skipped", report.NotesSkipped),
		zap.Int("groups", report.Groups),
		zap.Int("deduplicated", report.Deduplicated))

	return &ImportResult{
		Notes:  output,
		Topics: topics,
		Media:  media,
		Groups: groups,
		Report: report,
	}, nil
}

// WriteReport 把统计报告序列化为 JSON 写入 path
func WriteReport(report *domain.Report, path string) error {
	data, err := sonic.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.NewAppError(code.ErrorReportWrite, err).WithStage("report")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewAppError(code.ErrorReportWrite, err).
			WithStage("report").WithDetails(path)
	}
	return nil
}
