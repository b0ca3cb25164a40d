package cmd

import (
	"context"
	"os"

	"github.com/haierkeys/margin-note-import-service/global"
	internalApp "github.com/haierkeys/margin-note-import-service/internal/app"
	"github.com/haierkeys/margin-note-import-service/internal/service"
	"github.com/haierkeys/margin-note-import-service/pkg/fileurl"
	"github.com/haierkeys/margin-note-import-service/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type importFlags struct {
	dir     string // Working directory // 工作目录
	config  string // Specified configuration file path // 指定要使用的配置文件路径
	output  string // Output path for deduplicated notes JSON // 去重结果输出路径
	report  string // Report path override // 报告输出路径覆盖
	strict  bool   // Strict blob decoding // 严格 blob 解码
	workers int    // Mapping worker count override // 行映射并发覆盖
}

func init() {
	importEnv := new(importFlags)

	var importCommand = &cobra.Command{
		Use:   "import <package-file> [-c config_file] [-o output_file]",
		Short: "Import a note package and write deduplicated notes",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(importEnv.dir) > 0 {
				err := os.Chdir(importEnv.dir)
				if err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", importEnv.dir))
			}

			cfg, err := loadOrCreateConfig(importEnv.config)
			if err != nil {
				bootstrapLogger.Error("config load err", zap.Error(err))
				return
			}

			lg, err := logger.NewLogger(logger.Config{
				Level:      cfg.Log.Level,
				File:       cfg.Log.File,
				Production: cfg.Log.Production,
			})
			if err != nil {
				bootstrapLogger.Error("logger init err", zap.Error(err))
				return
			}
			global.Logger = lg
			defer lg.Sync()

			serviceConfig := &service.ServiceConfig{
				StrictDecode:      cfg.Import.StrictDecode || importEnv.strict,
				Workers:           cfg.Import.Workers,
				CollapseWarnRatio: cfg.Import.CollapseWarnRatio,
			}
			if importEnv.workers > 0 {
				serviceConfig.Workers = importEnv.workers
			}
			if cfg.Import.TempPath != "" {
				if err := os.MkdirAll(cfg.Import.TempPath, os.ModePerm); err != nil {
					lg.Error("temp path create err", zap.Error(err))
					return
				}
			}

			svc := service.NewImportService(serviceConfig, cfg.Import.TempPath, lg)
			result, err := svc.ImportFile(context.Background(), args[0])
			if err != nil {
				lg.Error("import failed", zap.Error(err))
				return
			}

			if importEnv.output != "" {
				if err := writeNotes(result, importEnv.output); err != nil {
					lg.Error("notes output err", zap.Error(err))
					return
				}
				lg.Info("notes written", zap.String(logger.FieldPath, importEnv.output))
			}

			reportPath := cfg.Report.Path
			if importEnv.report != "" {
				reportPath = importEnv.report
			}
			if reportPath != "" {
				if err := fileurl.CreatePath(reportPath, os.ModePerm); err != nil {
					lg.Error("report path create err", zap.Error(err))
					return
				}
				if err := service.WriteReport(result.Report, reportPath); err != nil {
					lg.Error("report write err", zap.Error(err))
					return
				}
				lg.Info("report written", zap.String(logger.FieldPath, reportPath))
			}
		},
	}

	rootCmd.AddCommand(importCommand)
	fs := importCommand.Flags()
	fs.StringVarP(&importEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&importEnv.config, "config", "c", "", "config file")
	fs.StringVarP(&importEnv.output, "output", "o", "", "deduplicated notes output file")
	fs.StringVarP(&importEnv.report, "report", "r", "", "report output file")
	fs.BoolVar(&importEnv.strict, "strict", false, "fail on blob decode errors")
	fs.IntVar(&importEnv.workers, "workers", 0, "mapping worker count")
}

// loadOrCreateConfig 定位配置文件，找不到时用内嵌默认配置自动创建
func loadOrCreateConfig(path string) (*internalApp.AppConfig, error) {
	if len(path) <= 0 {
		if fileurl.IsExist("config/config-dev.yaml") {
			path = "config/config-dev.yaml"
		} else if fileurl.IsExist("config.yaml") {
			path = "config.yaml"
		} else if fileurl.IsExist("config/config.yaml") {
			path = "config/config.yaml"
		} else {
			bootstrapLogger.Warn("config file not found, creating default config")
			path = "config/config.yaml"

			if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(configDefault), 0666); err != nil {
				return nil, err
			}
			bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
		}
	}

	cfg, realpath, err := internalApp.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	bootstrapLogger.Info("config loaded", zap.String("file", realpath))
	return cfg, nil
}

// writeNotes 把去重结果序列化为 JSON 写入 path
func writeNotes(result *service.ImportResult, path string) error {
	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return err
	}
	data, err := sonic.MarshalIndent(result.Notes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
