package bootstrap

import (
	"log/slog"

	"github.com/yuqie6/DayMirror/internal/ai"
	"github.com/yuqie6/DayMirror/internal/eventbus"
	"github.com/yuqie6/DayMirror/internal/pkg/config"
	"github.com/yuqie6/DayMirror/internal/repository"
	"github.com/yuqie6/DayMirror/internal/service"
	"github.com/yuqie6/DayMirror/internal/storage"
)

// Core 持有全部核心依赖，显式装配，不用全局单例
type Core struct {
	Cfg *config.Config
	DB  *repository.Database
	Hub *eventbus.Hub

	Repos struct {
		Record   *repository.RecordRepository
		Analysis *repository.AnalysisRepository
		Weekly   *repository.WeeklyRepository
	}

	Services struct {
		Records  *service.RecordService
		Analyses *service.AnalysisService
		Weeklies *service.WeeklyService
		Memory   *service.MemoryService
	}

	Clients struct {
		DeepSeek *ai.DeepSeekClient
	}

	Analyzer    *ai.BehaviorAnalyzer
	Screenshots *storage.ScreenshotStore
}

// NewCore 构建核心依赖（不启动 HTTP / 调度 / 监控）
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Record = repository.NewRecordRepository(db.DB)
	c.Repos.Analysis = repository.NewAnalysisRepository(db.DB)
	c.Repos.Weekly = repository.NewWeeklyRepository(db.DB)

	// Clients / Analyzer
	c.Clients.DeepSeek = ai.NewDeepSeekClient(&ai.DeepSeekConfig{
		APIKey:         cfg.AI.DeepSeek.APIKey,
		BaseURL:        cfg.AI.DeepSeek.BaseURL,
		Model:          cfg.AI.DeepSeek.Model,
		VisionModel:    cfg.AI.DeepSeek.VisionModel,
		EmbeddingModel: cfg.AI.DeepSeek.EmbeddingModel,
	})
	c.Analyzer = ai.NewBehaviorAnalyzer(c.Clients.DeepSeek)
	if !c.Clients.DeepSeek.IsConfigured() {
		slog.Warn("DeepSeek API 未配置，分析相关功能不可用")
	}

	// 截图存储
	c.Screenshots, err = storage.NewScreenshotStore(cfg.Storage.ScreenshotPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// 长期记忆（嵌入模型未配置时索引/检索自动退化为空操作）
	c.Services.Memory, err = service.NewMemoryService(c.Clients.DeepSeek, &service.MemoryConfig{
		StoragePath: cfg.Storage.MemoryPath,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// Services
	c.Services.Records = service.NewRecordService(c.Repos.Record, c.Analyzer, c.Screenshots, c.Hub)
	c.Services.Analyses = service.NewAnalysisService(c.Repos.Record, c.Repos.Analysis, c.Analyzer, c.Services.Memory, c.Hub)
	c.Services.Weeklies = service.NewWeeklyService(c.Repos.Record, c.Repos.Analysis, c.Repos.Weekly, c.Analyzer, c.Hub)

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
