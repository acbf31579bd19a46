package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	AI        AIConfig        `mapstructure:"ai"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Inbox     InboxConfig     `mapstructure:"inbox"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath         string `mapstructure:"db_path"`
	MemoryPath     string `mapstructure:"memory_path"`
	ScreenshotPath string `mapstructure:"screenshot_path"`
}

// AIConfig AI 配置
type AIConfig struct {
	DeepSeek DeepSeekConfig `mapstructure:"deepseek"`
}

// DeepSeekConfig DeepSeek 配置
type DeepSeekConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	VisionModel    string `mapstructure:"vision_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// SchedulerConfig 周报调度配置
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Spec     string `mapstructure:"spec"`
	Timezone string `mapstructure:"timezone"`
}

// InboxConfig 截图收件箱配置
type InboxConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Dir         string `mapstructure:"dir"`
	DebounceSec int    `mapstructure:"debounce_sec"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("DAYMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.AI.DeepSeek.APIKey = expandEnv(cfg.AI.DeepSeek.APIKey)

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "daymirror")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)

	// Storage
	v.SetDefault("storage.db_path", "./data/daymirror.db")
	v.SetDefault("storage.memory_path", "./data/memory")
	v.SetDefault("storage.screenshot_path", "./data/screenshots")

	// AI
	v.SetDefault("ai.deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("ai.deepseek.model", "deepseek-chat")

	// Scheduler：每周一 00:05 自动生成上周周报
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "5 0 * * 1")

	// Inbox
	v.SetDefault("inbox.enabled", false)
	v.SetDefault("inbox.dir", "./data/inbox")
	v.SetDefault("inbox.debounce_sec", 2)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
