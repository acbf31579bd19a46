package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yuqie6/DayMirror/internal/pkg/isoweek"
	"github.com/yuqie6/DayMirror/internal/schema"
)

// ScreenshotIngester 截图落库能力
type ScreenshotIngester interface {
	IngestScreenshot(ctx context.Context, date string, data []byte, mimeType string) (schema.ScreenTime, error)
}

// InboxWatcher 截图收件箱监控器
// 监控一个目录，把丢进来的 YYYY-MM-DD.jpg/png/webp 截图自动提取入库，
// 成功后删除文件，失败的文件留在原地便于重试。
type InboxWatcher struct {
	watcher     *fsnotify.Watcher
	ingester    ScreenshotIngester
	inboxDir    string
	stopChan    chan struct{}
	running     bool
	mu          sync.Mutex
	stopOnce    sync.Once
	debounceMap map[string]time.Time
	debounceDur time.Duration
}

// InboxConfig 配置
type InboxConfig struct {
	Dir         string // 收件箱目录
	DebounceSec int    // 防抖时间（秒）
}

// NewInboxWatcher 创建收件箱监控器
func NewInboxWatcher(ingester ScreenshotIngester, cfg *InboxConfig) (*InboxWatcher, error) {
	if cfg == nil {
		cfg = &InboxConfig{}
	}
	if cfg.Dir == "" {
		cfg.Dir = "./data/inbox"
	}
	if cfg.DebounceSec <= 0 {
		cfg.DebounceSec = 2
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("创建收件箱目录失败: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}
	if err := watcher.Add(cfg.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("添加监控目录失败: %w", err)
	}

	return &InboxWatcher{
		watcher:     watcher,
		ingester:    ingester,
		inboxDir:    cfg.Dir,
		stopChan:    make(chan struct{}),
		debounceMap: make(map[string]time.Time),
		debounceDur: time.Duration(cfg.DebounceSec) * time.Second,
	}, nil
}

// Start 启动监控，先处理目录里已有的积压文件
func (w *InboxWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()
	slog.Info("截图收件箱监控启动", "dir", w.inboxDir)

	go func() {
		w.drainBacklog(ctx)
		w.watchLoop(ctx)
	}()
	return nil
}

// Stop 停止监控
func (w *InboxWatcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if !w.running {
			w.mu.Unlock()
			return
		}
		w.running = false
		w.mu.Unlock()

		close(w.stopChan)
		_ = w.watcher.Close()
		slog.Info("截图收件箱监控已停止")
	})
	return nil
}

// drainBacklog 处理启动前就在目录里的文件
func (w *InboxWatcher) drainBacklog(ctx context.Context) {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		slog.Warn("读取收件箱目录失败", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.ingestFile(ctx, filepath.Join(w.inboxDir, entry.Name()))
	}
}

func (w *InboxWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("收件箱监控错误", "error", err)
		}
	}
}

func (w *InboxWatcher) handleFsEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	// 防抖：拷贝大文件会触发多次写入事件
	w.mu.Lock()
	last, exists := w.debounceMap[event.Name]
	now := time.Now()
	if exists && now.Sub(last) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.debounceMap[event.Name] = now
	w.mu.Unlock()

	// 等写入完成
	time.Sleep(500 * time.Millisecond)
	w.ingestFile(ctx, event.Name)
}

// parseInboxName 从文件名解析日期和 MIME 类型
func parseInboxName(path string) (date, mimeType string, ok bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	date = strings.TrimSuffix(base, filepath.Ext(base))

	switch ext {
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".png":
		mimeType = "image/png"
	case ".webp":
		mimeType = "image/webp"
	default:
		return "", "", false
	}

	if _, err := time.Parse(isoweek.DateLayout, date); err != nil {
		return "", "", false
	}
	return date, mimeType, true
}

func (w *InboxWatcher) ingestFile(ctx context.Context, path string) {
	date, mimeType, ok := parseInboxName(path)
	if !ok {
		slog.Debug("忽略收件箱文件", "file", filepath.Base(path))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("读取收件箱文件失败", "file", path, "error", err)
		}
		return
	}

	st, err := w.ingester.IngestScreenshot(ctx, date, data, mimeType)
	if err != nil {
		slog.Error("收件箱截图处理失败", "file", filepath.Base(path), "error", err)
		return
	}

	if err := os.Remove(path); err != nil {
		slog.Warn("删除已处理的截图失败", "file", path, "error", err)
	}
	slog.Info("收件箱截图已入库", "date", date, "total_minutes", st.TotalMinutes)
}
