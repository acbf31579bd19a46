package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yuqie6/DayMirror/internal/bootstrap"
	"github.com/yuqie6/DayMirror/internal/httpapi"
	"github.com/yuqie6/DayMirror/internal/service"
	"github.com/yuqie6/DayMirror/internal/watcher"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")
	flag.Parse()

	// .env 不存在时静默跳过
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := bootstrap.NewCore(cfgPath)
	if err != nil {
		slog.Error("启动失败", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	slog.Info("DayMirror 启动中...", "name", core.Cfg.App.Name, "version", core.Cfg.App.Version)

	// HTTP API
	listenAddr := fmt.Sprintf("%s:%d", core.Cfg.Server.Host, core.Cfg.Server.Port)
	server, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: listenAddr})
	if err != nil {
		slog.Error("启动 HTTP 服务失败", "error", err)
		os.Exit(1)
	}

	// 周报调度
	var scheduler *service.Scheduler
	if core.Cfg.Scheduler.Enabled {
		scheduler, err = service.NewScheduler(core.Services.Weeklies, &service.SchedulerConfig{
			Spec:     core.Cfg.Scheduler.Spec,
			Timezone: core.Cfg.Scheduler.Timezone,
		})
		if err != nil {
			slog.Error("创建周报调度器失败", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	// 截图收件箱
	var inbox *watcher.InboxWatcher
	if core.Cfg.Inbox.Enabled {
		inbox, err = watcher.NewInboxWatcher(core.Services.Records, &watcher.InboxConfig{
			Dir:         core.Cfg.Inbox.Dir,
			DebounceSec: core.Cfg.Inbox.DebounceSec,
		})
		if err != nil {
			slog.Error("创建截图收件箱失败", "error", err)
			os.Exit(1)
		}
		_ = inbox.Start(ctx)
	}

	slog.Info("DayMirror 已启动", "base_url", server.BaseURL())

	// 等待退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("正在关闭...")
	cancel()

	if inbox != nil {
		_ = inbox.Stop()
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = server.Shutdown(shutdownCtx)
	shutdownCancel()

	slog.Info("DayMirror 已退出")
}
