package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScreenshotStore 截图的本地文件存储
// 每天一张，按日期命名，重复上传直接覆盖。
type ScreenshotStore struct {
	baseDir string
}

// NewScreenshotStore 创建截图存储
func NewScreenshotStore(baseDir string) (*ScreenshotStore, error) {
	if baseDir == "" {
		baseDir = "./data/screenshots"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建截图目录失败: %w", err)
	}
	return &ScreenshotStore{baseDir: baseDir}, nil
}

func extForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Save 保存一天的截图，返回存储定位符（相对路径）
func (s *ScreenshotStore) Save(ctx context.Context, date string, data []byte, mimeType string) (string, error) {
	// 同日期的旧截图换了格式也要清掉
	for _, ext := range []string{".jpg", ".png", ".webp"} {
		old := filepath.Join(s.baseDir, date+ext)
		if ext != extForMime(mimeType) {
			os.Remove(old)
		}
	}

	name := date + extForMime(mimeType)
	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("写入截图失败: %w", err)
	}
	return name, nil
}

// Load 读取一天的截图，不存在时返回 os.ErrNotExist
func (s *ScreenshotStore) Load(ctx context.Context, date string) ([]byte, string, error) {
	for _, ext := range []string{".jpg", ".png", ".webp"} {
		path := filepath.Join(s.baseDir, date+ext)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, mimeForExt(ext), nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("读取截图失败: %w", err)
		}
	}
	return nil, "", os.ErrNotExist
}
