package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"github.com/yuqie6/DayMirror/internal/schema"
)

// Embedder 嵌入向量生成能力
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	HasEmbedding() bool
}

// MemoryResult 记忆查询结果
type MemoryResult struct {
	Content    string
	Similarity float32
	Date       string
}

// MemoryService 长期记忆服务
// 每份日次分析压缩成一段文本后进向量库，日次分析生成时检索相关片段。
type MemoryService struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
}

// MemoryConfig 配置
type MemoryConfig struct {
	StoragePath string // 向量数据库存储路径
}

// NewMemoryService 创建记忆服务
func NewMemoryService(embedder Embedder, cfg *MemoryConfig) (*MemoryService, error) {
	if cfg == nil {
		cfg = &MemoryConfig{}
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "./data/memory"
	}

	if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
		return nil, fmt.Errorf("创建记忆存储目录失败: %w", err)
	}

	db, err := chromem.NewPersistentDB(cfg.StoragePath, false)
	if err != nil {
		return nil, fmt.Errorf("创建向量数据库失败: %w", err)
	}

	collection, err := db.GetOrCreateCollection("daily_memories", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}

	return &MemoryService{
		db:         db,
		collection: collection,
		embedder:   embedder,
	}, nil
}

// IndexDailyAnalysis 索引一天的分析结果
func (s *MemoryService) IndexDailyAnalysis(ctx context.Context, analysis *schema.DailyAnalysis) error {
	if !s.embedder.HasEmbedding() {
		slog.Debug("嵌入模型未配置，跳过索引")
		return nil
	}

	content := fmt.Sprintf("日期: %s\n评分: %d\n亮点: %s\n问题: %s\n根因: %s",
		analysis.Date,
		analysis.OverallScore,
		strings.Join(analysis.Detail.GoodPoints, "；"),
		strings.Join(analysis.Detail.BadPoints, "；"),
		strings.Join(analysis.Detail.RootCauses, "；"))

	embeddings, err := s.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("生成嵌入失败: %w", err)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("嵌入结果为空")
	}

	doc := chromem.Document{
		ID:        "analysis_" + analysis.Date,
		Content:   content,
		Embedding: embeddings[0],
		Metadata: map[string]string{
			"type": "daily_analysis",
			"date": analysis.Date,
		},
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("添加文档失败: %w", err)
	}

	slog.Debug("索引日次分析", "date", analysis.Date)
	return nil
}

// Query 查询相关记忆（余弦相似度）
func (s *MemoryService) Query(ctx context.Context, query string, topK int) ([]MemoryResult, error) {
	if !s.embedder.HasEmbedding() {
		return nil, nil
	}
	if topK <= 0 {
		topK = 3
	}
	if count := s.collection.Count(); count == 0 {
		return nil, nil
	} else if topK > count {
		topK = count
	}

	queryEmb, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("生成查询嵌入失败: %w", err)
	}
	if len(queryEmb) == 0 {
		return nil, fmt.Errorf("查询嵌入为空")
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmb[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}

	memories := make([]MemoryResult, len(results))
	for i, r := range results {
		memories[i] = MemoryResult{
			Content:    r.Content,
			Similarity: r.Similarity,
			Date:       r.Metadata["date"],
		}
	}
	return memories, nil
}
