package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DeepSeekClient OpenAI 兼容的模型 API 客户端
// 文本分析走 chat 接口，截图 OCR 走视觉模型，向量记忆走 embeddings 接口。
type DeepSeekClient struct {
	apiKey         string
	baseURL        string
	model          string
	visionModel    string
	embeddingModel string
	client         *http.Client
}

// DeepSeekConfig 配置
type DeepSeekConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	VisionModel    string
	EmbeddingModel string
}

// NewDeepSeekClient 创建客户端
func NewDeepSeekClient(cfg *DeepSeekConfig) *DeepSeekClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}

	return &DeepSeekClient{
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		model:          cfg.Model,
		visionModel:    cfg.VisionModel,
		embeddingModel: cfg.EmbeddingModel,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message 消息（Content 可以是字符串或多模态分段列表）
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart 多模态消息分段
type ContentPart struct {
	Type     string    `json:"type"` // text | image_url
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL 图片引用（data URI 内联）
type ImageURL struct {
	URL string `json:"url"`
}

// ChatResponse 聊天响应
type ChatResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice 选择
type Choice struct {
	Index        int           `json:"index"`
	Message      choiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type choiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Chat 发送聊天请求
func (c *DeepSeekClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.ChatWithOptions(ctx, messages, 0.3, 2000)
}

// ChatWithOptions 带参数的聊天请求
func (c *DeepSeekClient) ChatWithOptions(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	return c.chat(ctx, ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}

// ChatWithImage 带图片的聊天请求（截图 OCR 用视觉模型）
func (c *DeepSeekClient) ChatWithImage(ctx context.Context, systemPrompt, userText string, imageBytes []byte, mimeType string) (string, error) {
	model := c.visionModel
	if model == "" {
		return "", fmt.Errorf("视觉模型未配置")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageBytes))
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: []ContentPart{
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}},
			{Type: "text", Text: userText},
		}},
	}

	return c.chat(ctx, ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   1024,
	})
}

func (c *DeepSeekClient) chat(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("模型 API 错误", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("API 错误: %s", resp.Status)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("无响应内容")
	}

	slog.Debug("模型 API 调用成功",
		"tokens", chatResp.Usage.TotalTokens,
		"model", req.Model,
	)

	return chatResp.Choices[0].Message.Content, nil
}

// embeddingRequest embeddings 请求
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse embeddings 响应
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed 生成文本嵌入向量
func (c *DeepSeekClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if c.embeddingModel == "" {
		return nil, fmt.Errorf("嵌入模型未配置")
	}

	body, err := json.Marshal(embeddingRequest{Model: c.embeddingModel, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("嵌入 API 错误", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("API 错误: %s", resp.Status)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	out := make([][]float32, 0, len(embResp.Data))
	for _, d := range embResp.Data {
		out = append(out, d.Embedding)
	}
	return out, nil
}

// IsConfigured 检查是否已配置
func (c *DeepSeekClient) IsConfigured() bool {
	return c.apiKey != ""
}

// HasVision 是否配置了视觉模型
func (c *DeepSeekClient) HasVision() bool {
	return c.apiKey != "" && c.visionModel != ""
}

// HasEmbedding 是否配置了嵌入模型
func (c *DeepSeekClient) HasEmbedding() bool {
	return c.apiKey != "" && c.embeddingModel != ""
}

// ChatWithRetry 带重试的聊天请求（指数退避）
// 分析编排层不做重试，重试策略留给外部调用方按需使用。
func (c *DeepSeekClient) ChatWithRetry(ctx context.Context, messages []Message, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.Chat(ctx, messages)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return "", err
		}

		// 指数退避：1s, 2s, 4s...
		backoff := time.Duration(1<<uint(i)) * time.Second
		slog.Warn("API 调用失败，准备重试", "attempt", i+1, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("达到最大重试次数 (%d): %w", maxRetries, lastErr)
}

// isRetryableError 判断是否是可重试错误（网络错误、5xx）
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}
