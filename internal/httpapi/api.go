package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuqie6/DayMirror/internal/ai"
	"github.com/yuqie6/DayMirror/internal/pkg/config"
	"github.com/yuqie6/DayMirror/internal/service"
)

// 截图上传大小上限
const maxScreenshotBytes = 10 << 20

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/records", a.handleRecords)
	mux.HandleFunc("/api/records/detail", a.handleRecordDetail)
	mux.HandleFunc("/api/records/screenshot", a.handleScreenshot)

	mux.HandleFunc("/api/analysis", a.wrapGET(a.getAnalysis))
	mux.HandleFunc("/api/analysis/generate", a.wrapPOST(a.generateAnalysis))

	mux.HandleFunc("/api/weekly", a.wrapGET(a.getWeekly))
	mux.HandleFunc("/api/weekly/generate", a.wrapPOST(a.generateWeekly))

	mux.HandleFunc("/api/settings", a.handleSettings)
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

// writeServiceError 把服务层哨兵错误映射到 HTTP 状态码
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidWeekID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRecordExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrWeeklyNotFound),
		errors.Is(err, service.ErrWeekEmpty):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ai.ErrAIUnconfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		var malformed *ai.MalformedResponseError
		if errors.As(err, &malformed) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ========== records ==========

func (a *apiServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listRecords(w, r)
	case http.MethodPost:
		a.createRecord(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) createRecord(w http.ResponseWriter, r *http.Request) {
	var input service.RecordInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "请求体解析失败: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	record, err := a.core.Services.Records.Create(ctx, &input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (a *apiServer) listRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := a.core.Services.Records.List(ctx, strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end")), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *apiServer) handleRecordDetail(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date 不能为空")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := a.core.Services.Records.Get(ctx, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodPut:
		var input service.RecordInput
		if err := readJSON(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "请求体解析失败: "+err.Error())
			return
		}
		input.Date = date

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		record, err := a.core.Services.Records.Update(ctx, &input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodDelete:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := a.core.Services.Records.Delete(ctx, date); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": date})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ========== screenshot ==========

func (a *apiServer) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date 不能为空")
		return
	}

	switch r.Method {
	case http.MethodPost:
		a.uploadScreenshot(w, r, date)
	case http.MethodGet:
		a.serveScreenshot(w, r, date)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) uploadScreenshot(w http.ResponseWriter, r *http.Request, date string) {
	data, mimeType, err := readImageBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !allowedImageMime(mimeType) {
		writeError(w, http.StatusBadRequest, "不支持的图片格式: "+mimeType)
		return
	}

	// OCR 走视觉模型，给足时间
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	st, err := a.core.Services.Records.IngestScreenshot(ctx, date, data, mimeType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// allowedImageMime 截图只收常见位图格式
func allowedImageMime(mimeType string) bool {
	switch strings.TrimSpace(strings.ToLower(mimeType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}

// readImageBody 读取截图：优先 multipart 的 file 字段，否则取原始请求体
func readImageBody(r *http.Request) ([]byte, string, error) {
	defer r.Body.Close()

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxScreenshotBytes); err != nil {
			return nil, "", errors.New("multipart 解析失败: " + err.Error())
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", errors.New("缺少 file 字段")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxScreenshotBytes))
		if err != nil {
			return nil, "", errors.New("读取上传文件失败")
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxScreenshotBytes))
	if err != nil {
		return nil, "", errors.New("读取请求体失败")
	}
	if len(data) == 0 {
		return nil, "", errors.New("请求体为空")
	}
	return data, contentType, nil
}

func (a *apiServer) serveScreenshot(w http.ResponseWriter, r *http.Request, date string) {
	data, mimeType, err := a.core.Screenshots.Load(r.Context(), date)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "该日期没有截图")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", mimeType)
	_, _ = w.Write(data)
}

// ========== analysis ==========

func (a *apiServer) generateAnalysis(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date 不能为空")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	analysis, err := a.core.Services.Analyses.Generate(ctx, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (a *apiServer) getAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if date := strings.TrimSpace(q.Get("date")); date != "" {
		analysis, err := a.core.Services.Analyses.Get(ctx, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
		return
	}

	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "需要 date 或 start+end 参数")
		return
	}
	analyses, err := a.core.Services.Analyses.GetRange(ctx, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

// ========== weekly ==========

func (a *apiServer) generateWeekly(w http.ResponseWriter, r *http.Request) {
	weekID := strings.TrimSpace(r.URL.Query().Get("week"))
	if weekID == "" {
		writeError(w, http.StatusBadRequest, "week 不能为空")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	weekly, err := a.core.Services.Weeklies.Generate(ctx, weekID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weekly)
}

func (a *apiServer) getWeekly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if weekID := strings.TrimSpace(q.Get("week")); weekID != "" {
		weekly, err := a.core.Services.Weeklies.Get(ctx, weekID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, weekly)
		return
	}
	if date := strings.TrimSpace(q.Get("date")); date != "" {
		weekly, err := a.core.Services.Weeklies.GetForDate(ctx, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, weekly)
		return
	}

	limit := 0
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	weeklies, err := a.core.Services.Weeklies.List(ctx, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weeklies)
}

// ========== settings ==========

type SettingsDTO struct {
	ConfigPath string `json:"config_path"`

	DeepSeekAPIKeySet      bool   `json:"deepseek_api_key_set"`
	DeepSeekBaseURL        string `json:"deepseek_base_url"`
	DeepSeekModel          string `json:"deepseek_model"`
	DeepSeekVisionModel    string `json:"deepseek_vision_model"`
	DeepSeekEmbeddingModel string `json:"deepseek_embedding_model"`

	DBPath       string `json:"db_path"`
	InboxEnabled bool   `json:"inbox_enabled"`
	InboxDir     string `json:"inbox_dir"`
}

type SaveSettingsRequestDTO struct {
	DeepSeekAPIKey         *string `json:"deepseek_api_key"`
	DeepSeekBaseURL        *string `json:"deepseek_base_url"`
	DeepSeekModel          *string `json:"deepseek_model"`
	DeepSeekVisionModel    *string `json:"deepseek_vision_model"`
	DeepSeekEmbeddingModel *string `json:"deepseek_embedding_model"`
}

func (a *apiServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg := a.core.Cfg
		writeJSON(w, http.StatusOK, &SettingsDTO{
			ConfigPath:             a.cfgPath,
			DeepSeekAPIKeySet:      cfg.AI.DeepSeek.APIKey != "",
			DeepSeekBaseURL:        cfg.AI.DeepSeek.BaseURL,
			DeepSeekModel:          cfg.AI.DeepSeek.Model,
			DeepSeekVisionModel:    cfg.AI.DeepSeek.VisionModel,
			DeepSeekEmbeddingModel: cfg.AI.DeepSeek.EmbeddingModel,
			DBPath:                 cfg.Storage.DBPath,
			InboxEnabled:           cfg.Inbox.Enabled,
			InboxDir:               cfg.Inbox.Dir,
		})

	case http.MethodPost:
		var req SaveSettingsRequestDTO
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "请求体解析失败: "+err.Error())
			return
		}

		cfg := a.core.Cfg
		if req.DeepSeekAPIKey != nil {
			cfg.AI.DeepSeek.APIKey = strings.TrimSpace(*req.DeepSeekAPIKey)
		}
		if req.DeepSeekBaseURL != nil {
			cfg.AI.DeepSeek.BaseURL = strings.TrimSpace(*req.DeepSeekBaseURL)
		}
		if req.DeepSeekModel != nil {
			cfg.AI.DeepSeek.Model = strings.TrimSpace(*req.DeepSeekModel)
		}
		if req.DeepSeekVisionModel != nil {
			cfg.AI.DeepSeek.VisionModel = strings.TrimSpace(*req.DeepSeekVisionModel)
		}
		if req.DeepSeekEmbeddingModel != nil {
			cfg.AI.DeepSeek.EmbeddingModel = strings.TrimSpace(*req.DeepSeekEmbeddingModel)
		}

		if err := config.WriteFile(a.cfgPath, cfg); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		// 模型配置热更新需要重建客户端，提示重启生效
		writeJSON(w, http.StatusOK, map[string]any{"saved": true, "restart_required": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
