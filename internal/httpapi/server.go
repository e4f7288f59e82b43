package httpapi

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/answer"
	"github.com/getcharzp/ocr-eval/postprocess"
	"github.com/getcharzp/ocr-eval/preprocess"
)

// maxUploadSize 上传图片大小上限
const maxUploadSize = 10 << 20

// Predictor 识别单张图像
type Predictor interface {
	Predict(img image.Image) (postprocess.Result, error)
}

// PredictResponse /predict/image 响应
type PredictResponse struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Answer     *string  `json:"answer,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler HTTP 处理器
type Handler struct {
	engine  Predictor
	answers *answer.Matcher
	logger  zerolog.Logger
}

// NewRouter 构建路由. reg 同时用于注册 HTTP 指标和暴露 /metrics.
func NewRouter(engine Predictor, answers *answer.Matcher, logger zerolog.Logger, reg *prometheus.Registry) http.Handler {
	h := &Handler{engine: engine, answers: answers, logger: logger}
	m := newMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(m.middleware)
	r.Use(h.logRequests)

	r.Get("/health", h.Health)
	r.Post("/predict/image", h.PredictImage)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		reqID := uuid.NewString()
		ww.Header().Set("X-Request-Id", reqID)

		logger := h.logger.With().Str("request_id", reqID).Logger()
		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

		logger.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", ww.Status()).Dur("took", time.Since(start)).Msg("request")
	})
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// PredictImage 识别上传的图片 (multipart 字段 image, 可选字段 name 用于匹配标准答案)
func (h *Handler) PredictImage(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "无法解析表单"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "缺少图片, 表单字段名为 image"})
		return
	}
	defer file.Close()

	img, err := preprocess.Decode(file)
	if err != nil {
		logger.Warn().Err(err).Str("file", header.Filename).Msg("图片解码失败")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := h.engine.Predict(img)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ocreval.ErrImageDecode) {
			status = http.StatusBadRequest
		}
		logger.Error().Err(err).Str("file", header.Filename).Msg("识别失败")
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := PredictResponse{Text: res.Text, Confidence: res.Confidence}
	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	if label, ok := h.answers.Get(name); ok {
		resp.Answer = &label
		if acc, ok := answer.Accuracy(res.Text, label); ok {
			resp.Accuracy = &acc
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
