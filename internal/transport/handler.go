package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sutinse/ai-analysis-api/internal/config"
	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/internal/logger"
	"github.com/sutinse/ai-analysis-api/internal/service"
	"github.com/sutinse/ai-analysis-api/pkg/models"
)

const (
	serviceName    = "AI Analysis API"
	serviceVersion = "1.0.0"

	// multipart parts above this size are spooled to disk
	maxMultipartMemory = 32 << 20
)

// NewHandler builds the gin engine. reg receives the HTTP metrics and is served on /metrics.
func NewHandler(svc service.AnalysisService, cfg *config.Config, reg *prometheus.Registry) (http.Handler, error) {
	httpMetrics, err := newHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory

	r.Use(
		gin.Recovery(),
		requestID(),
		accessLog(),
		httpMetrics.middleware(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	api := r.Group("/api/ai")
	api.POST("/analyze", analyze(svc, cfg))
	api.GET("/system-messages", systemMessages(svc))
	api.GET("/health", healthCheck(svc))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r, nil
}

func analyze(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		req, err := parseAnalysisForm(c, cfg)
		if err != nil {
			respondError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id":     c.GetString(requestIDKey),
			"input_kind":     req.InputKind(),
			"system_message": req.InstructionSource(),
			"format":         req.ResponseFormat().String(),
		}).Info("Processing analysis request")

		result, err := svc.Analyze(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("X-Analysis-ID", result.ID)
		if result.Format == models.ResponseFormatJSON {
			c.JSON(http.StatusOK, models.NewAnalysisResponse(result))
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.ResultText))
	}
}

// parseAnalysisForm reads the multipart (or urlencoded) fields into a validated request
func parseAnalysisForm(c *gin.Context, cfg *config.Config) (*models.AnalysisRequest, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewContentRejectedError(
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		}
		return nil, apperrors.NewValidationError("invalid form data", err)
	}

	params := models.RequestParams{
		Text:               c.PostForm("text"),
		WebURL:             c.PostForm("webUrl"),
		NamedInstructionID: c.PostForm("systemMessageId"),
		CustomInstruction:  c.PostForm("customSystemMessage"),
	}

	if raw := strings.TrimSpace(c.PostForm("responseFormat")); raw != "" {
		format, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("responseFormat must be an integer, got %q", raw), err)
		}
		params.ResponseFormat = format
	}

	file, err := readUpload(c, cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	params.File = file

	return models.NewAnalysisRequest(params, models.WithMaxTextLength(cfg.MaxTextLength))
}

// readUpload returns nil when no file part was sent. Oversized files are not read;
// their declared size is enough for the content resolver to reject them.
func readUpload(c *gin.Context, maxSize int64) (*models.UploadedFile, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewValidationError("invalid file upload", err)
	}

	upload := &models.UploadedFile{Filename: fh.Filename, Size: fh.Size}
	if fh.Size > maxSize {
		return upload, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read uploaded file", err)
	}
	defer f.Close()

	upload.Content, err = io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read uploaded file", err)
	}
	return upload, nil
}

func systemMessages(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make(map[string]models.SystemMessageView)
		for _, in := range svc.SystemMessages() {
			out[in.ID] = models.SystemMessageView{Description: in.Description, Body: in.Body}
		}
		c.JSON(http.StatusOK, out)
	}
}

func healthCheck(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{Status: "UP", Service: serviceName, Version: serviceVersion}
		status := http.StatusOK
		if !svc.Healthy() {
			resp.Status = "DOWN"
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with its cause chain and returns only the safe summary
func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Type:    string(apperrors.ErrorTypeInternal),
		Message: "internal server error",
	}
	if appErr, ok := apperrors.As(err); ok {
		resp.Type = string(appErr.Type)
		resp.Message = appErr.Message
	} else if code == http.StatusGatewayTimeout {
		resp.Type = string(apperrors.ErrorTypeTimeout)
		resp.Message = "request timed out"
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString(requestIDKey),
		"status_code": code,
		"error_type":  resp.Type,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, resp)
}

