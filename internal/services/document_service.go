package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/studyleave/studyleave-api/config"
	"github.com/studyleave/studyleave-api/internal/models"
	apperrors "github.com/studyleave/studyleave-api/pkg/errors"
	"github.com/studyleave/studyleave-api/pkg/logger"
	"github.com/studyleave/studyleave-api/pkg/metrics"
	"github.com/studyleave/studyleave-api/pkg/typst"
)

// sysInputName is the system input the template reads the request bundle from.
const sysInputName = "inputs"

// DocumentService validates build requests and invokes the external compiler
type DocumentService struct {
	compiler typst.Compiler
	config   *config.Config
}

// NewDocumentService creates a new document service instance
func NewDocumentService(compiler typst.Compiler, cfg *config.Config) *DocumentService {
	return &DocumentService{
		compiler: compiler,
		config:   cfg,
	}
}

// BuildDocument validates req, serializes the canonical record, and runs one
// compiler invocation. Validation failures are returned as
// models.ValidationErrors; compiler failures wrap apperrors.ErrRenderFailed.
// A record that fails validation never reaches the compiler.
func (s *DocumentService) BuildDocument(ctx context.Context, req *models.DocumentRequest) ([]byte, error) {
	if verrs := req.Validate(); verrs != nil {
		metrics.DocumentBuilds.WithLabelValues("validation_failed").Inc()
		logger.Warn("Document request failed validation",
			zap.Int("violations", len(verrs)),
		)
		return nil, verrs
	}

	doc, err := req.Canonicalize(time.Now())
	if err != nil {
		metrics.DocumentBuilds.WithLabelValues("validation_failed").Inc()
		return nil, models.ValidationErrors{{Field: "date", Reason: "invalid_date", Message: err.Error()}}
	}

	payload, err := json.Marshal(doc.Payload())
	if err != nil {
		metrics.DocumentBuilds.WithLabelValues("render_failed").Inc()
		logger.Error("Failed to serialize document payload", zap.Error(err))
		return nil, apperrors.InternalError("failed to serialize document payload")
	}

	if s.config.Typst.CompileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Typst.CompileTimeout)
		defer cancel()
	}

	start := time.Now()
	pdf, err := s.compiler.Compile(ctx, s.config.Typst.TemplatePath, map[string]string{sysInputName: string(payload)})
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.RenderDuration.WithLabelValues("error").Observe(duration)
		metrics.RenderTotal.WithLabelValues("error").Inc()
		metrics.DocumentBuilds.WithLabelValues("render_failed").Inc()
		logger.Error("Document compilation failed",
			zap.Error(err),
			zap.String("template", s.config.Typst.TemplatePath),
			zap.Float64("duration", duration),
		)
		return nil, apperrors.RenderError(err.Error())
	}

	metrics.RenderDuration.WithLabelValues("success").Observe(duration)
	metrics.RenderTotal.WithLabelValues("success").Inc()
	metrics.DocumentBuilds.WithLabelValues("success").Inc()
	metrics.DocumentBuildsByActivity.WithLabelValues(string(doc.ActivityType)).Inc()

	logger.Info("Document compiled",
		zap.String("activity_type", string(doc.ActivityType)),
		zap.Int("size_bytes", len(pdf)),
		zap.Float64("duration", duration),
	)

	return pdf, nil
}

// ActivityTypes returns the supported activity types with display labels
func (s *DocumentService) ActivityTypes() []models.ActivityTypeInfo {
	return models.ActivityTypeInfos()
}
