package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/sakif/inkwell/internal/ai"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/extract"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// SampleService handles handwriting sample uploads and listing.
type SampleService struct {
	samples   repository.SampleRepository
	extractor *extract.Extractor
	gen       ai.TextGenerator // nil when no AI model is configured
	logger    *slog.Logger
}

func NewSampleService(
	samples repository.SampleRepository,
	extractor *extract.Extractor,
	gen ai.TextGenerator,
	logger *slog.Logger,
) *SampleService {
	return &SampleService{
		samples:   samples,
		extractor: extractor,
		gen:       gen,
		logger:    logger,
	}
}

// Upload processes a handwriting image: OCR, style analysis, then persist.
//
// Both OCR and style analysis degrade rather than fail — a sample with
// empty OCR text and the default style profile is still a valid sample.
// The original image is kept base64-encoded so it can be re-analyzed later.
func (s *SampleService) Upload(ctx context.Context, userID, sampleName string, image []byte) (*model.HandwritingSample, error) {
	if len(image) == 0 {
		return nil, apperror.ValidationFailed("file", "image file is required")
	}
	if sampleName == "" {
		sampleName = "My Handwriting"
	}

	ocrText := s.extractor.OCRText(ctx, image)
	style := ai.AnalyzeStyle(ctx, s.gen, ocrText, s.logger)

	sample := &model.HandwritingSample{
		UserID:      userID,
		SampleName:  sampleName,
		OCRText:     ocrText,
		StyleData:   style,
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	}
	if err := s.samples.CreateSample(ctx, sample); err != nil {
		return nil, fmt.Errorf("service/sample: storing sample: %w", err)
	}

	s.logger.Info("handwriting sample processed",
		slog.String("sampleID", sample.ID),
		slog.String("userID", userID),
		slog.Int("ocrChars", len(ocrText)),
	)

	return sample, nil
}

// List returns the user's samples, newest first.
func (s *SampleService) List(ctx context.Context, userID string) ([]model.HandwritingSample, error) {
	samples, err := s.samples.ListSamples(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/sample: listing samples: %w", err)
	}
	return samples, nil
}
