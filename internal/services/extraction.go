package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/terraincognita07/vocalis/internal/extract"
	"github.com/terraincognita07/vocalis/internal/features"
)

const PDFContentType = "application/pdf"

// ErrExtractionFailed is returned without partial results when a document
// cannot be read.
var ErrExtractionFailed = errors.New("an error occurred while processing the PDF file")

type ExtractionService struct {
	extractor extract.TextExtractor
	intake    *IntakeService
}

func NewExtractionService(extractor extract.TextExtractor, intake *IntakeService) *ExtractionService {
	return &ExtractionService{extractor: extractor, intake: intake}
}

// DetectUpload prefills the feature form from an uploaded PDF. The declared
// content type must be exactly application/pdf.
func (service *ExtractionService) DetectUpload(ctx context.Context, contentType string, document []byte) (features.Detected, error) {
	if strings.TrimSpace(contentType) != PDFContentType {
		return nil, invalid("the uploaded file must be a PDF")
	}
	return service.detect(ctx, document)
}

// DetectStored prefills the feature form from a report already received by the doctor.
func (service *ExtractionService) DetectStored(ctx context.Context, doctorID uint, notificationID uint) (features.Detected, error) {
	notification, err := service.intake.Find(doctorID, notificationID)
	if err != nil {
		return nil, err
	}
	return service.detect(ctx, notification.Report)
}

func (service *ExtractionService) detect(ctx context.Context, document []byte) (features.Detected, error) {
	text, err := service.extractor.ExtractText(ctx, document)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("bytes", len(document)).Msg("pdf text extraction failed")
		return nil, ErrExtractionFailed
	}
	return features.Scan(text), nil
}
