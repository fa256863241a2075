package ocr

import (
	"context"
	"fmt"
	"net/http"

	"gigstage/pkg/client"
	"gigstage/pkg/model"
)

// Recognizer extracts structured payment data from an uploaded screenshot.
// The recognition algorithm itself is an external collaborator; this core
// only consumes its output. A nil result with nil error means the image was
// processed but nothing usable was recognized.
type Recognizer interface {
	Extract(ctx context.Context, imageURL string) (*model.ExtractedPaymentData, error)
}

// HTTPRecognizer calls the external recognition service.
type HTTPRecognizer struct {
	httpClient *client.HttpClient
}

func NewHTTPRecognizer(baseURL string) *HTTPRecognizer {
	return &HTTPRecognizer{
		httpClient: client.NewHttpClient(baseURL),
	}
}

func (r *HTTPRecognizer) Extract(ctx context.Context, imageURL string) (*model.ExtractedPaymentData, error) {
	resp, err := r.httpClient.POST(ctx, "/api/v1/extract", map[string]string{"image_url": imageURL})
	if err != nil {
		return nil, fmt.Errorf("ocr extraction failed: %w", err)
	}

	// The service answers 204 when it could not recognize anything.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
	}

	var extracted model.ExtractedPaymentData
	if err := resp.DecodeJSON(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode ocr result: %w", err)
	}

	return &extracted, nil
}

// StaticRecognizer returns canned results, for tests and local development.
type StaticRecognizer struct {
	Results map[string]*model.ExtractedPaymentData
	Err     error
}

func (r *StaticRecognizer) Extract(_ context.Context, imageURL string) (*model.ExtractedPaymentData, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Results[imageURL], nil
}

// Disabled is the recognizer used when no OCR service is configured.
type Disabled struct{}

func (Disabled) Extract(context.Context, string) (*model.ExtractedPaymentData, error) {
	return nil, nil
}
