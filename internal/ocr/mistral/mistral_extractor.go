package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jdeans2217/canvas-parent-cli/internal/config"
	"github.com/jdeans2217/canvas-parent-cli/internal/ocr"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

const apiURL = "https://api.mistral.ai/v1/ocr"

// Extractor implements port.TextExtractor using the Mistral OCR API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Mistral-based text extractor from the OCR config.
func NewExtractor(cfg config.OCRConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg config.OCRConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg config.OCRConfig, endpoint string) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "mistral-ocr-latest"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// ExtractText runs one OCR pass over the scan bytes. A transient provider
// failure is retried once; everything else surfaces immediately.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, contentType string) (*port.ExtractedText, error) {
	out, err := e.extractOnce(ctx, data, contentType)
	if err == nil {
		return out, nil
	}

	var transient *ocr.TransientError
	if !errors.As(err, &transient) || ctx.Err() != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
	}
	return e.extractOnce(ctx, data, contentType)
}

func (e *Extractor) extractOnce(ctx context.Context, data []byte, contentType string) (*port.ExtractedText, error) {
	document, err := buildDocument(data, contentType)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"model":    e.model,
		"document": document,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &ocr.TransientError{Provider: "mistral", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ocr.TransientError{Provider: "mistral", Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("mistral API error (status %d): %s", resp.StatusCode, string(respBody))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := ocr.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, ocr.NewRateLimitError("mistral", baseErr, retryAfter)
		case resp.StatusCode >= 500:
			return nil, &ocr.TransientError{Provider: "mistral", Err: baseErr}
		default:
			return nil, baseErr
		}
	}

	return parseResponse(respBody)
}

// buildDocument wraps the scan bytes as a base64 data URI in the document
// shape the OCR API expects for the content type.
func buildDocument(data []byte, contentType string) (map[string]interface{}, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, encoded)

	switch contentType {
	case "application/pdf":
		return map[string]interface{}{
			"type":         "document_url",
			"document_url": dataURI,
		}, nil
	case "image/jpeg", "image/png", "image/webp":
		return map[string]interface{}{
			"type":      "image_url",
			"image_url": dataURI,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported content type for OCR: %s", contentType)
	}
}

// apiResponse models the Mistral OCR API response.
type apiResponse struct {
	Model string `json:"model"`
	Pages []struct {
		Index    int    `json:"index"`
		Markdown string `json:"markdown"`
	} `json:"pages"`
}

func parseResponse(body []byte) (*port.ExtractedText, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Pages) == 0 {
		return nil, fmt.Errorf("empty response from API: no pages")
	}

	out := &port.ExtractedText{Model: resp.Model}
	parts := make([]string, 0, len(resp.Pages))
	for _, page := range resp.Pages {
		out.Pages = append(out.Pages, port.PageText{Number: page.Index + 1, Text: page.Markdown})
		parts = append(parts, page.Markdown)
	}
	out.Text = strings.Join(parts, "\n\n")
	return out, nil
}
