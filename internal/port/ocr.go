package port

import "context"

// PageText is one page of OCR output. The reconciliation core only consumes
// the concatenated blob; per-page structure is kept for audit display.
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ExtractedText is the OCR provider's raw output for one scan.
type ExtractedText struct {
	Text  string     `json:"text"`
	Pages []PageText `json:"pages,omitempty"`
	Model string     `json:"model,omitempty"`
}

// TextExtractor abstracts the OCR provider. Implementations own their
// timeout and retry policy; transient failures should be retried once
// before surfacing.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (*ExtractedText, error)
}
