package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LayoutBlock is an optional structural hint attached to a page: a detected
// section heading, table, figure caption and so on.
type LayoutBlock struct {
	Type string `json:"type"` // "paragraph", "heading", "table", ...
	Text string `json:"text"`
}

// Page is one page of extracted text.
type Page struct {
	PageNo       int           `json:"page_no"`
	Text         string        `json:"text"`
	LayoutBlocks []LayoutBlock `json:"layout_blocks,omitempty"`
}

// Result is the full OCR output for one document.
type Result struct {
	Pages []Page `json:"pages"`
}

// ServiceError marks a failed call to the OCR endpoint. Retryable reports
// whether the failure was infrastructure (5xx, network) rather than input.
type ServiceError struct {
	Status    int
	Body      string
	Retryable bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ocr service error (status %d): %s", e.Status, e.Body)
}

// Client calls the OCR model-serving endpoint.
type Client interface {
	Process(ctx context.Context, pdf []byte) (*Result, error)
}

// HttpClient is the production Client over the OCR endpoint's HTTP API.
type HttpClient struct {
	baseURL string
	client  *http.Client
}

func NewHttpClient(baseURL string, timeoutSeconds int) *HttpClient {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HttpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Process posts the PDF bytes and decodes the extracted pages. 4xx responses
// mean the input is unsupported (permanent); 5xx and transport errors are
// retryable.
func (c *HttpClient) Process(ctx context.Context, pdf []byte) (*Result, error) {
	endpoint := fmt.Sprintf("%s/v1/ocr", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ServiceError{Status: 0, Body: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Status: resp.StatusCode, Body: err.Error(), Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{
			Status:    resp.StatusCode,
			Body:      string(bodyBytes),
			Retryable: resp.StatusCode >= 500,
		}
	}

	var result Result
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if len(result.Pages) == 0 {
		return nil, &ServiceError{Status: resp.StatusCode, Body: "empty ocr result", Retryable: false}
	}

	return &result, nil
}
