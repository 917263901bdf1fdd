package ocr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProcessSuccess(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"pages":[{"page_no":1,"text":"hello"},{"page_no":2,"text":"world","layout_blocks":[{"type":"heading","text":"World"}]}]}`))
	}))
	defer srv.Close()

	client := NewHttpClient(srv.URL, 5)
	result, err := client.Process(context.Background(), []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if gotContentType != "application/pdf" {
		t.Errorf("content type = %q", gotContentType)
	}
	if string(gotBody) != "%PDF-1.4 fake" {
		t.Error("pdf bytes not forwarded")
	}
	if len(result.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(result.Pages))
	}
	if result.Pages[1].LayoutBlocks[0].Type != "heading" {
		t.Errorf("layout blocks not decoded: %+v", result.Pages[1])
	}
}

func TestProcessStatusClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{"unsupported input", http.StatusUnprocessableEntity, false},
		{"bad request", http.StatusBadRequest, false},
		{"server error", http.StatusInternalServerError, true},
		{"gateway timeout", http.StatusGatewayTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewHttpClient(srv.URL, 5)
			_, err := client.Process(context.Background(), []byte("pdf"))

			var svcErr *ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("expected ServiceError, got %v", err)
			}
			if svcErr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", svcErr.Retryable, tt.wantRetryable)
			}
		})
	}
}

func TestProcessEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pages":[]}`))
	}))
	defer srv.Close()

	client := NewHttpClient(srv.URL, 5)
	_, err := client.Process(context.Background(), []byte("pdf"))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Retryable {
		t.Error("an empty OCR result is an input defect, not a retryable failure")
	}
}

func TestProcessUnreachable(t *testing.T) {
	client := NewHttpClient("http://127.0.0.1:1", 1)
	_, err := client.Process(context.Background(), []byte("pdf"))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if !svcErr.Retryable {
		t.Error("transport failures must be retryable")
	}
}
