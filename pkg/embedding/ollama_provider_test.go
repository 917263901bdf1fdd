package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "nomic-embed-text" {
			t.Errorf("model = %q", req["model"])
		}
		if req["prompt"] != "some text" {
			t.Errorf("prompt = %q", req["prompt"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float64{3, 4},
		})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "nomic-embed-text", 5)
	result, err := provider.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if result.Dim != 2 || len(result.Values) != 2 {
		t.Fatalf("Dim = %d, len = %d", result.Dim, len(result.Values))
	}
	if result.Model != "nomic-embed-text" {
		t.Errorf("Model = %q", result.Model)
	}

	// (3,4) normalizes to (0.6, 0.8)
	if math.Abs(float64(result.Values[0])-0.6) > 1e-6 || math.Abs(float64(result.Values[1])-0.8) > 1e-6 {
		t.Errorf("vector not normalized: %v", result.Values)
	}
}

func TestOllamaServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "nomic-embed-text", 5)
	_, err := provider.Embed(context.Background(), "text")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if !svcErr.Retryable {
		t.Error("5xx must be retryable")
	}
}

func TestNormalizeVector(t *testing.T) {
	got := normalizeVector([]float32{0, 0, 0})
	if got[0] != 0 {
		t.Error("zero vector must pass through unchanged")
	}

	normalized := normalizeVector([]float32{1, 1, 1, 1})
	var mag float64
	for _, v := range normalized {
		mag += float64(v) * float64(v)
	}
	if math.Abs(mag-1) > 1e-6 {
		t.Errorf("magnitude = %f, want 1", mag)
	}
}
