package pipeline

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"transient", Transient(StageOcr, CodeOcrServiceError, errors.New("timeout")), KindTransient},
		{"permanent", Permanent(StageIngest, CodeObjectNotFound, errors.New("404")), KindPermanent},
		{"ordering", Ordering(StageChunker, CodeDocumentMissing, nil), KindOrdering},
		{"wrapped", fmt.Errorf("outer: %w", Permanent(StageEmbedder, CodeEmbeddingDimMismatch, nil)), KindPermanent},
		{"unclassified defaults to transient", errors.New("who knows"), KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	err := Transient(StageIndexer, CodeIndexIncomplete, errors.New("3 of 5"))
	if got := CodeOf(err); got != CodeIndexIncomplete {
		t.Errorf("CodeOf() = %s, want %s", got, CodeIndexIncomplete)
	}
	if got := CodeOf(errors.New("plain")); got != CodeStoreError {
		t.Errorf("CodeOf(plain) = %s, want %s", got, CodeStoreError)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient(StageOcr, CodeOcrServiceError, cause)
	if !errors.Is(err, cause) {
		t.Errorf("wrapped cause must be reachable through errors.Is")
	}
}
