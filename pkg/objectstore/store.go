package objectstore

import (
	"context"
	"fmt"

	"docstream-be/pkg/events"
)

// Store is the capability interface over the object storage backing a
// source reference. Implementations exist per provider and are selected by
// configuration, not by inheritance.
type Store interface {
	// Exists reports whether the referenced object is present and readable.
	Exists(ctx context.Context, ref events.SourceRef) (bool, error)

	// Read returns the full object bytes.
	Read(ctx context.Context, ref events.SourceRef) ([]byte, error)
}

// Config selects and parameterizes the provider implementations.
type Config struct {
	// Endpoint overrides the provider's default endpoint. Required for minio,
	// optional for s3 (custom/compatible deployments) and gcs.
	Endpoint string
	// Token is sent as a bearer token when set (GCS OAuth token or a
	// gateway-issued credential). Empty means anonymous access.
	Token string
	// TimeoutSeconds bounds every call; a breach counts as a transient
	// failure per the pipeline retry policy.
	TimeoutSeconds int
}

// New returns the Store for a provider name.
func New(provider string, cfg Config) (Store, error) {
	switch provider {
	case "gcs":
		return newGcsStore(cfg), nil
	case "s3":
		return newS3Store(cfg, false), nil
	case "minio":
		// MinIO speaks the S3 API with path-style addressing.
		return newS3Store(cfg, true), nil
	}
	return nil, fmt.Errorf("unknown object store provider %q", provider)
}

// Multi routes each call to the store matching the reference's provider.
// The pipeline receives references for any configured provider, so workers
// hold a Multi rather than a single backend.
type Multi struct {
	stores map[string]Store
}

func NewMulti(stores map[string]Store) *Multi {
	return &Multi{stores: stores}
}

func (m *Multi) forRef(ref events.SourceRef) (Store, error) {
	s, ok := m.stores[ref.Provider]
	if !ok {
		return nil, fmt.Errorf("no object store configured for provider %q", ref.Provider)
	}
	return s, nil
}

func (m *Multi) Exists(ctx context.Context, ref events.SourceRef) (bool, error) {
	s, err := m.forRef(ref)
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, ref)
}

func (m *Multi) Read(ctx context.Context, ref events.SourceRef) ([]byte, error) {
	s, err := m.forRef(ref)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, ref)
}
