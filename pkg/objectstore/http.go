package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docstream-be/pkg/events"
)

// ErrNotFound marks a missing object. Callers classify it as a permanent
// input failure, as opposed to network errors which are transient.
type ErrNotFound struct {
	Ref events.SourceRef
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("object not found: %s", e.Ref.URI())
}

func httpClient(cfg Config) *http.Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func do(ctx context.Context, client *http.Client, method, rawURL, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

// gcsStore reads objects via the GCS JSON API media endpoint.
type gcsStore struct {
	endpoint string
	token    string
	client   *http.Client
}

func newGcsStore(cfg Config) *gcsStore {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://storage.googleapis.com"
	}
	return &gcsStore{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    cfg.Token,
		client:   httpClient(cfg),
	}
}

func (s *gcsStore) objectURL(ref events.SourceRef) string {
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
		s.endpoint, url.PathEscape(ref.Bucket), url.PathEscape(ref.Key))
	if ref.Version != "" {
		u += "&generation=" + url.QueryEscape(ref.Version)
	}
	return u
}

func (s *gcsStore) Exists(ctx context.Context, ref events.SourceRef) (bool, error) {
	resp, err := do(ctx, s.client, http.MethodHead, s.objectURL(ref), s.token)
	if err != nil {
		return false, fmt.Errorf("gcs head failed: %w", err)
	}
	defer resp.Body.Close()
	return checkExists(resp.StatusCode, "gcs")
}

func (s *gcsStore) Read(ctx context.Context, ref events.SourceRef) ([]byte, error) {
	resp, err := do(ctx, s.client, http.MethodGet, s.objectURL(ref), s.token)
	if err != nil {
		return nil, fmt.Errorf("gcs get failed: %w", err)
	}
	defer resp.Body.Close()
	return readBody(resp, ref, "gcs")
}

// s3Store reads objects from S3 or any S3-compatible endpoint. MinIO uses
// path-style addressing; AWS uses virtual-host style.
type s3Store struct {
	endpoint  string
	pathStyle bool
	token     string
	client    *http.Client
}

func newS3Store(cfg Config, pathStyle bool) *s3Store {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://s3.amazonaws.com"
	}
	return &s3Store{
		endpoint:  strings.TrimRight(endpoint, "/"),
		pathStyle: pathStyle,
		token:     cfg.Token,
		client:    httpClient(cfg),
	}
}

func (s *s3Store) objectURL(ref events.SourceRef) string {
	key := url.PathEscape(ref.Key)
	u := fmt.Sprintf("%s/%s/%s", s.endpoint, url.PathEscape(ref.Bucket), key)
	if !s.pathStyle {
		if parsed, err := url.Parse(s.endpoint); err == nil {
			u = fmt.Sprintf("%s://%s.%s/%s", parsed.Scheme, ref.Bucket, parsed.Host, key)
		}
	}
	if ref.Version != "" {
		u += "?versionId=" + url.QueryEscape(ref.Version)
	}
	return u
}

func (s *s3Store) Exists(ctx context.Context, ref events.SourceRef) (bool, error) {
	resp, err := do(ctx, s.client, http.MethodHead, s.objectURL(ref), s.token)
	if err != nil {
		return false, fmt.Errorf("s3 head failed: %w", err)
	}
	defer resp.Body.Close()
	return checkExists(resp.StatusCode, "s3")
}

func (s *s3Store) Read(ctx context.Context, ref events.SourceRef) ([]byte, error) {
	resp, err := do(ctx, s.client, http.MethodGet, s.objectURL(ref), s.token)
	if err != nil {
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()
	return readBody(resp, ref, "s3")
}

func checkExists(status int, provider string) (bool, error) {
	switch {
	case status == http.StatusOK:
		return true, nil
	case status == http.StatusNotFound:
		return false, nil
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		// Unreadable counts as absent for the ingest validation, but the
		// distinction matters in logs.
		return false, fmt.Errorf("%s object not readable (status %d)", provider, status)
	default:
		return false, fmt.Errorf("%s head error (status %d)", provider, status)
	}
}

func readBody(resp *http.Response, ref events.SourceRef, provider string) ([]byte, error) {
	if resp.StatusCode == http.StatusNotFound {
		return nil, &ErrNotFound{Ref: ref}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s get error (status %d): %s", provider, resp.StatusCode, string(body))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read failed: %w", provider, err)
	}
	return data, nil
}
