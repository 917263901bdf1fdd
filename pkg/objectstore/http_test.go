package objectstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docstream-be/pkg/events"
)

func minioServer(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodHead {
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMinioExistsAndRead(t *testing.T) {
	srv := minioServer(t, map[string][]byte{
		"/pdfs/report.pdf": []byte("%PDF data"),
	})

	store, err := New("minio", Config{Endpoint: srv.URL, TimeoutSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}

	ref := events.SourceRef{Provider: "minio", Bucket: "pdfs", Key: "report.pdf"}
	ctx := context.Background()

	exists, err := store.Exists(ctx, ref)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected object to exist")
	}

	data, err := store.Read(ctx, ref)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "%PDF data" {
		t.Errorf("Read = %q", data)
	}
}

func TestMinioMissingObject(t *testing.T) {
	srv := minioServer(t, nil)

	store, err := New("minio", Config{Endpoint: srv.URL, TimeoutSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}

	ref := events.SourceRef{Provider: "minio", Bucket: "pdfs", Key: "nope.pdf"}
	ctx := context.Background()

	exists, err := store.Exists(ctx, ref)
	if err != nil {
		t.Fatalf("Exists on 404 must not error: %v", err)
	}
	if exists {
		t.Error("expected absent object")
	}

	_, err = store.Read(ctx, ref)
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGcsObjectURL(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	store, err := New("gcs", Config{Endpoint: srv.URL, Token: "tok-123", TimeoutSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}

	ref := events.SourceRef{Provider: "gcs", Bucket: "bucket", Key: "a.pdf", Version: "7"}
	if _, err := store.Read(context.Background(), ref); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/storage/v1/b/bucket/o/a.pdf" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "alt=media&generation=7" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("authorization = %q", gotAuth)
	}
}

func TestUnknownProvider(t *testing.T) {
	if _, err := New("ftp", Config{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMultiRoutesByProvider(t *testing.T) {
	srv := minioServer(t, map[string][]byte{"/b/k.pdf": []byte("x")})
	store, err := New("minio", Config{Endpoint: srv.URL, TimeoutSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}

	multi := NewMulti(map[string]Store{"minio": store})

	ok, err := multi.Exists(context.Background(), events.SourceRef{Provider: "minio", Bucket: "b", Key: "k.pdf"})
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	if _, err := multi.Exists(context.Background(), events.SourceRef{Provider: "gcs", Bucket: "b", Key: "k.pdf"}); err == nil {
		t.Error("expected error for unconfigured provider")
	}
}
