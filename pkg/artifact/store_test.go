package artifact

import (
	"errors"
	"testing"

	"docstream-be/pkg/ocr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("", true)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	result := &ocr.Result{
		Pages: []ocr.Page{
			{PageNo: 1, Text: "first page"},
			{PageNo: 2, Text: "second page", LayoutBlocks: []ocr.LayoutBlock{{Type: "table", Text: "cells"}}},
		},
	}

	if err := store.Put("doc-1", result); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("doc-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(got.Pages))
	}
	if got.Pages[0].Text != "first page" {
		t.Errorf("page 1 text = %q", got.Pages[0].Text)
	}
	if len(got.Pages[1].LayoutBlocks) != 1 || got.Pages[1].LayoutBlocks[0].Type != "table" {
		t.Errorf("layout blocks not preserved: %+v", got.Pages[1].LayoutBlocks)
	}
}

func TestPutOverwrites(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("doc-1", &ocr.Result{Pages: []ocr.Page{{PageNo: 1, Text: "old"}}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("doc-1", &ocr.Result{Pages: []ocr.Page{{PageNo: 1, Text: "new"}}}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Pages[0].Text != "new" {
		t.Errorf("second put did not overwrite: got %q", got.Pages[0].Text)
	}
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("never-stored")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("doc-1", &ocr.Result{Pages: []ocr.Page{{PageNo: 1, Text: "x"}}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("doc-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
