package chunker

import (
	"reflect"
	"strings"
	"testing"

	"docstream-be/pkg/ocr"
)

func page(no int, text string) ocr.Page {
	return ocr.Page{PageNo: no, Text: text}
}

func TestSplitDeterministic(t *testing.T) {
	pages := []ocr.Page{
		page(1, strings.Repeat("alpha ", 400)),
		page(2, strings.Repeat("beta ", 400)),
		page(3, "short tail"),
	}
	cfg := Config{MaxChars: 500, Overlap: 50, MinChars: 100}

	first := Split(pages, cfg)
	second := Split(pages, cfg)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical input and config produced different spans")
	}
	if len(first) == 0 {
		t.Fatal("expected spans")
	}
}

func TestSplitNeverSpansPageBreak(t *testing.T) {
	pages := []ocr.Page{
		page(1, strings.Repeat("a", 1200)),
		page(2, strings.Repeat("b", 1200)),
	}
	spans := Split(pages, Config{MaxChars: 500, Overlap: 50, MinChars: 100})

	for _, s := range spans {
		if s.PageStart != s.PageEnd {
			t.Errorf("span %d crosses pages %d-%d despite both pages being large",
				s.Sequence, s.PageStart, s.PageEnd)
		}
		if strings.Contains(s.Text, "a") && strings.Contains(s.Text, "b") {
			t.Errorf("span %d mixes text from both pages", s.Sequence)
		}
	}
}

func TestSplitMergesShortPages(t *testing.T) {
	pages := []ocr.Page{
		page(1, "tiny"),
		page(2, "also tiny"),
		page(3, strings.Repeat("x", 500)),
	}
	spans := Split(pages, Config{MaxChars: 500, Overlap: 0, MinChars: 100})

	if len(spans) == 0 {
		t.Fatal("expected spans")
	}
	first := spans[0]
	if first.PageStart != 1 || first.PageEnd < 2 {
		t.Errorf("short pages not merged: got pages %d-%d", first.PageStart, first.PageEnd)
	}
	if !first.Merged {
		t.Error("merged span must carry the Merged flag")
	}
}

func TestSplitSequenceGlobalAndGapless(t *testing.T) {
	pages := []ocr.Page{
		page(1, strings.Repeat("a", 1200)),
		page(2, strings.Repeat("b", 900)),
	}
	spans := Split(pages, Config{MaxChars: 400, Overlap: 40, MinChars: 100})

	for i, s := range spans {
		if s.Sequence != i {
			t.Fatalf("sequence gap: span %d has Sequence %d", i, s.Sequence)
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	text := strings.Repeat("0123456789", 30) // 300 chars
	spans := Split([]ocr.Page{page(1, text)}, Config{MaxChars: 100, Overlap: 20, MinChars: 10})

	if len(spans) < 2 {
		t.Fatalf("expected multiple spans, got %d", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		prev := []rune(spans[i-1].Text)
		tail := string(prev[len(prev)-20:])
		if !strings.HasPrefix(spans[i].Text, tail) {
			t.Errorf("span %d does not start with the previous span's 20-char tail", i)
		}
	}
}

func TestSplitCoversAllText(t *testing.T) {
	text := strings.Repeat("z", 950)
	spans := Split([]ocr.Page{page(1, text)}, Config{MaxChars: 300, Overlap: 0, MinChars: 10})

	var rebuilt strings.Builder
	for _, s := range spans {
		rebuilt.WriteString(s.Text)
	}
	if rebuilt.String() != text {
		t.Error("spans with zero overlap must concatenate back to the page text")
	}
}

func TestChunkIdDeterministic(t *testing.T) {
	a := ChunkId("doc123", 1, 1, 0, "hello world")
	b := ChunkId("doc123", 1, 1, 0, "hello world")
	if a != b {
		t.Fatalf("ChunkId not stable: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("ChunkId length = %d, want 32", len(a))
	}

	if ChunkId("doc123", 1, 1, 1, "hello world") == a {
		t.Error("different sequence must change the id")
	}
	if ChunkId("doc123", 1, 1, 0, "other text") == a {
		t.Error("different text must change the id")
	}
	if ChunkId("doc999", 1, 1, 0, "hello world") == a {
		t.Error("different doc must change the id")
	}
}
