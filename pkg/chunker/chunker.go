package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"docstream-be/pkg/ocr"
)

// Config is the chunking policy. The same OCR output under the same Config
// always produces the same spans, which is what keeps chunk ids stable across
// re-chunking.
type Config struct {
	// MaxChars is the character budget per chunk.
	MaxChars int
	// Overlap is the count of trailing characters repeated into the next
	// chunk to preserve context at boundaries.
	Overlap int
	// MinChars is the minimum viable chunk size. A page shorter than this is
	// merged with its following page(s) rather than emitted alone.
	MinChars int
}

func (c Config) withDefaults() Config {
	if c.MaxChars <= 0 {
		c.MaxChars = 1500
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxChars {
		c.Overlap = 0
	}
	if c.MinChars <= 0 {
		c.MinChars = 200
	}
	return c
}

// Span is one chunk candidate: a retrieval-sized slice of the document text
// with the page range it was cut from.
type Span struct {
	PageStart int
	PageEnd   int
	Sequence  int
	Text      string
	// Merged is set when the span covers more than one page because the pages
	// were individually below the minimum viable chunk size.
	Merged bool
}

// Split converts OCR pages into an ordered sequence of chunk candidates.
// Chunks never span a page break, except that consecutive pages shorter than
// MinChars are merged into one span first. Sequence numbers are global and
// 0-based.
func Split(pages []ocr.Page, cfg Config) []Span {
	cfg = cfg.withDefaults()

	groups := groupPages(pages, cfg.MinChars)

	var spans []Span
	seq := 0
	for _, g := range groups {
		for _, text := range splitText(g.text, cfg.MaxChars, cfg.Overlap) {
			spans = append(spans, Span{
				PageStart: g.pageStart,
				PageEnd:   g.pageEnd,
				Sequence:  seq,
				Text:      text,
				Merged:    g.pageStart != g.pageEnd,
			})
			seq++
		}
	}
	return spans
}

type pageGroup struct {
	pageStart int
	pageEnd   int
	text      string
}

// groupPages walks pages in order, merging a run of consecutive pages while
// the accumulated text stays under minChars. A page at or above minChars
// always stands on its own unless it is absorbing preceding short pages.
func groupPages(pages []ocr.Page, minChars int) []pageGroup {
	var groups []pageGroup
	i := 0
	for i < len(pages) {
		start := pages[i]
		texts := []string{start.Text}
		end := start.PageNo
		total := len([]rune(start.Text))
		i++
		for total < minChars && i < len(pages) {
			texts = append(texts, pages[i].Text)
			total += len([]rune(pages[i].Text))
			end = pages[i].PageNo
			i++
		}
		groups = append(groups, pageGroup{
			pageStart: start.PageNo,
			pageEnd:   end,
			text:      strings.Join(texts, "\n"),
		})
	}
	return groups
}

// splitText slices text into chunks of approximately chunkSize characters
// with a trailing overlap. Strict rune slicing keeps it deterministic.
func splitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// ChunkId derives the deterministic chunk identifier. Recomputing it from
// identical inputs reproduces the same id, so re-chunking an unchanged
// document overwrites records instead of duplicating them.
func ChunkId(docId string, pageStart, pageEnd, sequence int, text string) string {
	textHash := sha256.Sum256([]byte(text))
	input := fmt.Sprintf("%s|%d|%d|%d|%s",
		docId, pageStart, pageEnd, sequence, hex.EncodeToString(textHash[:]))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:32]
}
