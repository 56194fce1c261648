package chunk

import (
	"strings"
	"unicode"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/extract"
)

// Config controls chunk sizing. Sizes are in runes so multi-byte text never
// splits mid-character.
type Config struct {
	TargetSize int
	Overlap    int
}

func DefaultConfig() Config {
	return Config{TargetSize: config.ChunkTargetSize, Overlap: config.ChunkOverlap}
}

// pageBound records where a page ends inside the joined text, so a chunk's
// offset range maps back to a page range.
type pageBound struct {
	endOffset int
	number    int
}

// Split cuts the extracted pages into overlapping chunks of roughly
// TargetSize runes, preferring paragraph and sentence boundaries over
// mid-word cuts. The output is deterministic for identical input and
// config: chunk i+1 always starts exactly Overlap runes before the end of
// chunk i (or at its end when chunk i is shorter than the overlap), so the
// original text reconstructs from the sequence.
func Split(docID string, pages []extract.Page, cfg Config) []docmodel.Chunk {
	if cfg.TargetSize <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}

	full, bounds := joinPages(pages)
	if len(full) == 0 {
		return nil
	}

	var chunks []docmodel.Chunk
	start := 0
	seq := 0
	for start < len(full) {
		end := start + cfg.TargetSize
		if end >= len(full) {
			end = len(full)
		} else {
			end = findBreak(full, start, end)
		}

		chunks = append(chunks, docmodel.Chunk{
			DocumentID: docID,
			Sequence:   seq,
			Text:       string(full[start:end]),
			PageStart:  pageAt(bounds, start),
			PageEnd:    pageAt(bounds, end-1),
		})
		seq++

		if end == len(full) {
			break
		}
		next := end - cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// joinPages concatenates page text with blank-line separators and records
// each page's end offset in runes.
func joinPages(pages []extract.Page) ([]rune, []pageBound) {
	var sb strings.Builder
	var bounds []pageBound
	runeLen := 0
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
			runeLen += 2
		}
		text := []rune(p.Text)
		sb.WriteString(p.Text)
		runeLen += len(text)
		bounds = append(bounds, pageBound{endOffset: runeLen, number: p.Number})
	}
	return []rune(sb.String()), bounds
}

func pageAt(bounds []pageBound, offset int) int {
	for _, b := range bounds {
		if offset < b.endOffset {
			return b.number
		}
	}
	if len(bounds) > 0 {
		return bounds[len(bounds)-1].number
	}
	return 1
}

// findBreak picks a cut point at or before end, searching back through a
// window of a fifth of the chunk. Paragraph breaks win over sentence ends,
// sentence ends over plain spaces; a hard cut is the last resort.
func findBreak(full []rune, start int, end int) int {
	lookback := (end - start) / 5
	low := end - lookback
	if low <= start {
		low = start + 1
	}

	// paragraph boundary
	for i := end - 1; i > low; i-- {
		if full[i] == '\n' && full[i-1] == '\n' {
			return i + 1
		}
	}
	// sentence boundary
	for i := end - 2; i >= low; i-- {
		if isSentenceEnd(full[i]) && unicode.IsSpace(full[i+1]) {
			return i + 2
		}
	}
	// word boundary
	for i := end - 1; i >= low; i-- {
		if unicode.IsSpace(full[i]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
