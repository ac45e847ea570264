package ingest

import "strings"

// Default chunking profile for file ingestion.
const (
	FileChunkSize    = 1000
	FileChunkOverlap = 200
)

// Smaller profile for inline plain-text ingestion.
const (
	TextChunkSize    = 300
	TextChunkOverlap = 75
)

// separators, in preference order. The empty string means a hard character
// cut and must stay last.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk splits text into ordered windows of at most size characters, with
// overlap characters repeated between consecutive windows. Paragraph,
// sentence and word boundaries are preferred; a hard cut happens only when
// no boundary exists inside the window. The result is deterministic for a
// given input and parameters. Empty input yields nil.
func Chunk(text string, size, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		size = FileChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	return mergeFragments(splitFragments(text, size, separators), size, overlap)
}

// splitFragments recursively breaks text into fragments no longer than size,
// trying each separator in order and descending to the next one for pieces
// that are still too long.
func splitFragments(text string, size int, seps []string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	sep := ""
	rest := []string{}
	for i, s := range seps {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	if sep == "" {
		// No boundary available inside the text: hard cut.
		var out []string
		for start := 0; start < len(text); start += size {
			end := start + size
			if end > len(text) {
				end = len(text)
			}
			out = append(out, text[start:end])
		}
		return out
	}

	// SplitAfter keeps the separator attached to the preceding piece so
	// joining fragments reproduces the original text.
	var out []string
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) > size {
			out = append(out, splitFragments(piece, size, rest)...)
		} else {
			out = append(out, piece)
		}
	}
	return out
}

// mergeFragments packs fragments into chunks of at most size characters,
// carrying roughly overlap characters from the tail of one chunk into the
// start of the next.
func mergeFragments(frags []string, size, overlap int) []string {
	var (
		chunks []string
		window []string
		winLen int
		fresh  int // fragments added since the last emit
	)

	emit := func() {
		if fresh == 0 {
			return
		}
		c := strings.TrimSpace(strings.Join(window, ""))
		if c != "" {
			chunks = append(chunks, c)
		}
	}

	for _, f := range frags {
		if winLen+len(f) > size && winLen > 0 {
			emit()
			fresh = 0
			// Shrink the window down to the overlap tail, and further if the
			// incoming fragment still does not fit.
			for len(window) > 0 && (winLen > overlap || winLen+len(f) > size) {
				winLen -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, f)
		winLen += len(f)
		fresh++
	}
	emit()

	return chunks
}
