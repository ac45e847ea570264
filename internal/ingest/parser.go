package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// now is swapped out in tests that assert on the "added" timestamp.
var now = time.Now

// mergeMetadata assembles a chunk's metadata from caller-supplied custom
// fields and the system fields. System fields take precedence, so a caller
// cannot shadow filename, page, added or heading.
func mergeMetadata(supplied, system models.Metadata) models.Metadata {
	out := make(models.Metadata, len(supplied)+len(system))
	for k, v := range supplied {
		out[k] = v
	}
	for k, v := range system {
		out[k] = v
	}
	return out
}

// baseMetadata holds the fields every chunk carries regardless of format.
func baseMetadata(filename string) models.Metadata {
	return models.Metadata{
		"filename": filename,
		"page":     1,
		"added":    now().UTC().Format(time.RFC3339),
	}
}

// parsePlainText decodes the bytes as UTF-8 text and chunks it with the
// given profile. Chunk ids are {collection}-{filename}-{i}.
func parsePlainText(text, filename, collection string, supplied models.Metadata, size, overlap int) (*models.ChunkBatch, error) {
	chunks := Chunk(text, size, overlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %q produced no chunks", core.ErrParse, filename)
	}

	batch := &models.ChunkBatch{
		IDs:       make([]string, 0, len(chunks)),
		Texts:     make([]string, 0, len(chunks)),
		Metadatas: make([]models.Metadata, 0, len(chunks)),
	}
	for i, c := range chunks {
		batch.IDs = append(batch.IDs, fmt.Sprintf("%s-%s-%d", collection, filename, i))
		batch.Texts = append(batch.Texts, c)
		batch.Metadatas = append(batch.Metadatas, mergeMetadata(supplied, baseMetadata(filename)))
	}
	return batch, nil
}

// section is one heading-delimited region of a markdown document.
type section struct {
	heading string
	content string
}

// splitSections scans for heading lines (#..###### at line start) in a
// single left-to-right pass. Each heading opens a section running to the
// next heading or end of document. Content before the first heading is
// dropped.
func splitSections(text string) []section {
	var (
		sections []section
		current  *section
		body     []string
	)

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.content = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if title, ok := headingTitle(line); ok {
			closeCurrent()
			current = &section{heading: title}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	closeCurrent()

	return sections
}

// headingTitle reports whether the line is a markdown heading (one to six
// leading #) and returns its trimmed title.
func headingTitle(line string) (string, bool) {
	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	if hashes == 0 || hashes > 6 {
		return "", false
	}
	rest := line[hashes:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// headingSlug replaces whitespace with underscores for use inside chunk ids.
func headingSlug(heading string) string {
	return strings.Join(strings.Fields(heading), "_")
}

// parseMarkdown splits the document into headed sections, chunks each
// section independently, and assigns ids
// {collection}-{filename}-{slug}-{sectionIdx}-{chunkIdx}.
func parseMarkdown(text, filename, collection string, supplied models.Metadata, size, overlap int) (*models.ChunkBatch, error) {
	sections := splitSections(text)

	batch := &models.ChunkBatch{}
	for si, sec := range sections {
		slug := headingSlug(sec.heading)
		for ci, c := range Chunk(sec.content, size, overlap) {
			meta := baseMetadata(filename)
			meta["heading"] = sec.heading
			batch.IDs = append(batch.IDs, fmt.Sprintf("%s-%s-%s-%d-%d", collection, filename, slug, si, ci))
			batch.Texts = append(batch.Texts, c)
			batch.Metadatas = append(batch.Metadatas, mergeMetadata(supplied, meta))
		}
	}
	if batch.Len() == 0 {
		return nil, fmt.Errorf("%w: %q has no headed content", core.ErrParse, filename)
	}
	return batch, nil
}

// hasHeadings reports whether any line of text is a markdown heading.
func hasHeadings(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if _, ok := headingTitle(line); ok {
			return true
		}
	}
	return false
}
