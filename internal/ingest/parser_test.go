package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })
	return fixed
}

func TestParsePlainTextIDsAndMetadata(t *testing.T) {
	fixed := fixedNow(t)

	batch, err := parsePlainText(words(250), "notes.txt", "kb1", nil, FileChunkSize, FileChunkOverlap)
	require.NoError(t, err)
	require.Equal(t, 3, batch.Len())

	assert.Equal(t, []string{"kb1-notes.txt-0", "kb1-notes.txt-1", "kb1-notes.txt-2"}, batch.IDs)
	for _, meta := range batch.Metadatas {
		assert.Equal(t, "notes.txt", meta["filename"])
		assert.Equal(t, 1, meta["page"])
		assert.Equal(t, fixed.Format(time.RFC3339), meta["added"])
	}
}

func TestParsePlainTextEmptyInput(t *testing.T) {
	_, err := parsePlainText("   ", "empty.txt", "kb1", nil, FileChunkSize, FileChunkOverlap)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestMergeMetadataSystemWins(t *testing.T) {
	supplied := models.Metadata{"author": "dave", "filename": "spoofed.txt", "page": 99}
	system := models.Metadata{"filename": "real.txt", "page": 1}

	merged := mergeMetadata(supplied, system)
	assert.Equal(t, "real.txt", merged["filename"])
	assert.Equal(t, 1, merged["page"])
	assert.Equal(t, "dave", merged["author"])
}

func TestSplitSections(t *testing.T) {
	text := "# Alpha\nhello\n\n## Beta Two\nworld\nmore"
	sections := splitSections(text)
	require.Len(t, sections, 2)

	assert.Equal(t, "Alpha", sections[0].heading)
	assert.Equal(t, "hello", sections[0].content)
	assert.Equal(t, "Beta Two", sections[1].heading)
	assert.Equal(t, "world\nmore", sections[1].content)
}

func TestSplitSectionsDropsPreamble(t *testing.T) {
	sections := splitSections("loose text\nmore loose\n# Heading\nbody")
	require.Len(t, sections, 1)
	assert.Equal(t, "Heading", sections[0].heading)
	assert.Equal(t, "body", sections[0].content)
}

func TestHeadingTitle(t *testing.T) {
	for _, tc := range []struct {
		line  string
		title string
		ok    bool
	}{
		{"# Hello", "Hello", true},
		{"###### Deep", "Deep", true},
		{"####### TooDeep", "", false},
		{"#NoSpace", "", false},
		{"plain line", "", false},
		{"#", "", true}, // bare marker, empty title
	} {
		title, ok := headingTitle(tc.line)
		assert.Equal(t, tc.ok, ok, "line %q", tc.line)
		assert.Equal(t, tc.title, title, "line %q", tc.line)
	}
}

func TestHeadingSlug(t *testing.T) {
	assert.Equal(t, "Getting_Started_Guide", headingSlug("Getting  Started\tGuide"))
	assert.Equal(t, "One", headingSlug(" One "))
}

func TestParseMarkdownIDsAndHeadings(t *testing.T) {
	fixedNow(t)

	text := "# Intro\nhello there\n# Usage Notes\nworld content"
	batch, err := parseMarkdown(text, "guide.md", "kb1", models.Metadata{"source": "upload"}, FileChunkSize, FileChunkOverlap)
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	assert.Equal(t, "kb1-guide.md-Intro-0-0", batch.IDs[0])
	assert.Equal(t, "kb1-guide.md-Usage_Notes-1-0", batch.IDs[1])
	assert.Equal(t, "hello there", batch.Texts[0])
	assert.Equal(t, "world content", batch.Texts[1])

	assert.Equal(t, "Intro", batch.Metadatas[0]["heading"])
	assert.Equal(t, "Usage Notes", batch.Metadatas[1]["heading"])
	assert.Equal(t, "upload", batch.Metadatas[0]["source"])
	assert.Equal(t, "guide.md", batch.Metadatas[0]["filename"])
}

func TestParseMarkdownNoHeadedContent(t *testing.T) {
	_, err := parseMarkdown("no headings at all", "flat.md", "kb1", nil, FileChunkSize, FileChunkOverlap)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestHasHeadings(t *testing.T) {
	assert.True(t, hasHeadings("intro\n## Section\nbody"))
	assert.False(t, hasHeadings("just\nplain\ntext"))
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, FormatMarkdown, ResolveFormat("readme.md"))
	assert.Equal(t, FormatMarkdown, ResolveFormat("README.MD"))
	assert.Equal(t, FormatPDF, ResolveFormat("report.pdf"))
	assert.Equal(t, FormatPlainText, ResolveFormat("notes.txt"))
	assert.Equal(t, FormatPlainText, ResolveFormat("noextension"))
}
