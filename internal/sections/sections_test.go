package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# Intro\nHello\n## Details\nMore text"

func TestExtract(t *testing.T) {
	got := Extract(sample)

	require.Len(t, got, 2)
	assert.Equal(t, Section{
		Level: 1, Title: "Intro", Heading: "# Intro\n", Content: "Hello\n", Start: 0, End: 14,
	}, got[0])
	assert.Equal(t, Section{
		Level: 2, Title: "Details", Heading: "## Details\n", Content: "More text", Start: 14, End: 34,
	}, got[1])
}

func TestExtractFlatPolicy(t *testing.T) {
	doc := "# A\na1\n## B\nb1\n# C\nc1\n"
	got := Extract(doc)

	require.Len(t, got, 3)
	assert.Equal(t, "a1\n", got[0].Content, "a subheading closes its parent's content")
	assert.Equal(t, "b1\n", got[1].Content)
	assert.Equal(t, "c1\n", got[2].Content)
}

func TestExtractNotHeadings(t *testing.T) {
	for _, doc := range []string{
		"",
		"plain text\nmore",
		"#hashtag",
		"####### seven",
		"  # indented",
		"#",
	} {
		t.Run(doc, func(t *testing.T) {
			assert.Empty(t, Extract(doc))
		})
	}
}

func TestExtractTitleTrimmedAndCRLF(t *testing.T) {
	got := Extract("#   Spaced Out   \r\nbody\r\n")

	require.Len(t, got, 1)
	assert.Equal(t, "Spaced Out", got[0].Title)
	assert.Equal(t, "body\r\n", got[0].Content)
}

func TestParseRoundTrip(t *testing.T) {
	docs := []string{
		"",
		"no headings at all\n",
		sample,
		"preamble line\n\n# One\n\ntext\n### Three\n## Two\n",
		"# Only heading",
		"# A\r\nwindows\r\n## B\r\n",
		"intro 😀\n# Ünïcode\nbody 中文\n",
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			assert.Equal(t, doc, Parse(doc).String())
		})
	}
}

func TestParseOffsetsAreMonotonic(t *testing.T) {
	doc := "pre 😀\n# A\nx\n## B\n# C\ny"
	out := Parse(doc)

	require.Len(t, out.Sections, 3)
	assert.Equal(t, "pre 😀\n", out.Preamble)
	assert.Equal(t, 7, out.Sections[0].Start, "offsets count UTF-16 units")
	prev := 0
	for _, s := range out.Sections {
		assert.GreaterOrEqual(t, s.Start, prev)
		assert.GreaterOrEqual(t, s.End, s.Start)
		prev = s.End
	}
	assert.Equal(t, 23, prev)
}

func TestFindByTitle(t *testing.T) {
	secs := Extract(sample)

	got, ok := FindByTitle(secs, "  intro ")
	require.True(t, ok)
	assert.Equal(t, "Hello\n", got.Content)

	_, ok = FindByTitle(secs, "Intr")
	assert.False(t, ok)
}

func TestFindByLevel(t *testing.T) {
	secs := Extract("# A\n## B\n# C\n")

	got := FindByLevel(secs, 1)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
	assert.Empty(t, FindByLevel(secs, 4))
}
