package chunker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/logger"

	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

func TestNewSplitterRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "zero size", opts: []Option{WithChunkSize(0)}},
		{name: "negative overlap", opts: []Option{WithOverlap(-1)}},
		{name: "overlap equals size", opts: []Option{WithChunkSize(50), WithOverlap(50)}},
		{name: "overlap exceeds size", opts: []Option{WithChunkSize(50), WithOverlap(80)}},
		{name: "unknown mode", opts: []Option{WithMode("sentences")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.opts...)
			require.ErrorIs(t, err, appErr.ErrConfig)
		})
	}
}

func TestSplitWindowBoundaries(t *testing.T) {
	s, err := NewSplitter(WithMode(ModeWindow))
	require.NoError(t, err)

	block := strings.Repeat("abcdefghij", 120)
	chunks, err := s.Split(context.Background(), block, "notes")
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	wantOffsets := []int{0, 450, 900}
	wantLens := []int{500, 500, 300}
	runes := []rune(block)
	for i, c := range chunks {
		require.Equal(t, wantOffsets[i], c.Offset)
		require.Equal(t, wantLens[i], utf8.RuneCountInString(c.Text))
		require.Equal(t, string(runes[c.Offset:c.Offset+wantLens[i]]), c.Text)
		require.Equal(t, i, c.Ordinal)
		require.Equal(t, 3, c.TotalInSource)
		require.Empty(t, c.Header)
	}
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	s, err := NewSplitter(WithMode(ModeWindow), WithChunkSize(10), WithOverlap(2), WithMinSignal(1))
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), strings.Repeat("é", 25), "x")
	require.NoError(t, err)
	for _, c := range chunks {
		require.LessOrEqual(t, utf8.RuneCountInString(c.Text), 10)
	}
	require.Equal(t, []int{0, 8, 16}, []int{chunks[0].Offset, chunks[1].Offset, chunks[2].Offset})
}

func TestSplitShortBlockIsOneChunk(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	block := "def handler(event):\n\n    return process(event)\n"
	chunks, err := s.Split(context.Background(), block, "repo/a.py")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, block, chunks[0].Text)
	require.Equal(t, 1, chunks[0].TotalInSource)
	require.Equal(t, "File: repo/a.py\nExtension: py\n", chunks[0].Header)
	require.Equal(t, chunks[0].Header+block, chunks[0].ContextualText())
}

func TestSplitRejectsLowSignal(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	tests := []struct {
		name  string
		block string
	}{
		{name: "empty", block: ""},
		{name: "whitespace", block: "   \n\n\t  "},
		{name: "short text", block: "ok then"},
		{name: "only code", block: "```go\nfunc main() { fmt.Println(\"hello world\") }\n```\n  x"},
		{name: "unclosed fence", block: "tiny\n```\nall of this is code and does not count at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := s.Split(context.Background(), tt.block, "repo/a.py")
			require.NoError(t, err)
			require.Empty(t, chunks)
		})
	}
}

func TestSplitOrdinalsSkipRejectedSegments(t *testing.T) {
	s, err := NewSplitter(WithMode(ModeWindow), WithChunkSize(30), WithOverlap(0))
	require.NoError(t, err)

	block := strings.Repeat("a", 30) + strings.Repeat(" ", 30) + strings.Repeat("b", 30)
	chunks, err := s.Split(context.Background(), block, "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.Equal(t, 0, chunks[0].Ordinal)
	require.Equal(t, 1, chunks[1].Ordinal)
	require.Equal(t, 2, chunks[1].TotalInSource)
	require.Equal(t, strings.Repeat("b", 30), chunks[1].Text)
	require.Equal(t, 60, chunks[1].Offset)
}

func TestSplitLogsDecisionsAtDebug(t *testing.T) {
	file := filepath.Join(t.TempDir(), "split.log")
	logger.Init(file, "debug", 1, 1<<20, 1, false)
	t.Cleanup(func() { logger.Init("", "info", 0, 0, 0, true) })

	s, err := NewSplitter(WithMode(ModeWindow), WithChunkSize(30), WithOverlap(0))
	require.NoError(t, err)
	block := strings.Repeat("a", 30) + strings.Repeat(" ", 30)
	chunks, err := s.Split(context.Background(), block, "notes/log.txt")
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	out := string(raw)
	require.Contains(t, out, "block split")
	require.Contains(t, out, "low signal segment dropped")
	require.Contains(t, out, "notes/log.txt")
	require.Contains(t, out, "window")
}

func TestSplitParagraphOverlap(t *testing.T) {
	s, err := NewSplitter(WithMode(ModeParagraph), WithChunkSize(100), WithOverlap(10))
	require.NoError(t, err)

	p1 := strings.Repeat("a", 50) + strings.Repeat("b", 10)
	p2 := strings.Repeat("c", 60)
	p3 := strings.Repeat("d", 60)
	block := p1 + "\n\n" + p2 + "\n\n" + p3

	chunks, err := s.Split(context.Background(), block, "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	require.Equal(t, p1, chunks[0].Text)
	require.Equal(t, strings.Repeat("b", 10)+"\n\n"+p2, chunks[1].Text)
	require.Equal(t, 50, chunks[1].Offset)
	require.Equal(t, strings.Repeat("c", 10)+"\n\n"+p3, chunks[2].Text)
	for _, c := range chunks {
		require.LessOrEqual(t, utf8.RuneCountInString(c.Text), 100)
	}
}

func TestSplitParagraphLongParagraphFallsBackToWindow(t *testing.T) {
	s, err := NewSplitter(WithMode(ModeParagraph), WithChunkSize(50), WithOverlap(5))
	require.NoError(t, err)

	long := strings.Repeat("x", 120)
	block := "intro paragraph that is long enough\n\n" + long
	chunks, err := s.Split(context.Background(), block, "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	require.Equal(t, "intro paragraph that is long enough", chunks[0].Text)
	for _, c := range chunks[1:] {
		require.LessOrEqual(t, utf8.RuneCountInString(c.Text), 50)
	}
	require.Equal(t, 37, chunks[1].Offset)
}

func TestSplitParagraphsKeepsFenceTogether(t *testing.T) {
	text := "intro\n\n```\nline one\n\nline two\n```\n\noutro"
	paras := splitParagraphs(text)
	require.Len(t, paras, 3)
	require.Equal(t, "```\nline one\n\nline two\n```", paras[1].text)
	require.Equal(t, 7, paras[1].offset)
	require.Equal(t, "outro", paras[2].text)
}

func TestSplitMarkdownSections(t *testing.T) {
	s, err := NewSplitter(WithChunkSize(80), WithOverlap(10))
	require.NoError(t, err)

	block := "# Intro\n\nIntro paragraph with enough words to pass signal.\n\n" +
		"## Usage\n\nUsage paragraph explaining how to run it.\n\n```\n# not a heading\n```\n"
	chunks, err := s.Split(context.Background(), block, "docs/guide.md")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	require.Equal(t, "Intro paragraph with enough words to pass signal.", chunks[0].Text)
	require.Equal(t, "File: docs/guide.md\nExtension: md\nHeading: Intro\n", chunks[0].Header)
	require.Equal(t, "Usage paragraph explaining how to run it.\n\n```\n# not a heading\n```", chunks[1].Text)
	require.Contains(t, chunks[1].Header, "Heading: Usage\n")
	require.Equal(t, chunks[1].Text, string([]rune(block)[chunks[1].Offset:chunks[1].Offset+utf8.RuneCountInString(chunks[1].Text)]))
}

func TestSplitAutoMode(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	require.Equal(t, ModeMarkdown, s.resolveMode("x", "README.md"))
	require.Equal(t, ModeMarkdown, s.resolveMode("x", "https://example.com/docs/intro.markdown"))
	require.Equal(t, ModeParagraph, s.resolveMode("a\n\nb", "repo/a.py"))
	require.Equal(t, ModeWindow, s.resolveMode("one line", "repo/a.py"))
}

func TestSplitIsDeterministic(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	block := strings.Repeat("deterministic content for hashing. ", 40)
	a, err := s.Split(context.Background(), block, "repo/a.py")
	require.NoError(t, err)
	b, err := s.Split(context.Background(), block, "repo/a.py")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
