package chunker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	id := ChunkID("repo/a.py", "print('hi')")
	require.Len(t, id, 64)
	require.Equal(t, id, ChunkID("repo/a.py", "print('hi')"))
	require.NotEqual(t, id, ChunkID("repo/b.py", "print('hi')"))
	require.NotEqual(t, id, ChunkID("repo/a.py", "print('bye')"))
	require.NotEqual(t, ChunkID("ab", "c"), ChunkID("a", "bc"))
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		heading string
		want    string
	}{
		{name: "file path", ref: "repo/a.py", want: "File: repo/a.py\nExtension: py\n"},
		{name: "with heading", ref: "docs/guide.md", heading: "Setup", want: "File: docs/guide.md\nExtension: md\nHeading: Setup\n"},
		{name: "url to file", ref: "https://example.com/raw/main.go?plain=1", want: "File: https://example.com/raw/main.go?plain=1\nExtension: go\n"},
		{name: "url without file", ref: "https://example.com/docs", want: ""},
		{name: "directory", ref: "repo/src/", want: ""},
		{name: "plain name", ref: "notes", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Header(tt.ref, tt.heading))
			require.Equal(t, tt.want != "", fileExt(tt.ref) != "")
		})
	}
}

func TestSignalLength(t *testing.T) {
	require.Equal(t, 0, SignalLength("  \n\t"))
	require.Equal(t, 5, SignalLength("a b c d e"))
	require.Equal(t, 4, SignalLength("text ```go\nfmt.Println()\n```"))
	require.Equal(t, 3, SignalLength("one\n```\nnever closed"))
	require.True(t, HasSignal("twenty characters ok!!", 20))
	require.False(t, HasSignal("nineteen characters", 20))
}
