package chunker

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type section struct {
	heading string
	start   int // byte offsets into the source
	end     int
}

// markdownSegments opens a new section at every level 1/2 heading and packs each section's
// body in paragraph mode. Headings inside code blocks are not seen by the parser.
func (s *Splitter) markdownSegments(markdown string) []segment {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var sections []section
	cur := section{start: 0}
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		h, ok := node.(*ast.Heading)
		if !ok || (h.Level != 1 && h.Level != 2) || h.Lines().Len() == 0 {
			continue
		}
		first := h.Lines().At(0)
		last := h.Lines().At(h.Lines().Len() - 1)
		cur.end = lineStart(source, first.Start)
		sections = append(sections, cur)
		cur = section{
			heading: strings.TrimSpace(string(h.Text(source))),
			start:   bodyStart(source, last.Stop),
		}
	}
	cur.end = len(source)
	sections = append(sections, cur)

	var out []segment
	for _, sec := range sections {
		if sec.start >= sec.end {
			continue
		}
		base := utf8.RuneCount(source[:sec.start])
		for _, seg := range s.paragraphSegments(string(source[sec.start:sec.end]), base) {
			seg.heading = sec.heading
			out = append(out, seg)
		}
	}
	return out
}

func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

// bodyStart skips the rest of the heading line and a setext underline if one follows.
func bodyStart(source []byte, pos int) int {
	next := func(p int) int {
		if p >= len(source) {
			return len(source)
		}
		idx := bytes.IndexByte(source[p:], '\n')
		if idx < 0 {
			return len(source)
		}
		return p + idx + 1
	}
	start := next(pos)
	end := next(start)
	underline := strings.TrimSpace(string(source[start:end]))
	if underline != "" && (strings.Trim(underline, "=") == "" || strings.Trim(underline, "-") == "") {
		return end
	}
	return start
}
