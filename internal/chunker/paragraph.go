package chunker

import (
	"strings"
	"unicode/utf8"
)

type paragraph struct {
	text   string
	offset int
}

func hasParagraphBreak(block string) bool {
	return len(splitParagraphs(block)) > 1
}

// splitParagraphs cuts text on blank lines. A fenced code block stays in one paragraph even
// when it contains blank lines.
func splitParagraphs(text string) []paragraph {
	var (
		out     []paragraph
		lines   []string
		start   = -1
		offset  int
		inFence bool
	)
	flush := func() {
		if len(lines) > 0 {
			out = append(out, paragraph{text: strings.Join(lines, "\n"), offset: start})
		}
		lines = nil
		start = -1
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if trimmed == "" && !inFence {
			flush()
		} else {
			if start < 0 {
				start = offset
			}
			lines = append(lines, line)
		}
		offset += utf8.RuneCountInString(line) + 1
	}
	flush()
	return out
}

// paragraphSegments packs paragraphs into chunks of at most chunk-size runes. Each new chunk
// is seeded with the tail of the previous one.
func (s *Splitter) paragraphSegments(text string, base int) []segment {
	const sep = "\n\n"
	size, overlap := s.opts.size, s.opts.overlap

	var (
		out []segment
		buf []rune
		pos []int // source offset of every rune in buf
	)
	emit := func() {
		if len(buf) > 0 {
			out = append(out, segment{text: string(buf), offset: pos[0]})
		}
	}
	appendRunes := func(rs []rune, at int) {
		for i, r := range rs {
			buf = append(buf, r)
			pos = append(pos, at+i)
		}
	}

	for _, p := range splitParagraphs(text) {
		pr := []rune(p.text)
		at := base + p.offset
		if len(pr) > size {
			emit()
			buf, pos = nil, nil
			out = append(out, s.windowSegments(pr, at)...)
			continue
		}
		if len(buf) == 0 {
			appendRunes(pr, at)
			continue
		}
		if len(buf)+len(sep)+len(pr) <= size {
			appendRunes([]rune(sep), pos[len(pos)-1]+1)
			appendRunes(pr, at)
			continue
		}
		emit()
		keep := overlap
		if room := size - len(pr) - len(sep); keep > room {
			keep = room
		}
		if keep > len(buf) {
			keep = len(buf)
		}
		if keep <= 0 {
			buf, pos = nil, nil
			appendRunes(pr, at)
			continue
		}
		seed := append([]rune(nil), buf[len(buf)-keep:]...)
		seedPos := append([]int(nil), pos[len(pos)-keep:]...)
		buf, pos = seed, seedPos
		appendRunes([]rune(sep), pos[len(pos)-1]+1)
		appendRunes(pr, at)
	}
	emit()
	return out
}
