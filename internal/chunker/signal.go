package chunker

import (
	"regexp"
	"unicode"
)

// an unclosed fence runs to the end of the text
var fencedBlock = regexp.MustCompile("(?s)```.*?(?:```|\\z)")

// SignalLength counts the characters left after dropping fenced code blocks and whitespace.
func SignalLength(text string) int {
	n := 0
	for _, r := range fencedBlock.ReplaceAllString(text, "") {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func HasSignal(text string, minSignal int) bool {
	return SignalLength(text) >= minSignal
}
