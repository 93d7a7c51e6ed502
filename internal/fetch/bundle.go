package fetch

import (
	"strings"

	"github.com/xxxsen/ghostkube/internal/model"
)

var bundleMarkers = []string{"## File Path: ", "## File: "}

// SplitBundle splits a markdown dump made of "## File: <path>" (or "## File Path: <path>")
// sections into one document per file. Text before the first marker is dropped. It returns
// false when body has no marker at all.
func SplitBundle(body string, filter Filter) ([]model.Document, bool) {
	lines := strings.SplitAfter(body, "\n")
	var (
		docs    []model.Document
		found   bool
		current string
		sb      strings.Builder
	)
	flush := func() {
		if current == "" {
			return
		}
		text := strings.TrimSpace(sb.String())
		if text != "" && !filter.Ignored(current) {
			docs = append(docs, model.Document{SourceRef: current, RawText: text})
		}
	}
	for _, line := range lines {
		if name, ok := markerPath(line); ok {
			flush()
			found = true
			current = name
			sb.Reset()
			continue
		}
		if current != "" {
			sb.WriteString(line)
		}
	}
	flush()
	return docs, found
}

func markerPath(line string) (string, bool) {
	for _, m := range bundleMarkers {
		if strings.HasPrefix(line, m) {
			name := strings.TrimSpace(strings.TrimPrefix(line, m))
			return name, name != ""
		}
	}
	return "", false
}
