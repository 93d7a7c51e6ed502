package fetch

import (
	"path"
	"strings"
)

// Filter decides which files of a multi-file source are worth indexing.
type Filter struct {
	Extensions  []string
	Ignore      []string
	MaxFileSize int64
}

// Keep reports whether the file at p should be ingested. Ignore entries match as
// case-insensitive substrings of the path; a size of -1 means unknown.
func (f Filter) Keep(p string, size int64) bool {
	lower := strings.ToLower(p)
	for _, ig := range f.Ignore {
		if ig != "" && strings.Contains(lower, strings.ToLower(ig)) {
			return false
		}
	}
	if f.MaxFileSize > 0 && size > f.MaxFileSize {
		return false
	}
	if len(f.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(lower))
	for _, want := range f.Extensions {
		if ext != "" && ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Ignored applies only the ignore list.
func (f Filter) Ignored(p string) bool {
	return !Filter{Ignore: f.Ignore}.Keep(p, -1)
}
