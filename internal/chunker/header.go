package chunker

import (
	"net/url"
	"path"
	"strings"
)

// refPath drops scheme, host and query from URL-shaped refs.
func refPath(sourceRef string) string {
	if u, err := url.Parse(sourceRef); err == nil && u.Scheme != "" {
		return u.Path
	}
	return sourceRef
}

func fileExt(sourceRef string) string {
	p := refPath(sourceRef)
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return strings.TrimPrefix(path.Ext(path.Base(p)), ".")
}

// Header is the provenance prefix stored in front of a chunk's text.
func Header(sourceRef, heading string) string {
	ext := fileExt(sourceRef)
	if ext == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("File: ")
	sb.WriteString(sourceRef)
	sb.WriteString("\nExtension: ")
	sb.WriteString(ext)
	sb.WriteString("\n")
	if heading != "" {
		sb.WriteString("Heading: ")
		sb.WriteString(heading)
		sb.WriteString("\n")
	}
	return sb.String()
}
