package model

// Document is raw content obtained from a source, consumed once by ingestion.
type Document struct {
	SourceRef string `json:"source_ref"`
	RawText   string `json:"raw_text"`
}
