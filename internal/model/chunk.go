package model

// Chunk is a bounded segment of a source, the unit of embedding and retrieval.
type Chunk struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Ordinal       int     `json:"ordinal"`
	TotalInSource int     `json:"total_in_source"`
	SourceRef     string  `json:"source_ref"`
	Offset        int     `json:"offset"`
	Header        string  `json:"header,omitempty"`
	Metadata      FlatMap `json:"metadata,omitempty"`
}

// ContextualText is the text that gets embedded and stored: provenance header plus segment.
func (c Chunk) ContextualText() string {
	return c.Header + c.Text
}
