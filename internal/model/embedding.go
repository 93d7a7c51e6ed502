package model

// IndexedChunk is a chunk together with its embedding, as handed to the vector store.
type IndexedChunk struct {
	Chunk  Chunk     `json:"chunk"`
	Vector []float32 `json:"vector"`
}

// Candidate is one recall hit returned by a vector store query.
type Candidate struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Metadata FlatMap `json:"metadata"`
	Distance float64 `json:"distance"`
	Rank     int     `json:"rank"`
}
