package model

const (
	IngestStatusSuccess = "success"
	IngestStatusError   = "error"
)

type IngestResult struct {
	Status          string `json:"status"`
	ChunksIngested  int    `json:"chunks_ingested"`
	TotalCharacters int    `json:"total_characters"`
	Message         string `json:"message"`

	// Err is the classified failure behind an error status.
	Err error `json:"-"`
}

func (r IngestResult) OK() bool {
	return r.Status == IngestStatusSuccess
}

// IngestFailure builds an error result with zeroed counters.
func IngestFailure(err error) IngestResult {
	msg := "ingest failed"
	if err != nil {
		msg = err.Error()
	}
	return IngestResult{Status: IngestStatusError, Message: msg, Err: err}
}
