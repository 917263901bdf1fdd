package pipeline

// Status is the processing state of a document. Progression is forward-only:
// RECEIVED -> OCR_DONE -> CHUNKED -> EMBEDDED -> INDEXED, with ERROR reachable
// from any non-terminal state. A later re-ingestion may restart the sequence
// for the same doc_id; every stage must tolerate events for documents already
// past it.
type Status string

const (
	StatusError    Status = "ERROR"
	StatusReceived Status = "RECEIVED"
	StatusOcrDone  Status = "OCR_DONE"
	StatusChunked  Status = "CHUNKED"
	StatusEmbedded Status = "EMBEDDED"
	StatusIndexed  Status = "INDEXED"
)

// Stage names, used in error events and metrics labels.
const (
	StageIngest   = "ingest"
	StageOcr      = "ocr"
	StageChunker  = "chunker"
	StageEmbedder = "embedder"
	StageIndexer  = "indexer"
)

var statusRank = map[Status]int{
	StatusError:    0,
	StatusReceived: 1,
	StatusOcrDone:  2,
	StatusChunked:  3,
	StatusEmbedded: 4,
	StatusIndexed:  5,
}

// Rank returns the position of a status in the forward progression.
// Unknown statuses rank below everything so they never short-circuit a stage.
func Rank(s Status) int {
	return statusRank[s]
}

// IsValid reports whether s is one of the known pipeline statuses.
func IsValid(s Status) bool {
	_, ok := statusRank[s]
	return ok
}

// AtOrPast reports whether the stored status already covers the given target
// stage result. Workers use this for their idempotency short-circuit: when the
// document is at or past the status a stage would write, the stage skips
// recomputation and only re-emits downstream.
func AtOrPast(current, target Status) bool {
	if current == StatusError {
		return false
	}
	return Rank(current) >= Rank(target)
}

// CanAdvance reports whether a transition from one status to another is a
// legal forward step. ERROR is reachable from any non-terminal state, and
// RECEIVED is always reachable because a re-ingestion restarts the sequence.
func CanAdvance(from, to Status) bool {
	if !IsValid(to) {
		return false
	}
	if to == StatusError {
		return from != StatusIndexed && from != StatusError
	}
	if to == StatusReceived {
		return true
	}
	return Rank(to) == Rank(from)+1
}

// NextStatus maps a stage to the status it writes on success.
func NextStatus(stage string) Status {
	switch stage {
	case StageIngest:
		return StatusReceived
	case StageOcr:
		return StatusOcrDone
	case StageChunker:
		return StatusChunked
	case StageEmbedder:
		return StatusEmbedded
	case StageIndexer:
		return StatusIndexed
	}
	return StatusError
}
