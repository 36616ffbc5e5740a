package constants

// DocumentStatus is the canonical lifecycle status for rows in document.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusReceived   DocumentStatus = "received"   // row created, nothing processed yet
	StatusExtracting DocumentStatus = "extracting" // pages + embeddings persisted, type known
	StatusProcessed  DocumentStatus = "processed"  // facts + obligations done (possibly degraded)
)

var statusRank = map[DocumentStatus]int{
	StatusReceived:   0,
	StatusExtracting: 1,
	StatusProcessed:  2,
}

// CanTransition reports whether moving from -> to is a forward transition.
// The lifecycle is strictly monotonic; a document never regresses.
func CanTransition(from, to DocumentStatus) bool {
	a, okA := statusRank[from]
	b, okB := statusRank[to]
	return okA && okB && b > a
}
