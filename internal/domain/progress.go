package domain

// Progress is a single progress record pushed by the host while a task runs.
// It is stored verbatim as the latest snapshot; nothing here is interpreted
// by the orchestrator.
type Progress struct {
	Phase         string  `json:"phase"`
	TotalBytes    int64   `json:"total_bytes"`
	FinishedBytes int64   `json:"finished_bytes"`
	TotalCount    int     `json:"total_count"`
	FinishedCount int     `json:"finished_count"`
	Current       string  `json:"current,omitempty"`
	Speed         float64 `json:"speed"`
	ETA           float64 `json:"eta"`
}
