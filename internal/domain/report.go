package domain

// ReportRow is one group of an aggregate report, keyed by column name.
type ReportRow map[string]any

// StatusCounts holds ticket totals for the canonical statuses.
type StatusCounts struct {
	OpenCount    int64 `json:"OpenCount"`
	ClosedCount  int64 `json:"ClosedCount"`
	PendingCount int64 `json:"PendingCount"`
}
