package types

// OverlaySnapshot is the payload pushed to display shells for drawing the
// skeleton overlay: every candidate from the latest body tick plus the id
// currently selected for reporting (ActiveID is meaningless when Active is
// false).
type OverlaySnapshot struct {
	Type     string          `json:"type"`
	Seq      uint64          `json:"seq"`
	Bodies   []CandidateBody `json:"bodies"`
	Active   bool            `json:"active"`
	ActiveID int64           `json:"active_id"`
}
