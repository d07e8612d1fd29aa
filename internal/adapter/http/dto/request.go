package dto

// SetHandledRequest flips the handled flag on a batch of movements.
type SetHandledRequest struct {
	IDs     []string `json:"ids"`
	Handled bool     `json:"handled"`
}

// SetNoteRequest attaches a note to a single movement.
type SetNoteRequest struct {
	Note string `json:"note"`
}

// RangeQuery holds the inclusive date window shared by list and
// reconcile endpoints.
type RangeQuery struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
