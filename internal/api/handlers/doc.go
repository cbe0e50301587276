package handlers

// StatusResponse acknowledges operations that return no other data, such as
// the health probes and picker cancellation.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
