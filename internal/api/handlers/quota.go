package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/unsplash-picker/internal/unsplash"
)

// QuotaHandler provides the Unsplash API quota status endpoint.
type QuotaHandler struct {
	rl *unsplash.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *unsplash.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		HourlyLimit int64     `json:"hourly_limit" example:"50"                   doc:"Configured hourly API call limit"`
		HourlyUsed  int64     `json:"hourly_used"  example:"12"                   doc:"API calls used in the current window"`
		Remaining   int64     `json:"remaining"    example:"38"                   doc:"API calls remaining in the current window"`
		ResetAt     time.Time `json:"reset_at"     example:"2026-06-16T14:30:00Z" doc:"When the current window expires"`
	}
}

// GetQuota returns the current Unsplash API quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.HourlyLimit = h.rl.Limit()
	resp.Body.HourlyUsed = h.rl.Count()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = h.rl.ResetAt()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get Unsplash API quota status",
		Description: "Returns the API calls used in the current hourly window, the remaining quota, and the window reset time.",
		Tags:        []string{"unsplash"},
	}, h.GetQuota)
}
