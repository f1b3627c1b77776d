package dto

import (
	"time"

	"github.com/cafecrawl/backend/internal/domain/review"
)

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	}
}

// NewValidationErrorResponse creates an error envelope carrying field details
func NewValidationErrorResponse(code, message, requestID string, details []ValidationDetail) ErrorResponse {
	resp := NewErrorResponse(code, message, requestID)
	resp.Details = details
	return resp
}

// OKResponse acknowledges a mutation without a payload
type OKResponse struct {
	OK bool `json:"ok"`
}

// ReviewResponse is the wire form of a review
type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CafeID    string    `json:"cafe_id"`
	Rating    float64   `json:"rating"`
	Blurb     *string   `json:"blurb,omitempty"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReviewResponse converts a domain review
func NewReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID,
		CafeID:    r.CafeID,
		Rating:    r.Rating.Float64(),
		Blurb:     r.Blurb,
		PhotoURL:  r.PhotoURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ReviewMutationResponse reports the stored review and whether the
// submission created it or revised an existing one. Exactly one of Created
// and Updated is set.
type ReviewMutationResponse struct {
	Data    ReviewResponse `json:"data"`
	Created bool           `json:"created,omitempty"`
	Updated bool           `json:"updated,omitempty"`
}

// NewReviewMutationResponse builds the response of a review submission
func NewReviewMutationResponse(r *review.Review, created bool) ReviewMutationResponse {
	return ReviewMutationResponse{
		Data:    NewReviewResponse(r),
		Created: created,
		Updated: !created,
	}
}
