package handler

import (
	"context"
	"net/http"

	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReviewSubmitter creates or revises reviews
type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, caller *identity.Caller, cmd reviewapp.SubmitReviewCommand) (*reviewapp.SubmitReviewResult, error)
}

// ReviewHandler serves POST /api/v1/reviews
type ReviewHandler struct {
	BaseHandler
	service ReviewSubmitter
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service ReviewSubmitter) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Submit upserts the caller's review of cafe_id
func (h *ReviewHandler) Submit(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.SubmitReview(c.Request.Context(), caller, reviewapp.SubmitReviewCommand{
		CafeID:   req.CafeID,
		Rating:   req.Rating,
		Blurb:    req.Blurb,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReviewMutationResponse(result.Review, result.Created))
}
