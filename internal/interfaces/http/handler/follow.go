package handler

import (
	"context"
	"net/http"

	socialapp "github.com/cafecrawl/backend/internal/application/social"
	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// FollowMutator applies follow mutations
type FollowMutator interface {
	MutateFollow(ctx context.Context, caller *identity.Caller, cmd socialapp.FollowCommand) error
}

// FollowHandler serves POST /api/v1/follow
type FollowHandler struct {
	BaseHandler
	service FollowMutator
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(service FollowMutator) *FollowHandler {
	return &FollowHandler{service: service}
}

// Mutate follows or unfollows followee_id on behalf of the caller
func (h *FollowHandler) Mutate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.FollowRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.service.MutateFollow(c.Request.Context(), caller, socialapp.FollowCommand{
		Action:     req.Action,
		FolloweeID: req.FolloweeID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}
