package dto

// FollowRequest is the body of POST /api/v1/follow
type FollowRequest struct {
	Action     string `json:"action" binding:"required,oneof=follow unfollow"`
	FolloweeID string `json:"followee_id" binding:"required,max=128"`
}

// SubmitReviewRequest is the body of POST /api/v1/reviews
type SubmitReviewRequest struct {
	CafeID   string   `json:"cafe_id" binding:"required,max=128"`
	Rating   *float64 `json:"rating" binding:"required"`
	Blurb    *string  `json:"blurb"`
	PhotoURL *string  `json:"photo_url"`
}
