package review

import (
	"context"
	"sync"
	"time"

	"github.com/cafecrawl/backend/internal/domain/review"
	"github.com/cafecrawl/backend/internal/domain/shared"
)

// memoryReviewRepository is a map-backed review store keyed by
// (user_id, cafe_id), mirroring the unique constraint of the SQL table.
type memoryReviewRepository struct {
	mu      sync.Mutex
	reviews map[[2]string]review.Review
	writes  int
}

func newMemoryReviewRepository() *memoryReviewRepository {
	return &memoryReviewRepository{reviews: make(map[[2]string]review.Review)}
}

func (r *memoryReviewRepository) FindByUserAndCafe(_ context.Context, userID, cafeID string) (*review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[[2]string{userID, cafeID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rv, nil
}

func (r *memoryReviewRepository) Create(_ context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{rv.UserID, rv.CafeID}
	if _, ok := r.reviews[key]; ok {
		return shared.ErrAlreadyExists
	}
	r.reviews[key] = *rv
	r.writes++
	return nil
}

func (r *memoryReviewRepository) Update(_ context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{rv.UserID, rv.CafeID}
	stored, ok := r.reviews[key]
	if !ok || stored.ID != rv.ID {
		return shared.ErrNotFound
	}
	stored.Rating = rv.Rating
	stored.Blurb = rv.Blurb
	stored.PhotoURL = rv.PhotoURL
	stored.UpdatedAt = rv.UpdatedAt
	r.reviews[key] = stored
	r.writes++
	return nil
}

func (r *memoryReviewRepository) CountCreatedSince(_ context.Context, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rv := range r.reviews {
		if rv.UserID == userID && !rv.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memoryReviewRepository) EarliestCreatedSince(_ context.Context, userID string, since time.Time) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var earliest *time.Time
	for _, rv := range r.reviews {
		if rv.UserID != userID || rv.CreatedAt.Before(since) {
			continue
		}
		if earliest == nil || rv.CreatedAt.Before(*earliest) {
			t := rv.CreatedAt
			earliest = &t
		}
	}
	return earliest, nil
}

func (r *memoryReviewRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}

func (r *memoryReviewRepository) put(rv review.Review) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[[2]string{rv.UserID, rv.CafeID}] = rv
}
