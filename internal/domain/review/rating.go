package review

import (
	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	// MinRating is the lowest accepted rating
	MinRating = decimal.NewFromInt(1)
	// MaxRating is the highest accepted rating
	MaxRating = decimal.NewFromInt(5)
	// ratingStep is the granularity of a rating (half stars)
	ratingStep = decimal.NewFromFloat(0.5)
)

// Rating is a score in [MinRating, MaxRating] in half-star steps.
type Rating struct {
	value decimal.Decimal
}

// NewRating validates a decimal rating.
func NewRating(value decimal.Decimal) (Rating, error) {
	if value.LessThan(MinRating) || value.GreaterThan(MaxRating) {
		return Rating{}, shared.NewValidationError("rating must be between %s and %s", MinRating, MaxRating)
	}
	if !value.Mod(ratingStep).IsZero() {
		return Rating{}, shared.NewValidationError("rating must be a multiple of %s", ratingStep)
	}
	return Rating{value: value}, nil
}

// NewRatingFromFloat validates a rating decoded from a JSON number.
func NewRatingFromFloat(value float64) (Rating, error) {
	return NewRating(decimal.NewFromFloat(value))
}

// MustRating panics if value is not a valid rating.
func MustRating(value float64) Rating {
	r, err := NewRatingFromFloat(value)
	if err != nil {
		panic(err)
	}
	return r
}

// Decimal returns the rating value
func (r Rating) Decimal() decimal.Decimal {
	return r.value
}

// Float64 returns the rating as a float for JSON encoding
func (r Rating) Float64() float64 {
	f, _ := r.value.Float64()
	return f
}

// Equal reports whether two ratings carry the same value
func (r Rating) Equal(other Rating) bool {
	return r.value.Equal(other.value)
}

// String implements fmt.Stringer
func (r Rating) String() string {
	return r.value.String()
}
