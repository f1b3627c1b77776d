package review

import (
	"strings"
	"testing"
	"time"

	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewRating(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"minimum", 1, false},
		{"maximum", 5, false},
		{"half star", 3.5, false},
		{"below range", 0.5, true},
		{"zero", 0, true},
		{"above range", 5.5, true},
		{"negative", -1, true},
		{"not a half step", 4.2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRatingFromFloat(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, r.Float64())
		})
	}
}

func TestRating_Equal(t *testing.T) {
	a, err := NewRating(decimal.RequireFromString("4.0"))
	require.NoError(t, err)
	assert.True(t, a.Equal(MustRating(4)))
	assert.False(t, a.Equal(MustRating(4.5)))
	assert.Equal(t, "4", MustRating(4).String())
}

func TestNewContent(t *testing.T) {
	t.Run("empty optional fields become absent", func(t *testing.T) {
		c, err := NewContent(MustRating(4), strPtr("  "), strPtr(""))
		require.NoError(t, err)
		assert.Nil(t, c.Blurb)
		assert.Nil(t, c.PhotoURL)
	})

	t.Run("blurb is normalized", func(t *testing.T) {
		// "e" followed by a combining acute accent composes into one rune.
		c, err := NewContent(MustRating(4), strPtr(" cafe\u0301 "), nil)
		require.NoError(t, err)
		require.NotNil(t, c.Blurb)
		assert.Equal(t, "caf\u00e9", *c.Blurb)
	})

	t.Run("blurb length counts characters", func(t *testing.T) {
		_, err := NewContent(MustRating(4), strPtr(strings.Repeat("\u00e9", MaxBlurbLength)), nil)
		assert.NoError(t, err)

		_, err = NewContent(MustRating(4), strPtr(strings.Repeat("a", MaxBlurbLength+1)), nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("photo url must be absolute http", func(t *testing.T) {
		_, err := NewContent(MustRating(4), nil, strPtr("https://cdn.example.com/p/1.jpg"))
		assert.NoError(t, err)

		for _, bad := range []string{"not a url", "/relative/path.jpg", "ftp://host/x.jpg", "https://"} {
			_, err := NewContent(MustRating(4), nil, strPtr(bad))
			assert.ErrorIs(t, err, shared.ErrValidation, bad)
		}
	})
}

func TestNewReview(t *testing.T) {
	content, err := NewContent(MustRating(4), strPtr("Great flat white"), nil)
	require.NoError(t, err)

	r, err := NewReview("u1", " c1 ", content)
	require.NoError(t, err)
	assert.NotEqual(t, "", r.ID.String())
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, "c1", r.CafeID)
	assert.True(t, r.Rating.Equal(MustRating(4)))
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)

	_, err = NewReview("u1", "", content)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewReview("", "c1", content)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewReview("u1", strings.Repeat("c", MaxCafeIDLength+1), content)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReview_Revise(t *testing.T) {
	content, err := NewContent(MustRating(4), strPtr("first"), strPtr("https://img.example.com/a.jpg"))
	require.NoError(t, err)
	r, err := NewReview("u1", "c1", content)
	require.NoError(t, err)

	id, createdAt := r.ID, r.CreatedAt
	time.Sleep(time.Millisecond)

	r.Revise(Content{Rating: MustRating(2)})

	assert.Equal(t, id, r.ID)
	assert.Equal(t, createdAt, r.CreatedAt)
	assert.True(t, r.UpdatedAt.After(createdAt))
	assert.True(t, r.Rating.Equal(MustRating(2)))
	assert.Nil(t, r.Blurb)
	assert.Nil(t, r.PhotoURL)
}
