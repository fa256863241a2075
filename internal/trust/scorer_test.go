package trust

import (
	"testing"
	"time"

	"gigstage/pkg/model"
)

func fullProfileUser() *model.User {
	return &model.User{
		ID:               "u1",
		Name:             "Dana",
		Bio:              "Session guitarist",
		AvatarURL:        "https://cdn.example.com/u1.png",
		Location:         "Berlin",
		Instrument:       "guitar",
		IDVerified:       true,
		EmailVerified:    true,
		CompletedGigs:    10,
		AvgRating:        5,
		ResponseRate:     0.95,
		HasPaymentMethod: true,
		ReviewCount:      5,
		FollowerCount:    1500,
	}
}

func TestScore_MaxedOutProfile(t *testing.T) {
	got := Score(fullProfileUser())
	if got != 100 {
		t.Errorf("Score() = %d, want 100", got)
	}
}

func TestScore_BannedUserShortCircuits(t *testing.T) {
	user := fullProfileUser()
	user.IsBanned = true

	if got := Score(user); got != 0 {
		t.Errorf("banned user scored %d, want 0", got)
	}
}

func TestScore_NilUser(t *testing.T) {
	if got := Score(nil); got != 0 {
		t.Errorf("nil user scored %d, want 0", got)
	}
}

func TestScore_EmptyProfile(t *testing.T) {
	if got := Score(&model.User{ID: "u2"}); got != 0 {
		t.Errorf("empty profile scored %d, want 0", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	user := fullProfileUser()
	first := Score(user)
	for i := 0; i < 5; i++ {
		if got := Score(user); got != first {
			t.Fatalf("score changed between calls: %d != %d", got, first)
		}
	}
}

func TestScore_Terms(t *testing.T) {
	tests := []struct {
		name     string
		user     *model.User
		expected int
	}{
		{
			name:     "profile completeness only, partial",
			user:     &model.User{Name: "Dana", Bio: "x"},
			expected: 10,
		},
		{
			name:     "verification only, id",
			user:     &model.User{IDVerified: true},
			expected: 15,
		},
		{
			name:     "verification only, email",
			user:     &model.User{EmailVerified: true},
			expected: 10,
		},
		{
			name:     "completed gigs capped at 10",
			user:     &model.User{CompletedGigs: 50},
			expected: 20,
		},
		{
			name:     "rating capped at 5",
			user:     &model.User{AvgRating: 9.7},
			expected: 5,
		},
		{
			name:     "response rate bonus needs 0.9",
			user:     &model.User{ResponseRate: 0.89},
			expected: 0,
		},
		{
			name:     "payment method",
			user:     &model.User{HasPaymentMethod: true},
			expected: 10,
		},
		{
			name:     "social proof reviews capped",
			user:     &model.User{ReviewCount: 12},
			expected: 5,
		},
		{
			name:     "follower tier mid",
			user:     &model.User{FollowerCount: 250},
			expected: 3,
		},
		{
			name:     "negative inputs contribute zero",
			user:     &model.User{CompletedGigs: -3, AvgRating: -1, ReviewCount: -4},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.user); got != tt.expected {
				t.Errorf("Score() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCachedScorer_CachesAndInvalidates(t *testing.T) {
	scorer := NewCachedScorer(time.Minute)
	user := fullProfileUser()

	first := scorer.Score(user)
	if first != 100 {
		t.Fatalf("first score = %d, want 100", first)
	}

	// Profile changed but cache still serves the old score.
	user.HasPaymentMethod = false
	if got := scorer.Score(user); got != first {
		t.Errorf("expected cached score %d, got %d", first, got)
	}

	scorer.Invalidate(user.ID)
	if got := scorer.Score(user); got != 90 {
		t.Errorf("after invalidation score = %d, want 90", got)
	}
}

func TestCachedScorer_BanBypassesCache(t *testing.T) {
	scorer := NewCachedScorer(time.Minute)
	user := fullProfileUser()

	if got := scorer.Score(user); got != 100 {
		t.Fatalf("seed score = %d, want 100", got)
	}

	user.IsBanned = true
	if got := scorer.Score(user); got != 0 {
		t.Errorf("banned user served cached score %d, want 0", got)
	}
}
