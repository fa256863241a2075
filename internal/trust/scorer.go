package trust

import (
	"gigstage/pkg/model"
)

// Score weights. The total of all caps is exactly 100.
const (
	maxProfileScore      = 25
	maxVerificationScore = 25
	maxActivityScore     = 30
	paymentMethodScore   = 10
	maxSocialScore       = 10
)

// Score computes the 0-100 eligibility score for a user. Pure and
// deterministic: same profile in, same score out. Banned users score 0
// regardless of anything else. Missing or malformed inputs contribute zero
// for their term, never an error.
func Score(user *model.User) int {
	if user == nil || user.IsBanned {
		return 0
	}

	score := profileCompleteness(user) +
		verification(user) +
		activity(user) +
		paymentMethod(user) +
		socialProof(user)

	if score > 100 {
		score = 100
	}
	return score
}

// profileCompleteness grants 5 points per filled profile field, up to 25.
func profileCompleteness(user *model.User) int {
	fields := []string{
		user.Name,
		user.Bio,
		user.AvatarURL,
		user.Location,
		user.Instrument,
	}

	score := 0
	for _, f := range fields {
		if f != "" {
			score += 5
		}
	}
	if score > maxProfileScore {
		score = maxProfileScore
	}
	return score
}

func verification(user *model.User) int {
	score := 0
	if user.IDVerified {
		score += 15
	}
	if user.EmailVerified {
		score += 10
	}
	return score
}

// activity rewards completed gigs (2 points each up to 10 gigs), the average
// rating (up to 5) and consistently fast responses, capped at 30.
func activity(user *model.User) int {
	completed := user.CompletedGigs
	if completed < 0 {
		completed = 0
	}
	if completed > 10 {
		completed = 10
	}
	score := completed * 2

	rating := user.AvgRating
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	score += int(rating)

	if user.ResponseRate >= 0.9 {
		score += 5
	}

	if score > maxActivityScore {
		score = maxActivityScore
	}
	return score
}

func paymentMethod(user *model.User) int {
	if user.HasPaymentMethod {
		return paymentMethodScore
	}
	return 0
}

// socialProof counts reviews (1 point each up to 5) plus a follower tier
// bonus, capped at 10.
func socialProof(user *model.User) int {
	reviews := user.ReviewCount
	if reviews < 0 {
		reviews = 0
	}
	if reviews > 5 {
		reviews = 5
	}
	score := reviews

	switch {
	case user.FollowerCount >= 1000:
		score += 5
	case user.FollowerCount >= 100:
		score += 3
	case user.FollowerCount >= 10:
		score += 1
	}

	if score > maxSocialScore {
		score = maxSocialScore
	}
	return score
}
