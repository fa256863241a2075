package model

// User is the slice of the external identity provider's profile that the
// core consumes. It is never persisted here; the identity service owns it.
type User struct {
	ID         string `json:"id" bson:"_id"`
	Name       string `json:"name,omitempty"`
	Bio        string `json:"bio,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Location   string `json:"location,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	RoleType   string `json:"role_type,omitempty"`
	Tier       string `json:"tier,omitempty"`

	IsBanned      bool `json:"is_banned"`
	IDVerified    bool `json:"id_verified"`
	EmailVerified bool `json:"email_verified"`

	CompletedGigs    int     `json:"completed_gigs"`
	AvgRating        float64 `json:"avg_rating"`
	ResponseRate     float64 `json:"response_rate"`
	HasPaymentMethod bool    `json:"has_payment_method"`
	ReviewCount      int     `json:"review_count"`
	FollowerCount    int     `json:"follower_count"`
}
