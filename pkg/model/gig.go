package model

import (
	"time"
)

// Payment status values for a gig.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Booking history status values.
const (
	StatusPending   = "pending"
	StatusBooked    = "booked"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Canceler types accepted by the cancellation flow.
const (
	CancelerClient   = "client"
	CancelerMusician = "musician"
)

// Gig is the aggregate root. All slot and payment state for one gig lives in
// a single document so every mutation can be expressed as one conditional
// update against it.
type Gig struct {
	ID           string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID      string `json:"owner_id" bson:"owner_id" validate:"required"`
	Title        string `json:"title" bson:"title" validate:"required,min=2,max=120"`
	Description  string `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	IsClientBand bool   `json:"is_client_band" bson:"is_client_band"`

	// Band gigs only.
	BandCategory []BandRole `json:"band_category,omitempty" bson:"band_category,omitempty" validate:"omitempty,max=20,dive"`

	// Regular gigs only.
	MaxSlots  int      `json:"max_slots,omitempty" bson:"max_slots,omitempty" validate:"omitempty,min=1,max=50"`
	BookedBy  []string `json:"booked_by,omitempty" bson:"booked_by,omitempty"`
	BookCount int      `json:"book_count" bson:"book_count"`

	InterestedUsers  []string `json:"interested_users,omitempty" bson:"interested_users,omitempty"`
	AppliedUsers     []string `json:"applied_users,omitempty" bson:"applied_users,omitempty"`
	ShortlistedUsers []string `json:"shortlisted_users,omitempty" bson:"shortlisted_users,omitempty"`

	IsTaken   bool `json:"is_taken" bson:"is_taken"`
	IsPending bool `json:"is_pending" bson:"is_pending"`
	IsActive  bool `json:"is_active" bson:"is_active"`

	PaymentStatus          string               `json:"payment_status" bson:"payment_status" validate:"omitempty,oneof=pending paid refunded"`
	ClientConfirmPayment   *PaymentConfirmation `json:"client_confirm_payment,omitempty" bson:"client_confirm_payment,omitempty"`
	MusicianConfirmPayment *PaymentConfirmation `json:"musician_confirm_payment,omitempty" bson:"musician_confirm_payment,omitempty"`
	FinalizedBy            string               `json:"finalized_by,omitempty" bson:"finalized_by,omitempty"`
	FinalizedAt            *time.Time           `json:"finalized_at,omitempty" bson:"finalized_at,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	// Version is bumped by every slot mutation and backs the optimistic
	// concurrency checks in the repository.
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// BandRole is one bookable role inside a band gig. Invariants:
// 0 <= FilledSlots <= MaxSlots and len(BookedUsers) == FilledSlots.
type BandRole struct {
	Role           string   `json:"role" bson:"role" validate:"required,min=2,max=60"`
	MaxSlots       int      `json:"max_slots" bson:"max_slots" validate:"required,min=1,max=20"`
	FilledSlots    int      `json:"filled_slots" bson:"filled_slots" validate:"omitempty,min=0"`
	Applicants     []string `json:"applicants,omitempty" bson:"applicants,omitempty"`
	BookedUsers    []string `json:"booked_users,omitempty" bson:"booked_users,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty" bson:"required_skills,omitempty" validate:"omitempty,max=10"`
	Price          float64  `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,min=0"`
	Currency       string   `json:"currency,omitempty" bson:"currency,omitempty" validate:"omitempty,len=3"`
	Negotiable     bool     `json:"negotiable" bson:"negotiable"`
	BookedPrice    float64  `json:"booked_price,omitempty" bson:"booked_price,omitempty" validate:"omitempty,min=0"`
	IsLocked       bool     `json:"is_locked" bson:"is_locked"`
}

// OpenSlots reports how many seats remain on the role.
func (r *BandRole) OpenSlots() int {
	open := r.MaxSlots - r.FilledSlots
	if open < 0 {
		return 0
	}
	return open
}

// IsFull reports whether the role has no open seats.
func (r *BandRole) IsFull() bool {
	return r.FilledSlots >= r.MaxSlots
}

// GigUpdate carries the owner-editable subset of a gig. Slot, payment and
// history state are never writable through updates.
type GigUpdate struct {
	Title       string  `json:"title,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	MaxSlots    *int    `json:"max_slots,omitempty" validate:"omitempty,min=1,max=50"`
}
