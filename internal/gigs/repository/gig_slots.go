package repository

import (
	"context"
	"fmt"
	"time"

	gigserrors "gigstage/internal/gigs/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotWriter holds every mutation of slot state: filledSlots, applicants,
// bookedUsers, interestedUsers, appliedUsers, isTaken. Each method is one
// conditional UpdateOne whose filter re-validates the precondition at
// commit time, so two racing writers can never both succeed for the same
// seat. MatchedCount == 0 surfaces as ErrConditionFailed and the caller
// re-fetches the document to classify what changed underneath it.
type SlotWriter interface {
	AddInterest(ctx context.Context, gigID, userID string) error
	RemoveInterest(ctx context.Context, gigID, userID string) error
	AddRoleApplicant(ctx context.Context, gigID string, roleIndex int, userID string, maxSlots int) error
	BookRoleSlot(ctx context.Context, gigID string, roleIndex int, userID string, maxSlots int, price float64) error
	ReleaseRoleSlot(ctx context.Context, gigID string, roleIndex int, userID string) error
	SetRoleLocked(ctx context.Context, gigID string, roleIndex int) error
	MarkTaken(ctx context.Context, gigID string, version int64) error
	BookRegularSlot(ctx context.Context, gigID, userID string, maxSlots int) error
	ReleaseRegularSlot(ctx context.Context, gigID, userID string) error
	AddShortlist(ctx context.Context, gigID, userID string) error
}

func roleField(roleIndex int, field string) string {
	return fmt.Sprintf("band_category.%d.%s", roleIndex, field)
}

func (r *mongoGigRepository) slotUpdate(ctx context.Context, gigID string, filter, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(gigID)
	if err != nil {
		return fmt.Errorf("%w: %s", gigserrors.ErrInvalidID, gigID)
	}
	filter["_id"] = objectID

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update gig slots: %w", err)
	}
	if result.MatchedCount == 0 {
		return gigserrors.ErrConditionFailed
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *mongoGigRepository) AddInterest(ctx context.Context, gigID, userID string) error {
	filter := bson.M{
		"is_active":        true,
		"is_client_band":   false,
		"interested_users": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"interested_users": userID},
		"$set":      bson.M{"updated_at": now()},
		"$inc":      bson.M{"version": 1},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

func (r *mongoGigRepository) RemoveInterest(ctx context.Context, gigID, userID string) error {
	filter := bson.M{
		"interested_users": userID,
	}
	update := bson.M{
		"$pull": bson.M{"interested_users": userID},
		"$set":  bson.M{"updated_at": now()},
		"$inc":  bson.M{"version": 1},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// AddRoleApplicant records an application. Applying never increments
// filled_slots - only booking does - but the filter still rejects
// applications to a role that is already full.
func (r *mongoGigRepository) AddRoleApplicant(ctx context.Context, gigID string, roleIndex int, userID string, maxSlots int) error {
	filter := bson.M{
		"is_active":                      true,
		roleField(roleIndex, "filled_slots"): bson.M{"$lt": maxSlots},
		roleField(roleIndex, "applicants"):   bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{
			roleField(roleIndex, "applicants"): userID,
			"applied_users":                    userID,
		},
		"$set": bson.M{"updated_at": now()},
		"$inc": bson.M{"version": 1},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// BookRoleSlot is the compare-and-increment at the heart of the allocator.
// The filter re-checks, atomically with the write, that the role still has
// an open seat and that the user holds no seat anywhere on this gig. Out of
// N concurrent calls for k open seats exactly k can match.
func (r *mongoGigRepository) BookRoleSlot(ctx context.Context, gigID string, roleIndex int, userID string, maxSlots int, price float64) error {
	filter := bson.M{
		"is_active":                          true,
		roleField(roleIndex, "filled_slots"): bson.M{"$lt": maxSlots},
		"band_category.booked_users":         bson.M{"$ne": userID},
	}

	set := bson.M{"updated_at": now()}
	if price > 0 {
		set[roleField(roleIndex, "booked_price")] = price
	}

	update := bson.M{
		"$addToSet": bson.M{roleField(roleIndex, "booked_users"): userID},
		"$inc": bson.M{
			roleField(roleIndex, "filled_slots"): 1,
			"version":                            1,
		},
		"$set": set,
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// ReleaseRoleSlot frees a booked seat after a musician cancellation. The
// filter guards filled_slots > 0 so the count can never go negative.
func (r *mongoGigRepository) ReleaseRoleSlot(ctx context.Context, gigID string, roleIndex int, userID string) error {
	filter := bson.M{
		roleField(roleIndex, "booked_users"): userID,
		roleField(roleIndex, "filled_slots"): bson.M{"$gt": 0},
	}
	update := bson.M{
		"$pull": bson.M{roleField(roleIndex, "booked_users"): userID},
		"$inc": bson.M{
			roleField(roleIndex, "filled_slots"): -1,
			"version":                            1,
		},
		"$set": bson.M{
			roleField(roleIndex, "is_locked"): false,
			"is_taken":                        false,
			"updated_at":                      now(),
		},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

func (r *mongoGigRepository) SetRoleLocked(ctx context.Context, gigID string, roleIndex int) error {
	filter := bson.M{
		roleField(roleIndex, "is_locked"): false,
	}
	update := bson.M{
		"$set": bson.M{
			roleField(roleIndex, "is_locked"): true,
			"updated_at":                      now(),
		},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// MarkTaken flips the gig-level taken flag. Guarded by the version the
// caller computed "all roles full" against; if another writer moved the
// document since, the caller re-fetches and re-decides.
func (r *mongoGigRepository) MarkTaken(ctx context.Context, gigID string, version int64) error {
	filter := bson.M{
		"version":  version,
		"is_taken": false,
	}
	update := bson.M{
		"$set": bson.M{
			"is_taken":   true,
			"updated_at": now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// BookRegularSlot books one seat on a single-seat or multi-seat regular
// gig, with the same compare-and-increment shape as BookRoleSlot.
func (r *mongoGigRepository) BookRegularSlot(ctx context.Context, gigID, userID string, maxSlots int) error {
	filter := bson.M{
		"is_active":      true,
		"is_client_band": false,
		"is_taken":       false,
		"book_count":     bson.M{"$lt": maxSlots},
		"booked_by":      bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"booked_by": userID},
		"$inc": bson.M{
			"book_count": 1,
			"version":    1,
		},
		"$set": bson.M{"updated_at": now()},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// ReleaseRegularSlot frees one seat on a regular gig after a musician
// cancellation, mirroring ReleaseRoleSlot.
func (r *mongoGigRepository) ReleaseRegularSlot(ctx context.Context, gigID, userID string) error {
	filter := bson.M{
		"booked_by":  userID,
		"book_count": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$pull": bson.M{"booked_by": userID},
		"$inc": bson.M{
			"book_count": -1,
			"version":    1,
		},
		"$set": bson.M{
			"is_taken":   false,
			"updated_at": now(),
		},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

func (r *mongoGigRepository) AddShortlist(ctx context.Context, gigID, userID string) error {
	filter := bson.M{
		"applied_users":     userID,
		"shortlisted_users": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"shortlisted_users": userID},
		"$set":      bson.M{"updated_at": now()},
		"$inc":      bson.M{"version": 1},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}
