package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	gigserrors "gigstage/internal/gigs/errors"
	"gigstage/internal/gigs/events"
	"gigstage/internal/trust"
	apperrors "gigstage/pkg/errors"
	"gigstage/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ExpressInterest records a musician's interest in a regular gig. Band gigs
// have no interest list; musicians apply to a concrete role instead.
func (s *GigService) ExpressInterest(ctx context.Context, gigID, userID string) error {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return err
	}
	if gig.IsClientBand {
		return apperrors.BandGigNotSupported("expressing interest")
	}
	if gig.OwnerID == userID {
		return apperrors.PermissionDenied("owners cannot express interest in their own gig")
	}

	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.AddInterest(ctx, gigID, userID); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			return s.classifyInterestFailure(ctx, gigID, userID)
		}
		return apperrors.Internal("failed to express interest", err)
	}

	s.publisher.Publish(ctx, events.TypeInterestExpressed, gigID, map[string]string{
		"gig_id":  gigID,
		"user_id": userID,
	})
	return nil
}

func (s *GigService) classifyInterestFailure(ctx context.Context, gigID, userID string) error {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return err
	}
	if contains(gig.InterestedUsers, userID) {
		return apperrors.AlreadyInterested(gigID)
	}
	if !gig.IsActive {
		return apperrors.NotFoundWithID("gig", gigID)
	}
	return apperrors.Conflict("gig state changed, retry the request")
}

// RemoveInterest withdraws previously expressed interest. The reason goes
// into the audit trail, not the gig document.
func (s *GigService) RemoveInterest(ctx context.Context, gigID, userID, reason string) error {
	if err := s.repo.RemoveInterest(ctx, gigID, userID); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			gig, getErr := s.getGig(ctx, gigID)
			if getErr != nil {
				return getErr
			}
			if gig.IsClientBand {
				return apperrors.BandGigNotSupported("removing interest")
			}
			return apperrors.NotInterested(gigID)
		}
		if errors.Is(err, gigserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("gig", gigID)
		}
		return apperrors.Internal("failed to remove interest", err)
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gigID,
		UserID: userID,
		Status: model.StatusPending,
		Actor:  userID,
		Notes:  reason,
		Metadata: map[string]string{
			"action": "interest_removed",
		},
	})
	return nil
}

// ApplyToRole records a musician's application for one band role. Applying
// never consumes a seat; the gig owner books from the applicant pool.
func (s *GigService) ApplyToRole(ctx context.Context, gigID, roleName, userID string) error {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return err
	}
	if !gig.IsClientBand {
		return apperrors.InvalidInput("gig has no band roles, express interest instead")
	}

	idx := roleIndex(gig, roleName)
	if idx < 0 {
		return apperrors.NotFoundWithID("role", roleName)
	}
	role := &gig.BandCategory[idx]

	if _, err := s.gateUser(ctx, userID, role); err != nil {
		return err
	}

	if err := s.repo.AddRoleApplicant(ctx, gigID, idx, userID, role.MaxSlots); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			return s.classifyRoleFailure(ctx, gigID, roleName, userID, true)
		}
		return apperrors.Internal("failed to apply to role", err)
	}
	return nil
}

// BookRole assigns a musician to a band role. The seat is claimed by a
// single compare-and-increment in the repository; this method only gates,
// classifies failures, and records the outcome.
func (s *GigService) BookRole(ctx context.Context, gigID, roleName, userID string, price float64) (*model.Gig, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsClientBand {
		return nil, apperrors.InvalidInput("gig has no band roles, book the gig directly")
	}
	if gig.OwnerID == userID {
		return nil, apperrors.PermissionDenied("owners cannot book a role on their own gig")
	}
	if gig.IsTaken {
		return nil, apperrors.GigAlreadyTaken(gigID)
	}

	idx := roleIndex(gig, roleName)
	if idx < 0 {
		return nil, apperrors.NotFoundWithID("role", roleName)
	}
	role := &gig.BandCategory[idx]

	user, err := s.gateUser(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	bookedPrice := price
	if bookedPrice <= 0 {
		bookedPrice = role.Price
	}

	if err := s.repo.BookRoleSlot(ctx, gigID, idx, userID, role.MaxSlots, bookedPrice); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			return nil, s.classifyRoleFailure(ctx, gigID, roleName, userID, false)
		}
		return nil, apperrors.Internal("failed to book role", err)
	}

	updated, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if updated.BandCategory[idx].IsFull() && !updated.BandCategory[idx].IsLocked {
		if lockErr := s.repo.SetRoleLocked(ctx, gigID, idx); lockErr == nil {
			updated.BandCategory[idx].IsLocked = true
		} else if !errors.Is(lockErr, gigserrors.ErrConditionFailed) {
			s.cfg.Log.Error("Failed to lock filled role", "gig_id", gigID, "role", role.Role, "error", lockErr)
		}
	}
	s.maybeMarkTaken(ctx, updated)

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gigID,
		UserID: userID,
		Status: model.StatusBooked,
		Role:   role.Role,
		Actor:  userID,
		Price:  bookedPrice,
		Notes:  fmt.Sprintf("booked role %s", role.Role),
		Metadata: map[string]string{
			"instrument": user.Instrument,
		},
	})
	s.publisher.Publish(ctx, events.TypeRoleBooked, gigID, map[string]any{
		"gig_id":  gigID,
		"user_id": userID,
		"role":    role.Role,
		"price":   bookedPrice,
	})

	return updated, nil
}

// gateUser runs the identity, trust and qualification gates shared by the
// apply and book paths.
func (s *GigService) gateUser(ctx context.Context, userID string, role *model.BandRole) (*model.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if score := s.scorer.Score(user); score < s.cfg.MinTrustScore {
		s.cfg.Log.Info("Booking rejected on trust score",
			"user_id", userID,
			"score", score,
			"min_score", s.cfg.MinTrustScore,
		)
		return nil, apperrors.NotQualified(user.Instrument, role.Role)
	}
	if !trust.IsQualified(user, role) {
		return nil, apperrors.NotQualified(user.Instrument, role.Role)
	}
	return user, nil
}

// classifyRoleFailure re-fetches the gig after a conditional write matched
// nothing and decides which precondition actually broke. The re-fetch sees a
// state at least as new as the one that rejected the write.
func (s *GigService) classifyRoleFailure(ctx context.Context, gigID, roleName, userID string, applying bool) error {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return err
	}
	if !gig.IsActive {
		return apperrors.NotFoundWithID("gig", gigID)
	}

	idx := roleIndex(gig, roleName)
	if idx < 0 {
		return apperrors.NotFoundWithID("role", roleName)
	}
	role := &gig.BandCategory[idx]

	if applying && contains(role.Applicants, userID) {
		return apperrors.Conflict("user already applied to this role")
	}
	if !applying {
		for i := range gig.BandCategory {
			if contains(gig.BandCategory[i].BookedUsers, userID) {
				return apperrors.Conflict("user already holds a seat on this gig")
			}
		}
	}
	if role.IsFull() {
		return apperrors.RoleFull(role.Role, role.FilledSlots, role.MaxSlots)
	}
	if gig.IsTaken {
		return apperrors.GigAlreadyTaken(gigID)
	}
	return apperrors.Conflict("gig state changed, retry the request")
}

// maybeMarkTaken flips the gig-level taken flag once every role is full.
// Version-guarded, so an unrelated write between the read and the flip makes
// the first attempt miss; the miss is retried once against a fresh read so
// the flag cannot trail a fully booked gig indefinitely.
func (s *GigService) maybeMarkTaken(ctx context.Context, gig *model.Gig) {
	current := gig
	for attempt := 0; attempt < 2; attempt++ {
		if current.IsTaken {
			gig.IsTaken = true
			return
		}
		for i := range current.BandCategory {
			if !current.BandCategory[i].IsFull() {
				return
			}
		}

		err := s.repo.MarkTaken(ctx, current.ID, current.Version)
		if err == nil {
			gig.IsTaken = true
			return
		}
		if !errors.Is(err, gigserrors.ErrConditionFailed) {
			s.cfg.Log.Error("Failed to mark gig taken", "gig_id", current.ID, "error", err)
			return
		}

		fresh, getErr := s.getGig(ctx, current.ID)
		if getErr != nil {
			return
		}
		current = fresh
	}
}

// BookRegularGig books one seat on a non-band gig. An advisory lock
// serializes the book-then-mark-taken pair so the taken flag cannot trail a
// concurrent final booking.
func (s *GigService) BookRegularGig(ctx context.Context, gigID, userID string) (*model.Gig, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.IsClientBand {
		return nil, apperrors.BandGigNotSupported("direct booking")
	}
	if gig.OwnerID == userID {
		return nil, apperrors.PermissionDenied("owners cannot book their own gig")
	}
	if gig.IsTaken {
		return nil, apperrors.GigAlreadyTaken(gigID)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if score := s.scorer.Score(user); score < s.cfg.MinTrustScore {
		return nil, apperrors.NotQualified(user.Instrument, "")
	}

	lock := &model.SlotLock{
		ID:        "gig_book:" + gigID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}
	if _, err := s.locks.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("another booking for this gig is in progress")
		}
		return nil, apperrors.Internal("failed to acquire booking lock", err)
	}
	defer func() {
		if err := s.locks.Delete(ctx, lock.ID); err != nil {
			s.cfg.Log.Error("Failed to release booking lock", "lock_id", lock.ID, "error", err)
		}
	}()

	maxSlots := gig.MaxSlots
	if maxSlots < 1 {
		maxSlots = 1
	}

	if err := s.repo.BookRegularSlot(ctx, gigID, userID, maxSlots); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			return nil, s.classifyRegularFailure(ctx, gigID, userID)
		}
		return nil, apperrors.Internal("failed to book gig", err)
	}

	updated, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if updated.BookCount >= maxSlots && !updated.IsTaken {
		if err := s.repo.MarkTaken(ctx, gigID, updated.Version); err != nil && !errors.Is(err, gigserrors.ErrConditionFailed) {
			s.cfg.Log.Error("Failed to mark gig taken", "gig_id", gigID, "error", err)
		} else if err == nil {
			updated.IsTaken = true
		}
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gigID,
		UserID: userID,
		Status: model.StatusBooked,
		Actor:  userID,
		Notes:  "booked gig",
	})
	s.publisher.Publish(ctx, events.TypeRegularBooked, gigID, map[string]string{
		"gig_id":  gigID,
		"user_id": userID,
	})

	return updated, nil
}

func (s *GigService) classifyRegularFailure(ctx context.Context, gigID, userID string) error {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return err
	}
	if !gig.IsActive {
		return apperrors.NotFoundWithID("gig", gigID)
	}
	if contains(gig.BookedBy, userID) {
		return apperrors.Conflict("user already booked this gig")
	}
	if gig.IsTaken || gig.BookCount >= gig.MaxSlots {
		return apperrors.GigAlreadyTaken(gigID)
	}
	return apperrors.Conflict("gig state changed, retry the request")
}

// ShortlistApplicant moves an applicant to the owner's shortlist.
func (s *GigService) ShortlistApplicant(ctx context.Context, gigID, callerID, userID string) error {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return err
	}
	if gig.OwnerID != callerID {
		return apperrors.PermissionDenied("only the gig owner can shortlist applicants")
	}

	if err := s.repo.AddShortlist(ctx, gigID, userID); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			fresh, getErr := s.getGig(ctx, gigID)
			if getErr != nil {
				return getErr
			}
			if contains(fresh.ShortlistedUsers, userID) {
				return apperrors.Conflict("user is already shortlisted")
			}
			return apperrors.Conflict("user has not applied to this gig")
		}
		return apperrors.Internal("failed to shortlist applicant", err)
	}
	return nil
}
