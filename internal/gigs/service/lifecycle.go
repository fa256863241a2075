package service

import (
	"context"
	"errors"
	"sync"

	gigserrors "gigstage/internal/gigs/errors"
	"gigstage/internal/gigs/events"
	"gigstage/pkg/config"
	apperrors "gigstage/pkg/errors"
	"gigstage/pkg/model"
	"gigstage/pkg/sanitizer"
)

// Create validates and persists a new gig. The owner comes from the
// authenticated caller, never from the body.
func (s *GigService) Create(ctx context.Context, ownerID string, gig *model.Gig) (*model.Gig, error) {
	gig.ID = ""
	gig.OwnerID = ownerID
	gig.Title = sanitizer.TrimAndNormalize(gig.Title)
	gig.Description = sanitizer.TrimAndNormalize(gig.Description)
	for i := range gig.BandCategory {
		role := &gig.BandCategory[i]
		role.Role = sanitizer.NormalizeRole(role.Role)
		role.RequiredSkills = sanitizer.NormalizeSkills(role.RequiredSkills)
		role.FilledSlots = 0
		role.Applicants = nil
		role.BookedUsers = nil
		role.IsLocked = false
	}

	// Fresh state regardless of what the caller sent.
	gig.IsActive = true
	gig.IsTaken = false
	gig.IsPending = false
	gig.PaymentStatus = model.PaymentPending
	gig.BookedBy = nil
	gig.BookCount = 0
	gig.InterestedUsers = nil
	gig.AppliedUsers = nil
	gig.ShortlistedUsers = nil
	gig.ClientConfirmPayment = nil
	gig.MusicianConfirmPayment = nil
	gig.Version = 0
	if !gig.IsClientBand && gig.MaxSlots < 1 {
		gig.MaxSlots = 1
	}

	if err := s.validator.Validate(gig); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, gig); err != nil {
		return nil, apperrors.Internal("failed to create gig", err)
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gig.ID,
		UserID: ownerID,
		Status: model.StatusPending,
		Actor:  ownerID,
		Notes:  "gig created",
	})

	return gig, nil
}

// GetByID returns one gig.
func (s *GigService) GetByID(ctx context.Context, gigID string) (*model.Gig, error) {
	return s.getGig(ctx, gigID)
}

// Update applies the owner-editable fields. Rejected once the gig is taken
// or cancelled.
func (s *GigService) Update(ctx context.Context, gigID, callerID string, update *model.GigUpdate) (*model.Gig, error) {
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != callerID {
		return nil, apperrors.PermissionDenied("only the gig owner can update the gig")
	}

	if update.Title != "" {
		gig.Title = sanitizer.TrimAndNormalize(update.Title)
	}
	if update.Description != nil {
		gig.Description = sanitizer.TrimAndNormalize(*update.Description)
	}
	if update.MaxSlots != nil {
		if gig.IsClientBand {
			return nil, apperrors.InvalidInput("band gigs use per-role slots, not gig-level max_slots")
		}
		if *update.MaxSlots < gig.BookCount {
			return nil, apperrors.Conflict("max_slots cannot drop below the current booking count")
		}
		gig.MaxSlots = *update.MaxSlots
	}

	if err := s.repo.UpdateDetails(ctx, gigID, gig); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			fresh, getErr := s.getGig(ctx, gigID)
			if getErr != nil {
				return nil, getErr
			}
			if fresh.IsTaken {
				return nil, apperrors.GigAlreadyTaken(gigID)
			}
			return nil, apperrors.NotFoundWithID("gig", gigID)
		}
		return nil, apperrors.Internal("failed to update gig", err)
	}

	return s.getGig(ctx, gigID)
}

// Cancel handles both cancellation paths. A client cancellation terminates
// the gig; a musician cancellation only releases the musician's seat and the
// gig stays open for rebooking.
func (s *GigService) Cancel(ctx context.Context, gigID, callerID, cancelerType, reason string) (*model.Gig, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}

	switch cancelerType {
	case model.CancelerClient:
		return s.cancelByClient(ctx, gig, callerID, reason)
	case model.CancelerMusician:
		return s.cancelByMusician(ctx, gig, callerID, reason)
	default:
		return nil, apperrors.InvalidInput("canceler_type must be client or musician")
	}
}

func (s *GigService) cancelByClient(ctx context.Context, gig *model.Gig, callerID, reason string) (*model.Gig, error) {
	if gig.OwnerID != callerID {
		return nil, apperrors.PermissionDenied("only the gig owner can cancel as client")
	}
	if gig.PaymentStatus == model.PaymentPaid {
		return nil, apperrors.Conflict("cannot cancel a gig with a finalized payment")
	}

	if err := s.repo.Cancel(ctx, gig.ID, callerID, reason); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			return nil, apperrors.Conflict("gig is already cancelled")
		}
		return nil, apperrors.Internal("failed to cancel gig", err)
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gig.ID,
		UserID: callerID,
		Status: model.StatusCancelled,
		Actor:  callerID,
		Notes:  reason,
		Metadata: map[string]string{
			"canceler_type": model.CancelerClient,
		},
	})
	s.publisher.Publish(ctx, events.TypeGigCancelled, gig.ID, map[string]string{
		"gig_id":        gig.ID,
		"cancelled_by":  callerID,
		"canceler_type": model.CancelerClient,
	})

	return s.getGig(ctx, gig.ID)
}

func (s *GigService) cancelByMusician(ctx context.Context, gig *model.Gig, callerID, reason string) (*model.Gig, error) {
	if gig.PaymentStatus == model.PaymentPaid {
		return nil, apperrors.Conflict("cannot cancel a gig with a finalized payment")
	}

	released := false
	var roleName string

	for i := range gig.BandCategory {
		if !contains(gig.BandCategory[i].BookedUsers, callerID) {
			continue
		}
		if err := s.repo.ReleaseRoleSlot(ctx, gig.ID, i, callerID); err != nil {
			if errors.Is(err, gigserrors.ErrConditionFailed) {
				continue
			}
			return nil, apperrors.Internal("failed to release role slot", err)
		}
		released = true
		roleName = gig.BandCategory[i].Role
	}

	if !released && contains(gig.BookedBy, callerID) {
		if err := s.repo.ReleaseRegularSlot(ctx, gig.ID, callerID); err != nil {
			if !errors.Is(err, gigserrors.ErrConditionFailed) {
				return nil, apperrors.Internal("failed to release booking", err)
			}
		} else {
			released = true
		}
	}

	if !released {
		return nil, apperrors.PermissionDenied("caller holds no seat on this gig")
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gig.ID,
		UserID: callerID,
		Status: model.StatusCancelled,
		Role:   roleName,
		Actor:  callerID,
		Notes:  reason,
		Metadata: map[string]string{
			"canceler_type": model.CancelerMusician,
		},
	})
	s.publisher.Publish(ctx, events.TypeGigCancelled, gig.ID, map[string]string{
		"gig_id":        gig.ID,
		"cancelled_by":  callerID,
		"canceler_type": model.CancelerMusician,
	})

	return s.getGig(ctx, gig.ID)
}

// Complete marks a paid gig finished. Owner only.
func (s *GigService) Complete(ctx context.Context, gigID, callerID string) (*model.Gig, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != callerID {
		return nil, apperrors.PermissionDenied("only the gig owner can complete the gig")
	}

	if err := s.repo.MarkCompleted(ctx, gigID); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			if gig.PaymentStatus != model.PaymentPaid {
				return nil, apperrors.Conflict("payment must be finalized before completion")
			}
			return nil, apperrors.Conflict("gig is no longer active")
		}
		return nil, apperrors.Internal("failed to complete gig", err)
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gigID,
		UserID: callerID,
		Status: model.StatusCompleted,
		Actor:  callerID,
		Notes:  "gig completed",
	})

	return s.getGig(ctx, gigID)
}

// History returns the gig's audit trail, newest first.
func (s *GigService) History(ctx context.Context, gigID string, limit int, offset int64) ([]*model.BookingHistoryEntry, int64, error) {
	if _, err := s.getGig(ctx, gigID); err != nil {
		return nil, 0, err
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg         sync.WaitGroup
		entries    []*model.BookingHistoryEntry
		total      int64
		findErr    error
		countError error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		entries, findErr = s.ledger.History(ctx, gigID, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countError = s.ledger.CountByGig(ctx, gigID)
	}()
	wg.Wait()

	if findErr != nil {
		return nil, 0, apperrors.Internal("failed to load booking history", findErr)
	}
	if countError != nil {
		return nil, 0, apperrors.Internal("failed to count booking history", countError)
	}
	return entries, total, nil
}

// UserGigs is a user's gigs grouped by their relationship to each.
type UserGigs struct {
	Owned       []*model.Gig `json:"owned"`
	Interested  []*model.Gig `json:"interested"`
	Applied     []*model.Gig `json:"applied"`
	Shortlisted []*model.Gig `json:"shortlisted"`
	Booked      []*model.Gig `json:"booked"`
}

// GetUserGigs fans out the owner and participant queries in parallel and
// buckets the participant results by how the user touches each gig. A gig
// can appear in several buckets.
func (s *GigService) GetUserGigs(ctx context.Context, userID string, limit int, offset int64) (*UserGigs, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg             sync.WaitGroup
		owned          []*model.Gig
		participating  []*model.Gig
		ownedErr       error
		participateErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		owned, ownedErr = s.repo.FindByOwner(ctx, userID, limit, offset)
	}()
	go func() {
		defer wg.Done()
		participating, participateErr = s.repo.FindByParticipant(ctx, userID, limit, offset)
	}()
	wg.Wait()

	if ownedErr != nil {
		return nil, apperrors.Internal("failed to load owned gigs", ownedErr)
	}
	if participateErr != nil {
		return nil, apperrors.Internal("failed to load participating gigs", participateErr)
	}

	result := &UserGigs{Owned: owned}
	for _, gig := range participating {
		if contains(gig.InterestedUsers, userID) {
			result.Interested = append(result.Interested, gig)
		}
		if contains(gig.AppliedUsers, userID) {
			result.Applied = append(result.Applied, gig)
		}
		if contains(gig.ShortlistedUsers, userID) {
			result.Shortlisted = append(result.Shortlisted, gig)
		}
		if isBooked(gig, userID) {
			result.Booked = append(result.Booked, gig)
		}
	}
	return result, nil
}

// UserApplications is the musician-side view: every gig the user touches,
// sliced by relationship. Gigs that left the active pool (completed or
// cancelled) land in History instead of the relationship buckets.
type UserApplications struct {
	All         []*model.Gig `json:"all"`
	Interested  []*model.Gig `json:"interested"`
	Applied     []*model.Gig `json:"applied"`
	Shortlisted []*model.Gig `json:"shortlisted"`
	History     []*model.Gig `json:"history"`
}

// GetUserApplications buckets the user's participating gigs. A gig can
// appear under several relationship buckets but never in both a
// relationship bucket and History.
func (s *GigService) GetUserApplications(ctx context.Context, userID string, limit int, offset int64) (*UserApplications, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	participating, err := s.repo.FindByParticipant(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("failed to load user applications", err)
	}

	result := &UserApplications{All: participating}
	for _, gig := range participating {
		if !gig.IsActive {
			result.History = append(result.History, gig)
			continue
		}
		if contains(gig.InterestedUsers, userID) {
			result.Interested = append(result.Interested, gig)
		}
		if contains(gig.AppliedUsers, userID) {
			result.Applied = append(result.Applied, gig)
		}
		if contains(gig.ShortlistedUsers, userID) {
			result.Shortlisted = append(result.Shortlisted, gig)
		}
	}
	return result, nil
}

func isBooked(gig *model.Gig, userID string) bool {
	if contains(gig.BookedBy, userID) {
		return true
	}
	for i := range gig.BandCategory {
		if contains(gig.BandCategory[i].BookedUsers, userID) {
			return true
		}
	}
	return false
}
