package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	gigserrors "gigstage/internal/gigs/errors"
	"gigstage/internal/gigs/events"
	"gigstage/internal/gigs/repository"
	"gigstage/internal/gigs/validator"
	"gigstage/internal/ocr"
	"gigstage/pkg/config"
	"gigstage/pkg/logger"
	"gigstage/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// memStore is an in-memory GigRepository with the same conditional-update
// semantics as the Mongo implementation: every writer re-validates its
// precondition under one lock and reports ErrConditionFailed on a miss.
type memStore struct {
	mu     sync.Mutex
	gigs   map[string]*model.Gig
	nextID int
}

func newMemStore() *memStore {
	return &memStore{gigs: map[string]*model.Gig{}}
}

func (s *memStore) put(gig *model.Gig) *model.Gig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gig.ID == "" {
		s.nextID++
		gig.ID = fmt.Sprintf("gig-%d", s.nextID)
	}
	s.gigs[gig.ID] = copyGig(gig)
	return gig
}

func copyGig(g *model.Gig) *model.Gig {
	out := *g
	out.BandCategory = make([]model.BandRole, len(g.BandCategory))
	for i, role := range g.BandCategory {
		role.Applicants = append([]string(nil), role.Applicants...)
		role.BookedUsers = append([]string(nil), role.BookedUsers...)
		role.RequiredSkills = append([]string(nil), role.RequiredSkills...)
		out.BandCategory[i] = role
	}
	out.BookedBy = append([]string(nil), g.BookedBy...)
	out.InterestedUsers = append([]string(nil), g.InterestedUsers...)
	out.AppliedUsers = append([]string(nil), g.AppliedUsers...)
	out.ShortlistedUsers = append([]string(nil), g.ShortlistedUsers...)
	if g.ClientConfirmPayment != nil {
		c := *g.ClientConfirmPayment
		out.ClientConfirmPayment = &c
	}
	if g.MusicianConfirmPayment != nil {
		c := *g.MusicianConfirmPayment
		out.MusicianConfirmPayment = &c
	}
	return &out
}

func (s *memStore) Create(_ context.Context, gig *model.Gig) error {
	now := time.Now()
	gig.CreatedAt = now
	gig.UpdatedAt = now
	s.put(gig)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*model.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gig, ok := s.gigs[id]
	if !ok {
		return nil, gigserrors.ErrNotFound
	}
	return copyGig(gig), nil
}

func (s *memStore) FindByOwner(_ context.Context, ownerID string, _ int, _ int64) ([]*model.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Gig
	for _, gig := range s.gigs {
		if gig.OwnerID == ownerID {
			out = append(out, copyGig(gig))
		}
	}
	return out, nil
}

func (s *memStore) FindByParticipant(_ context.Context, userID string, _ int, _ int64) ([]*model.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Gig
	for _, gig := range s.gigs {
		touched := containsStr(gig.InterestedUsers, userID) ||
			containsStr(gig.AppliedUsers, userID) ||
			containsStr(gig.ShortlistedUsers, userID) ||
			containsStr(gig.BookedBy, userID)
		for i := range gig.BandCategory {
			if containsStr(gig.BandCategory[i].Applicants, userID) ||
				containsStr(gig.BandCategory[i].BookedUsers, userID) {
				touched = true
			}
		}
		if touched {
			out = append(out, copyGig(gig))
		}
	}
	return out, nil
}

// update runs fn against the live document under the store lock. fn returns
// false to signal the filter did not match.
func (s *memStore) update(id string, fn func(g *model.Gig) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gig, ok := s.gigs[id]
	if !ok {
		return gigserrors.ErrConditionFailed
	}
	if !fn(gig) {
		return gigserrors.ErrConditionFailed
	}
	gig.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) UpdateDetails(_ context.Context, id string, in *model.Gig) error {
	return s.update(id, func(g *model.Gig) bool {
		if g.IsTaken || !g.IsActive {
			return false
		}
		g.Title = in.Title
		g.Description = in.Description
		g.MaxSlots = in.MaxSlots
		g.Version++
		return true
	})
}

func (s *memStore) Cancel(_ context.Context, id, cancelledBy, reason string) error {
	return s.update(id, func(g *model.Gig) bool {
		if !g.IsActive {
			return false
		}
		now := time.Now()
		g.IsActive = false
		g.CancelledAt = &now
		g.CancelledBy = cancelledBy
		g.CancellationReason = reason
		g.Version++
		return true
	})
}

func (s *memStore) MarkCompleted(_ context.Context, id string) error {
	return s.update(id, func(g *model.Gig) bool {
		if g.PaymentStatus != model.PaymentPaid || !g.IsActive {
			return false
		}
		g.IsActive = false
		g.IsPending = false
		g.Version++
		return true
	})
}

func (s *memStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.gigs)), nil
}

func (s *memStore) AddInterest(_ context.Context, gigID, userID string) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if !g.IsActive || g.IsClientBand || containsStr(g.InterestedUsers, userID) {
			return false
		}
		g.InterestedUsers = append(g.InterestedUsers, userID)
		g.Version++
		return true
	})
}

func (s *memStore) RemoveInterest(_ context.Context, gigID, userID string) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if !containsStr(g.InterestedUsers, userID) {
			return false
		}
		g.InterestedUsers = removeStr(g.InterestedUsers, userID)
		g.Version++
		return true
	})
}

func (s *memStore) AddRoleApplicant(_ context.Context, gigID string, roleIndex int, userID string, maxSlots int) error {
	return s.update(gigID, func(g *model.Gig) bool {
		role := &g.BandCategory[roleIndex]
		if !g.IsActive || role.FilledSlots >= maxSlots || containsStr(role.Applicants, userID) {
			return false
		}
		role.Applicants = append(role.Applicants, userID)
		if !containsStr(g.AppliedUsers, userID) {
			g.AppliedUsers = append(g.AppliedUsers, userID)
		}
		g.Version++
		return true
	})
}

func (s *memStore) BookRoleSlot(_ context.Context, gigID string, roleIndex int, userID string, maxSlots int, price float64) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if !g.IsActive {
			return false
		}
		for i := range g.BandCategory {
			if containsStr(g.BandCategory[i].BookedUsers, userID) {
				return false
			}
		}
		role := &g.BandCategory[roleIndex]
		if role.FilledSlots >= maxSlots {
			return false
		}
		role.BookedUsers = append(role.BookedUsers, userID)
		role.FilledSlots++
		if price > 0 {
			role.BookedPrice = price
		}
		g.Version++
		return true
	})
}

func (s *memStore) ReleaseRoleSlot(_ context.Context, gigID string, roleIndex int, userID string) error {
	return s.update(gigID, func(g *model.Gig) bool {
		role := &g.BandCategory[roleIndex]
		if !containsStr(role.BookedUsers, userID) || role.FilledSlots <= 0 {
			return false
		}
		role.BookedUsers = removeStr(role.BookedUsers, userID)
		role.FilledSlots--
		role.IsLocked = false
		g.IsTaken = false
		g.Version++
		return true
	})
}

func (s *memStore) SetRoleLocked(_ context.Context, gigID string, roleIndex int) error {
	return s.update(gigID, func(g *model.Gig) bool {
		role := &g.BandCategory[roleIndex]
		if role.IsLocked {
			return false
		}
		role.IsLocked = true
		return true
	})
}

func (s *memStore) MarkTaken(_ context.Context, gigID string, version int64) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if g.Version != version || g.IsTaken {
			return false
		}
		g.IsTaken = true
		g.Version++
		return true
	})
}

func (s *memStore) BookRegularSlot(_ context.Context, gigID, userID string, maxSlots int) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if !g.IsActive || g.IsClientBand || g.IsTaken {
			return false
		}
		if g.BookCount >= maxSlots || containsStr(g.BookedBy, userID) {
			return false
		}
		g.BookedBy = append(g.BookedBy, userID)
		g.BookCount++
		g.Version++
		return true
	})
}

func (s *memStore) ReleaseRegularSlot(_ context.Context, gigID, userID string) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if !containsStr(g.BookedBy, userID) || g.BookCount <= 0 {
			return false
		}
		g.BookedBy = removeStr(g.BookedBy, userID)
		g.BookCount--
		g.IsTaken = false
		g.Version++
		return true
	})
}

func (s *memStore) AddShortlist(_ context.Context, gigID, userID string) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if !containsStr(g.AppliedUsers, userID) || containsStr(g.ShortlistedUsers, userID) {
			return false
		}
		g.ShortlistedUsers = append(g.ShortlistedUsers, userID)
		g.Version++
		return true
	})
}

func (s *memStore) SetConfirmation(_ context.Context, gigID, partyType string, confirmation *model.PaymentConfirmation) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if g.PaymentStatus != model.PaymentPending {
			return false
		}
		c := *confirmation
		if partyType == model.PartyClient {
			g.ClientConfirmPayment = &c
		} else {
			g.MusicianConfirmPayment = &c
		}
		return true
	})
}

func (s *memStore) Finalize(_ context.Context, gigID, finalizedBy string) error {
	return s.update(gigID, func(g *model.Gig) bool {
		if g.PaymentStatus != model.PaymentPending {
			return false
		}
		if g.ClientConfirmPayment == nil || !g.ClientConfirmPayment.TemporaryConfirm {
			return false
		}
		if g.MusicianConfirmPayment == nil || !g.MusicianConfirmPayment.TemporaryConfirm {
			return false
		}
		now := time.Now()
		g.PaymentStatus = model.PaymentPaid
		g.FinalizedBy = finalizedBy
		g.FinalizedAt = &now
		g.ClientConfirmPayment.ConfirmPayment = true
		g.ClientConfirmPayment.FinalizedAt = &now
		g.MusicianConfirmPayment.ConfirmPayment = true
		g.MusicianConfirmPayment.FinalizedAt = &now
		g.Version++
		return true
	})
}

var _ repository.GigRepository = (*memStore)(nil)

type memLedger struct {
	mu      sync.Mutex
	entries []*model.BookingHistoryEntry
}

func (l *memLedger) Append(_ context.Context, entry *model.BookingHistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	e := *entry
	l.entries = append(l.entries, &e)
	return nil
}

func (l *memLedger) History(_ context.Context, gigID string, _ int, _ int64) ([]*model.BookingHistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.BookingHistoryEntry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].GigID == gigID {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}

func (l *memLedger) Replay(_ context.Context, gigID string) ([]*model.BookingHistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.BookingHistoryEntry
	for _, e := range l.entries {
		if e.GigID == gigID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memLedger) CountByGig(_ context.Context, gigID string) (int64, error) {
	entries, _ := l.Replay(context.Background(), gigID)
	return int64(len(entries)), nil
}

func (l *memLedger) StripDeprecatedField(_ context.Context, field string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var modified int64
	for _, e := range l.entries {
		if _, ok := e.Metadata[field]; ok {
			delete(e.Metadata, field)
			modified++
		}
	}
	return modified, nil
}

var _ repository.LedgerRepository = (*memLedger)(nil)

type memLocks struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newMemLocks() *memLocks {
	return &memLocks{locks: map[string]bool{}}
}

func (l *memLocks) Create(_ context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}
	l.locks[lock.ID] = true
	return lock, nil
}

func (l *memLocks) Delete(_ context.Context, lockID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, lockID)
	return nil
}

var _ repository.SlotLockRepository = (*memLocks)(nil)

type stubIdentity struct {
	users map[string]*model.User
	err   error
}

func (s *stubIdentity) GetUser(_ context.Context, userID string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[userID], nil
}

func testConfig() *config.Config {
	return &config.Config{
		MinTrustScore:      30,
		TrustScoreCacheTTL: time.Minute,
		SlotLockTTL:        10 * time.Second,
		OCRMinConfidence:   70,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Output: io.Discard,
		}),
	}
}

type testEnv struct {
	svc      *GigService
	store    *memStore
	ledger   *memLedger
	identity *stubIdentity
	ocr      *ocr.StaticRecognizer
}

func newTestEnv() *testEnv {
	cfg := testConfig()
	store := newMemStore()
	ledger := &memLedger{}
	identity := &stubIdentity{users: map[string]*model.User{}}
	recognizer := &ocr.StaticRecognizer{Results: map[string]*model.ExtractedPaymentData{}}

	svc := NewGigService(
		store,
		ledger,
		newMemLocks(),
		identity,
		recognizer,
		events.Noop{},
		validator.NewGigValidator(cfg.Log),
		cfg,
	)
	return &testEnv{svc: svc, store: store, ledger: ledger, identity: identity, ocr: recognizer}
}

// trustedMusician is a fully built-out profile that clears every trust gate.
func trustedMusician(id, instrument string) *model.User {
	return &model.User{
		ID:               id,
		Name:             "Sam Rivers",
		Bio:              "Session player",
		AvatarURL:        "https://cdn.example.com/avatar.png",
		Location:         "Austin",
		Instrument:       instrument,
		IDVerified:       true,
		EmailVerified:    true,
		CompletedGigs:    12,
		AvgRating:        4.8,
		ResponseRate:     0.95,
		HasPaymentMethod: true,
		ReviewCount:      7,
		FollowerCount:    1500,
	}
}

func bandGig(ownerID string, roles ...model.BandRole) *model.Gig {
	return &model.Gig{
		OwnerID:       ownerID,
		Title:         "Friday night set",
		IsClientBand:  true,
		BandCategory:  roles,
		IsActive:      true,
		PaymentStatus: model.PaymentPending,
	}
}

func regularGig(ownerID string, maxSlots int) *model.Gig {
	return &model.Gig{
		OwnerID:       ownerID,
		Title:         "Solo acoustic evening",
		MaxSlots:      maxSlots,
		IsActive:      true,
		PaymentStatus: model.PaymentPending,
	}
}

func containsStr(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func removeStr(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
