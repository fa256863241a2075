package service

import (
	"context"
	"errors"

	gigserrors "gigstage/internal/gigs/errors"
	"gigstage/internal/gigs/events"
	"gigstage/internal/gigs/repository"
	"gigstage/internal/gigs/validator"
	"gigstage/internal/ocr"
	"gigstage/internal/trust"
	"gigstage/pkg/config"
	apperrors "gigstage/pkg/errors"
	"gigstage/pkg/model"
	"gigstage/pkg/sanitizer"
)

// IdentityProvider resolves user profiles. Satisfied by client.IdentityClient
// in production and by a stub in tests.
type IdentityProvider interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// GigService owns every state transition of a gig: lifecycle, slot
// allocation, and the payment handshake. Repository writes are conditional
// updates; when one matches nothing the service re-fetches the document to
// decide which domain error the caller actually hit.
type GigService struct {
	repo      repository.GigRepository
	ledger    repository.LedgerRepository
	locks     repository.SlotLockRepository
	identity  IdentityProvider
	scorer    *trust.CachedScorer
	ocr       ocr.Recognizer
	publisher events.Publisher
	validator *validator.GigValidator
	cfg       *config.Config
}

func NewGigService(
	repo repository.GigRepository,
	ledger repository.LedgerRepository,
	locks repository.SlotLockRepository,
	identity IdentityProvider,
	recognizer ocr.Recognizer,
	publisher events.Publisher,
	v *validator.GigValidator,
	cfg *config.Config,
) *GigService {
	return &GigService{
		repo:      repo,
		ledger:    ledger,
		locks:     locks,
		identity:  identity,
		scorer:    trust.NewCachedScorer(cfg.TrustScoreCacheTTL),
		ocr:       recognizer,
		publisher: publisher,
		validator: v,
		cfg:       cfg,
	}
}

// getGig maps repository sentinels to the API error taxonomy.
func (s *GigService) getGig(ctx context.Context, gigID string) (*model.Gig, error) {
	gig, err := s.repo.FindByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, gigserrors.ErrNotFound) || errors.Is(err, gigserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("gig", gigID)
		}
		return nil, apperrors.Internal("failed to load gig", err)
	}
	return gig, nil
}

// getUser resolves a profile or returns NOT_FOUND when the identity
// provider has never heard of the user.
func (s *GigService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("identity lookup timed out")
		}
		return nil, apperrors.Unavailable("identity service")
	}
	if user == nil {
		return nil, apperrors.NotFoundWithID("user", userID)
	}
	return user, nil
}

// appendHistory records an audit entry after the state change committed.
// Failures are logged, never surfaced: the booking already happened and the
// caller must see its real result.
func (s *GigService) appendHistory(ctx context.Context, entry *model.BookingHistoryEntry) {
	if err := s.ledger.Append(ctx, entry); err != nil {
		s.cfg.Log.Error("Failed to append booking history",
			"gig_id", entry.GigID,
			"user_id", entry.UserID,
			"status", entry.Status,
			"error", err,
		)
	}
}

// roleIndex finds a role by its normalized name. Returns -1 when absent.
func roleIndex(gig *model.Gig, roleName string) int {
	want := sanitizer.NormalizeRole(roleName)
	for i := range gig.BandCategory {
		if sanitizer.NormalizeRole(gig.BandCategory[i].Role) == want {
			return i
		}
	}
	return -1
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
