package trust

import (
	"time"

	"gigstage/pkg/model"

	gocache "github.com/patrickmn/go-cache"
)

// CachedScorer memoizes trust scores for a short TTL. Scores are derived
// from profile fields that change rarely relative to how often the
// allocator gates on them, so a few minutes of staleness is acceptable.
type CachedScorer struct {
	cache *gocache.Cache
}

func NewCachedScorer(ttl time.Duration) *CachedScorer {
	return &CachedScorer{
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *CachedScorer) Score(user *model.User) int {
	if user == nil {
		return 0
	}
	// Bans must take effect immediately, never from cache.
	if user.IsBanned {
		s.cache.Delete(user.ID)
		return 0
	}

	if cached, found := s.cache.Get(user.ID); found {
		if score, ok := cached.(int); ok {
			return score
		}
	}

	score := Score(user)
	s.cache.Set(user.ID, score, gocache.DefaultExpiration)
	return score
}

// Invalidate drops a user's cached score, for callers that just mutated
// profile state feeding the score.
func (s *CachedScorer) Invalidate(userID string) {
	s.cache.Delete(userID)
}
