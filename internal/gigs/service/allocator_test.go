package service

import (
	"context"
	"sync"
	"testing"

	apperrors "gigstage/pkg/errors"
	"gigstage/pkg/model"
)

func TestBookRole_Success(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "Guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1, Price: 150},
		model.BandRole{Role: "drums", MaxSlots: 1},
	))

	booked, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "musician-1", 0)
	if err != nil {
		t.Fatalf("BookRole failed: %v", err)
	}

	role := booked.BandCategory[0]
	if role.FilledSlots != 1 {
		t.Errorf("FilledSlots = %d, want 1", role.FilledSlots)
	}
	if !containsStr(role.BookedUsers, "musician-1") {
		t.Errorf("BookedUsers = %v, want musician-1", role.BookedUsers)
	}
	if role.BookedPrice != 150 {
		t.Errorf("BookedPrice = %.2f, want role price 150", role.BookedPrice)
	}
	if booked.IsTaken {
		t.Error("gig marked taken with an open drums seat")
	}

	entries, _ := env.ledger.Replay(context.Background(), gig.ID)
	if len(entries) != 1 || entries[0].Status != model.StatusBooked {
		t.Errorf("ledger entries = %+v, want one booked entry", entries)
	}
}

func TestBookRole_MarksTakenWhenAllRolesFull(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	booked, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "musician-1", 0)
	if err != nil {
		t.Fatalf("BookRole failed: %v", err)
	}
	if !booked.IsTaken {
		t.Error("gig not marked taken after last role filled")
	}
}

// Two musicians race for the last guitar seat. Exactly one wins; the loser
// gets the machine-parseable ROLE_FULL error with the final counts.
func TestBookRole_ConcurrentLastSeat(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")
	env.identity.users["musician-2"] = trustedMusician("musician-2", "guitar")

	// The open drums seat keeps the gig-level taken flag off, so the loser
	// always classifies as ROLE_FULL rather than GIG_ALREADY_TAKEN.
	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
		model.BandRole{Role: "drums", MaxSlots: 1},
	))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, userID := range []string{"musician-1", "musician-2"} {
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = env.svc.BookRole(context.Background(), gig.ID, "guitar", userID, 0)
		}(i, userID)
	}
	wg.Wait()

	var wins, roleFull int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.HasCode(err, apperrors.CodeRoleFull):
			roleFull++
			if msg := apperrors.AsAppError(err).Message; msg != "ROLE_FULL:guitar:1:1" {
				t.Errorf("loser message = %q, want ROLE_FULL:guitar:1:1", msg)
			}
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || roleFull != 1 {
		t.Fatalf("wins = %d, roleFull = %d, want exactly one of each", wins, roleFull)
	}

	final, _ := env.store.FindByID(context.Background(), gig.ID)
	if final.BandCategory[0].FilledSlots != 1 || len(final.BandCategory[0].BookedUsers) != 1 {
		t.Errorf("final role state = %+v, seat was double-booked", final.BandCategory[0])
	}
}

func TestBookRole_NotQualified(t *testing.T) {
	env := newTestEnv()
	env.identity.users["drummer-1"] = trustedMusician("drummer-1", "drums")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	_, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "drummer-1", 0)
	if !apperrors.HasCode(err, apperrors.CodeNotQualified) {
		t.Fatalf("err = %v, want NOT_QUALIFIED", err)
	}
}

func TestBookRole_LowTrustScore(t *testing.T) {
	env := newTestEnv()
	// Bare profile: no verification, no activity, well under the threshold.
	env.identity.users["newbie-1"] = &model.User{ID: "newbie-1", Instrument: "guitar"}

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	_, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "newbie-1", 0)
	if !apperrors.HasCode(err, apperrors.CodeNotQualified) {
		t.Fatalf("err = %v, want NOT_QUALIFIED for low trust score", err)
	}
}

func TestBookRole_UnknownUserAndGig(t *testing.T) {
	env := newTestEnv()
	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	if _, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "ghost", 0); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown user err = %v, want NOT_FOUND", err)
	}
	if _, err := env.svc.BookRole(context.Background(), "missing", "guitar", "ghost", 0); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown gig err = %v, want NOT_FOUND", err)
	}
}

func TestBookRole_UnknownRole(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	_, err := env.svc.BookRole(context.Background(), gig.ID, "keytar", "musician-1", 0)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND for unknown role", err)
	}
}

func TestBookRole_DoubleBookingSameGig(t *testing.T) {
	env := newTestEnv()
	user := trustedMusician("multi-1", "guitar")
	user.RoleType = "drums"
	env.identity.users["multi-1"] = user

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
		model.BandRole{Role: "drums", MaxSlots: 1},
	))

	if _, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "multi-1", 0); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	_, err := env.svc.BookRole(context.Background(), gig.ID, "drums", "multi-1", 0)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("err = %v, want CONFLICT for second seat on same gig", err)
	}
}

func TestBookRole_OwnGig(t *testing.T) {
	env := newTestEnv()
	env.identity.users["owner-1"] = trustedMusician("owner-1", "guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	_, err := env.svc.BookRole(context.Background(), gig.ID, "guitar", "owner-1", 0)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want PERMISSION_DENIED for owner booking own gig", err)
	}

	fresh, _ := env.store.FindByID(context.Background(), gig.ID)
	if fresh.BandCategory[0].FilledSlots != 0 {
		t.Error("owner booking consumed a seat")
	}
}

func TestMarkTaken_RetriesAfterVersionMiss(t *testing.T) {
	env := newTestEnv()

	gig := env.store.put(bandGig("owner-1", model.BandRole{
		Role:        "guitar",
		MaxSlots:    1,
		FilledSlots: 1,
		BookedUsers: []string{"musician-1"},
	}))

	snapshot, err := env.store.FindByID(context.Background(), gig.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	// An unrelated write moves the version after the snapshot was taken, so
	// the first guarded flip misses.
	if err := env.store.update(gig.ID, func(g *model.Gig) bool {
		g.Version++
		return true
	}); err != nil {
		t.Fatalf("version bump failed: %v", err)
	}

	env.svc.maybeMarkTaken(context.Background(), snapshot)

	if !snapshot.IsTaken {
		t.Error("snapshot not updated after retried flip")
	}
	fresh, _ := env.store.FindByID(context.Background(), gig.ID)
	if !fresh.IsTaken {
		t.Error("fully booked gig left untaken after version miss")
	}
}

func TestExpressInterest(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")

	gig := env.store.put(regularGig("owner-1", 1))

	if err := env.svc.ExpressInterest(context.Background(), gig.ID, "musician-1"); err != nil {
		t.Fatalf("ExpressInterest failed: %v", err)
	}

	err := env.svc.ExpressInterest(context.Background(), gig.ID, "musician-1")
	if !apperrors.HasCode(err, apperrors.CodeAlreadyInterested) {
		t.Errorf("repeat err = %v, want ALREADY_INTERESTED", err)
	}
}

func TestExpressInterest_BandGigNotSupported(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	err := env.svc.ExpressInterest(context.Background(), gig.ID, "musician-1")
	if !apperrors.HasCode(err, apperrors.CodeBandGigNotSupported) {
		t.Fatalf("err = %v, want BAND_GIG_NOT_SUPPORTED", err)
	}
}

func TestRemoveInterest_NotInterested(t *testing.T) {
	env := newTestEnv()
	gig := env.store.put(regularGig("owner-1", 1))

	err := env.svc.RemoveInterest(context.Background(), gig.ID, "musician-1", "")
	if !apperrors.HasCode(err, apperrors.CodeNotInterested) {
		t.Fatalf("err = %v, want NOT_INTERESTED", err)
	}
}

func TestRemoveInterest_ReasonInAuditTrail(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")
	ctx := context.Background()

	gig := env.store.put(regularGig("owner-1", 1))
	if err := env.svc.ExpressInterest(ctx, gig.ID, "musician-1"); err != nil {
		t.Fatalf("ExpressInterest failed: %v", err)
	}

	if err := env.svc.RemoveInterest(ctx, gig.ID, "musician-1", "double booked that night"); err != nil {
		t.Fatalf("RemoveInterest failed: %v", err)
	}

	entries, err := env.ledger.Replay(ctx, gig.ID)
	if err != nil || len(entries) == 0 {
		t.Fatalf("Replay = %v entries, err %v, want withdrawal entry", len(entries), err)
	}
	last := entries[len(entries)-1]
	if last.Notes != "double booked that night" {
		t.Errorf("Notes = %q, want the withdrawal reason", last.Notes)
	}
	if last.Metadata["action"] != "interest_removed" {
		t.Errorf("Metadata = %v, want action interest_removed", last.Metadata)
	}
}

func TestApplyToRole(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	if err := env.svc.ApplyToRole(context.Background(), gig.ID, "guitar", "musician-1"); err != nil {
		t.Fatalf("ApplyToRole failed: %v", err)
	}

	fresh, _ := env.store.FindByID(context.Background(), gig.ID)
	if fresh.BandCategory[0].FilledSlots != 0 {
		t.Error("applying consumed a seat")
	}
	if !containsStr(fresh.BandCategory[0].Applicants, "musician-1") {
		t.Error("applicant not recorded on role")
	}
	if !containsStr(fresh.AppliedUsers, "musician-1") {
		t.Error("applicant not recorded on gig")
	}

	err := env.svc.ApplyToRole(context.Background(), gig.ID, "guitar", "musician-1")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("repeat application err = %v, want CONFLICT", err)
	}
}

func TestBookRegularGig(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")
	env.identity.users["musician-2"] = trustedMusician("musician-2", "drums")

	gig := env.store.put(regularGig("owner-1", 1))

	booked, err := env.svc.BookRegularGig(context.Background(), gig.ID, "musician-1")
	if err != nil {
		t.Fatalf("BookRegularGig failed: %v", err)
	}
	if !booked.IsTaken {
		t.Error("single-seat gig not marked taken after booking")
	}

	_, err = env.svc.BookRegularGig(context.Background(), gig.ID, "musician-2")
	if !apperrors.HasCode(err, apperrors.CodeGigAlreadyTaken) {
		t.Errorf("second booking err = %v, want GIG_ALREADY_TAKEN", err)
	}
}

func TestBookRegularGig_OwnGig(t *testing.T) {
	env := newTestEnv()
	gig := env.store.put(regularGig("owner-1", 1))

	_, err := env.svc.BookRegularGig(context.Background(), gig.ID, "owner-1")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want PERMISSION_DENIED", err)
	}
}

func TestBookRegularGig_BandGig(t *testing.T) {
	env := newTestEnv()
	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 1},
	))

	_, err := env.svc.BookRegularGig(context.Background(), gig.ID, "musician-1")
	if !apperrors.HasCode(err, apperrors.CodeBandGigNotSupported) {
		t.Fatalf("err = %v, want BAND_GIG_NOT_SUPPORTED", err)
	}
}

func TestShortlistApplicant(t *testing.T) {
	env := newTestEnv()
	env.identity.users["musician-1"] = trustedMusician("musician-1", "guitar")

	gig := env.store.put(bandGig("owner-1",
		model.BandRole{Role: "guitar", MaxSlots: 2},
	))

	if err := env.svc.ApplyToRole(context.Background(), gig.ID, "guitar", "musician-1"); err != nil {
		t.Fatalf("ApplyToRole failed: %v", err)
	}

	if err := env.svc.ShortlistApplicant(context.Background(), gig.ID, "owner-1", "musician-1"); err != nil {
		t.Fatalf("ShortlistApplicant failed: %v", err)
	}

	err := env.svc.ShortlistApplicant(context.Background(), gig.ID, "intruder", "musician-1")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("non-owner err = %v, want PERMISSION_DENIED", err)
	}

	err = env.svc.ShortlistApplicant(context.Background(), gig.ID, "owner-1", "never-applied")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("non-applicant err = %v, want CONFLICT", err)
	}
}
