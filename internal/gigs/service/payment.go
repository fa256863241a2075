package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	gigserrors "gigstage/internal/gigs/errors"
	"gigstage/internal/gigs/events"
	apperrors "gigstage/pkg/errors"
	"gigstage/pkg/model"
	"gigstage/pkg/sealer"
)

// ConfirmPaymentRequest is one party's provisional confirmation payload.
type ConfirmPaymentRequest struct {
	Code     string                 `json:"code" validate:"required,min=4,max=64"`
	Evidence *model.PaymentEvidence `json:"evidence,omitempty"`
}

// ConfirmPayment records one party's provisional payment confirmation. The
// caller's side of the handshake is derived from their relationship to the
// gig, never from the request body. Re-confirming before finalization
// replaces the caller's own confirmation.
func (s *GigService) ConfirmPayment(ctx context.Context, gigID, callerID string, req *ConfirmPaymentRequest) (*model.Gig, error) {
	if req == nil || req.Code == "" {
		return nil, apperrors.InvalidInput("confirmation code is required")
	}

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}

	party, err := paymentParty(gig, callerID)
	if err != nil {
		return nil, err
	}
	if gig.PaymentStatus == model.PaymentPaid {
		return nil, apperrors.Conflict("payment is already finalized")
	}

	confirmation := &model.PaymentConfirmation{
		Code:             req.Code,
		ConfirmedAt:      time.Now().UTC().Truncate(time.Millisecond),
		TemporaryConfirm: true,
		Evidence:         req.Evidence,
	}
	s.enrichEvidence(ctx, gigID, confirmation.Evidence)

	if err := s.repo.SetConfirmation(ctx, gigID, party, confirmation); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			fresh, getErr := s.getGig(ctx, gigID)
			if getErr != nil {
				return nil, getErr
			}
			if fresh.PaymentStatus != model.PaymentPending {
				return nil, apperrors.Conflict("payment is already finalized")
			}
			return nil, apperrors.Conflict("gig state changed, retry the request")
		}
		return nil, apperrors.Internal("failed to record payment confirmation", err)
	}

	s.appendHistory(ctx, &model.BookingHistoryEntry{
		GigID:  gigID,
		UserID: callerID,
		Status: model.StatusPending,
		Actor:  callerID,
		Notes:  fmt.Sprintf("payment confirmed by %s", party),
	})

	return s.getGig(ctx, gigID)
}

// enrichEvidence runs the OCR collaborator over an uploaded screenshot and
// attaches whatever it recognized. Strictly advisory: extraction failures
// are logged and the confirmation proceeds without extracted data.
func (s *GigService) enrichEvidence(ctx context.Context, gigID string, evidence *model.PaymentEvidence) {
	if evidence == nil || evidence.ScreenshotURL == "" || s.ocr == nil {
		return
	}

	extracted, err := s.ocr.Extract(ctx, evidence.ScreenshotURL)
	if err != nil {
		s.cfg.Log.Warn("OCR extraction failed",
			"gig_id", gigID,
			"screenshot_url", evidence.ScreenshotURL,
			"error", err,
		)
		return
	}
	evidence.Extracted = extracted
}

// FinalizePayment settles the handshake. It succeeds only when both parties
// hold a provisional confirmation; repeating it after success is a no-op
// that reports the already-paid gig. An optional note lands in the audit
// trail entry.
func (s *GigService) FinalizePayment(ctx context.Context, gigID, callerID, note string) (*model.Gig, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if _, err := paymentParty(gig, callerID); err != nil {
		return nil, err
	}

	if err := s.repo.Finalize(ctx, gigID, callerID); err != nil {
		if errors.Is(err, gigserrors.ErrConditionFailed) {
			return s.classifyFinalizeFailure(ctx, gigID)
		}
		return nil, apperrors.Internal("failed to finalize payment", err)
	}

	notes := "payment finalized"
	if note != "" {
		notes = note
	}
	entry := &model.BookingHistoryEntry{
		GigID:  gigID,
		UserID: callerID,
		Status: model.StatusCompleted,
		Actor:  callerID,
		Notes:  notes,
	}
	if receipt, tokenErr := sealer.CreateReceiptToken(gigID, callerID); tokenErr == nil {
		entry.Metadata = map[string]string{"receipt": receipt}
	} else {
		s.cfg.Log.Error("Failed to seal payment receipt", "gig_id", gigID, "error", tokenErr)
	}
	s.appendHistory(ctx, entry)
	s.publisher.Publish(ctx, events.TypePaymentFinalized, gigID, map[string]string{
		"gig_id":       gigID,
		"finalized_by": callerID,
	})

	return s.getGig(ctx, gigID)
}

// classifyFinalizeFailure decides whether a non-matching finalize was an
// idempotent repeat (already paid, success) or a premature call (one or both
// provisional confirms missing).
func (s *GigService) classifyFinalizeFailure(ctx context.Context, gigID string) (*model.Gig, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.PaymentStatus == model.PaymentPaid {
		return gig, nil
	}

	missing := missingConfirmations(gig)
	if missing != "" {
		return nil, apperrors.IncompleteConfirmation(missing)
	}
	return nil, apperrors.Conflict("gig state changed, retry the request")
}

func missingConfirmations(gig *model.Gig) string {
	clientOK := gig.ClientConfirmPayment != nil && gig.ClientConfirmPayment.TemporaryConfirm
	musicianOK := gig.MusicianConfirmPayment != nil && gig.MusicianConfirmPayment.TemporaryConfirm

	switch {
	case !clientOK && !musicianOK:
		return "client,musician"
	case !clientOK:
		return "client"
	case !musicianOK:
		return "musician"
	}
	return ""
}

// paymentParty maps the caller to their side of the handshake: the gig
// owner confirms as client, a seated musician as musician. Anyone else is
// rejected.
func paymentParty(gig *model.Gig, callerID string) (string, error) {
	if gig.OwnerID == callerID {
		return model.PartyClient, nil
	}
	if contains(gig.BookedBy, callerID) {
		return model.PartyMusician, nil
	}
	for i := range gig.BandCategory {
		if contains(gig.BandCategory[i].BookedUsers, callerID) {
			return model.PartyMusician, nil
		}
	}
	return "", apperrors.Unauthorized("caller is not a party to this gig's payment")
}

// CompareEvidence runs the advisory evidence comparator over both parties'
// submissions. The result never gates finalization; mismatches feed the
// dispute dashboard.
func (s *GigService) CompareEvidence(ctx context.Context, gigID, callerID string) (*model.ComparisonResult, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if _, err := paymentParty(gig, callerID); err != nil {
		return nil, err
	}

	result := &model.ComparisonResult{Match: true}

	clientEv := evidenceOf(gig.ClientConfirmPayment)
	musicianEv := evidenceOf(gig.MusicianConfirmPayment)
	if clientEv == nil || musicianEv == nil {
		result.Warnings = append(result.Warnings, "evidence missing from one or both parties")
		return result, nil
	}

	compareEvidence(clientEv, musicianEv, result)
	s.checkConfidence(clientEv, "client", result)
	s.checkConfidence(musicianEv, "musician", result)

	result.Match = len(result.Reasons) == 0
	return result, nil
}

func evidenceOf(c *model.PaymentConfirmation) *model.PaymentEvidence {
	if c == nil {
		return nil
	}
	return c.Evidence
}

func compareEvidence(client, musician *model.PaymentEvidence, result *model.ComparisonResult) {
	// Effective values: what the party declared, falling back to what OCR
	// read off their screenshot.
	cAmount, cTxn := effectiveAmountAndTxn(client)
	mAmount, mTxn := effectiveAmountAndTxn(musician)

	if cAmount > 0 && mAmount > 0 && math.Abs(cAmount-mAmount) > 0.01 {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("amount mismatch: client %.2f vs musician %.2f", cAmount, mAmount))
	}
	if client.Method != "" && musician.Method != "" && client.Method != musician.Method {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("payment method mismatch: %s vs %s", client.Method, musician.Method))
	}
	if cTxn != "" && mTxn != "" && cTxn != mTxn {
		result.Reasons = append(result.Reasons, "transaction id mismatch")
	}
}

func effectiveAmountAndTxn(ev *model.PaymentEvidence) (float64, string) {
	amount := ev.Amount
	txn := ev.TransactionID
	if ev.Extracted != nil {
		if amount == 0 {
			amount = ev.Extracted.Amount
		}
		if txn == "" {
			txn = ev.Extracted.TransactionID
		}
	}
	return amount, txn
}

func (s *GigService) checkConfidence(ev *model.PaymentEvidence, party string, result *model.ComparisonResult) {
	if ev.Extracted == nil {
		return
	}
	if ev.Extracted.Confidence < float64(s.cfg.OCRMinConfidence) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("low ocr confidence (%.0f) on %s evidence", ev.Extracted.Confidence, party))
	}
}
