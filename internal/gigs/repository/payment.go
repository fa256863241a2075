package repository

import (
	"context"

	"gigstage/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

// PaymentWriter persists the two-party confirmation handshake. The two
// parties write disjoint fields, so their provisional confirms need no
// mutual exclusion; only Finalize carries an atomicity requirement.
type PaymentWriter interface {
	SetConfirmation(ctx context.Context, gigID, partyType string, confirmation *model.PaymentConfirmation) error
	Finalize(ctx context.Context, gigID, finalizedBy string) error
}

func confirmationField(partyType string) string {
	if partyType == model.PartyClient {
		return "client_confirm_payment"
	}
	return "musician_confirm_payment"
}

// SetConfirmation writes one party's provisional confirmation. Re-confirming
// before finalization overwrites the party's own slot (a corrected code or
// screenshot); once the payment is finalized the slot is frozen.
func (r *mongoGigRepository) SetConfirmation(ctx context.Context, gigID, partyType string, confirmation *model.PaymentConfirmation) error {
	filter := bson.M{
		"payment_status": model.PaymentPending,
	}
	update := bson.M{
		"$set": bson.M{
			confirmationField(partyType): confirmation,
			"updated_at":                 now(),
		},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}

// Finalize is the one-directional settle step. The filter demands both
// provisional confirms and a still-pending status, which makes the call
// idempotent under races: of two concurrent finalizations exactly one
// matches, and a repeat after success matches nothing and never re-stamps
// finalized_at.
func (r *mongoGigRepository) Finalize(ctx context.Context, gigID, finalizedBy string) error {
	ts := now()
	filter := bson.M{
		"payment_status": model.PaymentPending,
		"client_confirm_payment.temporary_confirm":   true,
		"musician_confirm_payment.temporary_confirm": true,
	}
	update := bson.M{
		"$set": bson.M{
			"payment_status": model.PaymentPaid,
			"finalized_by":   finalizedBy,
			"finalized_at":   ts,
			"client_confirm_payment.confirm_payment":   true,
			"client_confirm_payment.finalized_at":      ts,
			"musician_confirm_payment.confirm_payment": true,
			"musician_confirm_payment.finalized_at":    ts,
			"updated_at":                               ts,
		},
		"$inc": bson.M{"version": 1},
	}
	return r.slotUpdate(ctx, gigID, filter, update)
}
