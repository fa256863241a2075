package model

import "time"

// Party types for the two-phase payment handshake.
const (
	PartyClient   = "client"
	PartyMusician = "musician"
)

// PaymentConfirmation is one party's half of the payment handshake.
// TemporaryConfirm is the provisional claim; ConfirmPayment is only set by
// the finalize step and never unset afterwards.
type PaymentConfirmation struct {
	Code             string           `json:"code" bson:"code"`
	ConfirmedAt      time.Time        `json:"confirmed_at" bson:"confirmed_at"`
	TemporaryConfirm bool             `json:"temporary_confirm" bson:"temporary_confirm"`
	ConfirmPayment   bool             `json:"confirm_payment" bson:"confirm_payment"`
	FinalizedAt      *time.Time       `json:"finalized_at,omitempty" bson:"finalized_at,omitempty"`
	Evidence         *PaymentEvidence `json:"evidence,omitempty" bson:"evidence,omitempty"`
}

// PaymentEvidence is what one party submitted alongside its confirmation:
// the uploaded screenshot plus whatever the OCR collaborator extracted from
// it. Extracted may be nil when recognition failed.
type PaymentEvidence struct {
	ScreenshotURL string                `json:"screenshot_url,omitempty" bson:"screenshot_url,omitempty"`
	Amount        float64               `json:"amount,omitempty" bson:"amount,omitempty"`
	Method        string                `json:"method,omitempty" bson:"method,omitempty"`
	TransactionID string                `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	Extracted     *ExtractedPaymentData `json:"extracted,omitempty" bson:"extracted,omitempty"`
}

// ExtractedPaymentData is the opaque OCR result. Confidence is 0-100.
type ExtractedPaymentData struct {
	TransactionID string  `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	Amount        float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Date          string  `json:"date,omitempty" bson:"date,omitempty"`
	Time          string  `json:"time,omitempty" bson:"time,omitempty"`
	PhoneNumber   string  `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Confidence    float64 `json:"confidence" bson:"confidence"`
}

// ComparisonResult is the advisory output of the evidence comparator.
// It never gates finalization; it is surfaced to the dispute dashboard.
type ComparisonResult struct {
	Match    bool     `json:"match"`
	Reasons  []string `json:"reasons,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
