package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Redemption modes accepted by the redemption endpoint.
const (
	RedemptionModeFull    = "FULL"
	RedemptionModePartial = "PARTIAL"
)

// RedemptionInquiryResponse summarizes what a redemption would pay today.
// The inquiry is read-only: repeating it without intervening transactions
// returns identical figures.
type RedemptionInquiryResponse struct {
	AccountNumber       string          `json:"accountNumber"`
	RedemptionType      string          `json:"redemptionType"` // PREMATURE, ON_MATURITY or POST_MATURITY
	CurrentBalance      decimal.Decimal `json:"currentBalance"`
	InterestEarned      decimal.Decimal `json:"interestEarned"`
	TDSDeducted         decimal.Decimal `json:"tdsDeducted"`
	PenaltyAmount       decimal.Decimal `json:"penaltyAmount"`
	NetRedemptionAmount decimal.Decimal `json:"netRedemptionAmount"`
	MaturityDate        time.Time       `json:"maturityDate"`
	AsOfDate            time.Time       `json:"asOfDate"`
}

// RedemptionRequest defines the data for executing a redemption.
// Amount is required for PARTIAL mode and ignored for FULL.
type RedemptionRequest struct {
	Mode    string           `json:"mode" binding:"required,oneof=FULL PARTIAL"`
	Amount  *decimal.Decimal `json:"amount"`
	Remarks string           `json:"remarks"`
}

// RedemptionResult is the outcome of a committed redemption.
type RedemptionResult struct {
	Reference          string          `json:"reference"`
	AccountNumber      string          `json:"accountNumber"`
	Mode               string          `json:"mode"`
	AmountPaid         decimal.Decimal `json:"amountPaid"`
	RemainingPrincipal decimal.Decimal `json:"remainingPrincipal"`
	AccountStatus      string          `json:"accountStatus"`
}
