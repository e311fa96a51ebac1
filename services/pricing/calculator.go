package pricing

import (
	"time"

	"academix/models"
	"academix/utils"
)

// Quote is the full pricing result for an order: what the user pays and how
// the academy/platform split is derived from it.
type Quote struct {
	Breakdown   models.PriceBreakdown
	Commission  models.Commission
	BatchAmount float64 // academy's gross share
	TotalAmount float64 // amount charged to the user
}

// Calculate computes the amount breakdown and commission split for booking
// `participants` seats in a batch under the given fee settings. Every
// sub-total is rounded to 2 decimals independently before summing so float
// error never compounds into the stored values.
func Calculate(batch models.BatchPricing, participants int, settings models.FeeSettings) (*Quote, error) {
	if participants <= 0 {
		return nil, utils.NewValidationError("INVALID_PARTICIPANTS", "participant count must be positive")
	}

	baseFee := batch.BasePrice
	if batch.DiscountedPrice > 0 {
		baseFee = batch.DiscountedPrice
	}

	admissionTotal := utils.Round2(batch.AdmissionFee * float64(participants))
	baseTotal := utils.Round2(baseFee * float64(participants))
	batchAmount := utils.Round2(admissionTotal + baseTotal)

	platformFee := utils.Round2(settings.PlatformFee)

	// GST applies only to the platform fee, never to the batch amount.
	gst := 0.0
	if settings.GSTEnabled {
		gst = utils.Round2(platformFee * settings.GSTPercent / 100)
	}

	total := utils.Round2(batchAmount + platformFee + gst)
	if total <= 0 {
		return nil, utils.NewValidationError("INVALID_AMOUNT", "order total must be positive")
	}

	rate := NormalizeRate(settings.CommissionRate)
	commissionAmount := utils.Round2(batchAmount * rate)
	payoutAmount := utils.ClampAmount(utils.Round2(batchAmount-commissionAmount), 0, batchAmount)

	return &Quote{
		Breakdown: models.PriceBreakdown{
			AdmissionFee:     admissionTotal,
			BaseFee:          baseTotal,
			PlatformFee:      platformFee,
			GST:              gst,
			Subtotal:         batchAmount,
			ParticipantCount: participants,
		},
		Commission: models.Commission{
			Rate:         rate,
			Amount:       commissionAmount,
			PayoutAmount: payoutAmount,
			CalculatedAt: time.Now(),
		},
		BatchAmount: batchAmount,
		TotalAmount: total,
	}, nil
}

// NormalizeRate converts the admin-configured commission setting to a [0,1]
// fraction. Settings store whole percentages (e.g. 10 meaning 10%), so values
// of 1 or more are divided by 100 before clamping.
func NormalizeRate(raw float64) float64 {
	rate := raw
	if rate >= 1 {
		rate = rate / 100
	}
	return utils.ClampAmount(rate, 0, 1)
}
