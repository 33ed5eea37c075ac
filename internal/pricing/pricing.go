// Package pricing computes the itemized cost breakdown for a ticket
// purchase.  The calculator is a pure function: it keeps no state,
// touches no storage and yields bit-identical output for identical
// input, so it is safe to call both for price quotes and at booking
// time.
package pricing

import "math"

// Rates holds the platform fee percentages applied on top of the ticket
// subtotal.  Values are fractions, not percents (0.05 = 5%).  Rates are
// loaded from the platform settings at call time rather than cached, so
// administrative changes take effect for new bookings without a restart.
type Rates struct {
	ConvenienceFee float64 `json:"convenience_fee_rate"`
	Tax            float64 `json:"tax_rate"`
}

// Breakdown is the itemized pricing result for a given unit price and
// quantity.  Each field is rounded independently to two decimal places;
// intermediate arithmetic is carried at full precision.
type Breakdown struct {
	Subtotal       float64 `json:"subtotal"`
	ConvenienceFee float64 `json:"convenience_fee"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

// ComputeBreakdown converts a unit price and quantity into a cost
// breakdown.  The convenience fee applies to the subtotal and the tax
// applies to the fee-inclusive amount.  Rounding (half-up, two decimals)
// happens only on the reported outputs, never on intermediate terms.
func ComputeBreakdown(unitPrice float64, quantity uint32, rates Rates) Breakdown {
	subtotal := unitPrice * float64(quantity)
	fee := subtotal * rates.ConvenienceFee
	tax := (subtotal + fee) * rates.Tax
	total := subtotal + fee + tax
	return Breakdown{
		Subtotal:       round2(subtotal),
		ConvenienceFee: round2(fee),
		Tax:            round2(tax),
		Total:          round2(total),
	}
}

// round2 rounds to two decimal places using round-half-up.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
