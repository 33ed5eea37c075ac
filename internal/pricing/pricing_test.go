package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var platformRates = Rates{ConvenienceFee: 0.05, Tax: 0.18}

func TestComputeBreakdown_PlatformRates(t *testing.T) {
	b := ComputeBreakdown(100, 3, platformRates)

	assert.Equal(t, 300.00, b.Subtotal)
	assert.Equal(t, 15.00, b.ConvenienceFee)
	// Tax applies on the fee-inclusive amount: 315.00 * 0.18.
	assert.Equal(t, 56.70, b.Tax)
	assert.Equal(t, 371.70, b.Total)
}

func TestComputeBreakdown_Deterministic(t *testing.T) {
	first := ComputeBreakdown(249.99, 7, platformRates)
	second := ComputeBreakdown(249.99, 7, platformRates)
	assert.Equal(t, first, second)
}

func TestComputeBreakdown_RoundsHalfUp(t *testing.T) {
	// 33.33 * 1 = 33.33, fee = 1.6665 -> 1.67 (half rounds up).
	b := ComputeBreakdown(33.33, 1, platformRates)
	assert.Equal(t, 33.33, b.Subtotal)
	assert.Equal(t, 1.67, b.ConvenienceFee)
}

func TestComputeBreakdown_RoundsOutputsNotIntermediates(t *testing.T) {
	b := ComputeBreakdown(10.006, 1, Rates{ConvenienceFee: 0.1, Tax: 0.1})
	// subtotal 10.006 -> 10.01 reported, fee 1.0006 -> 1.00 reported,
	// tax on the unrounded 11.0066 -> 1.10066 -> 1.10, total 12.10726 -> 12.11.
	assert.Equal(t, 10.01, b.Subtotal)
	assert.Equal(t, 1.00, b.ConvenienceFee)
	assert.Equal(t, 1.10, b.Tax)
	assert.Equal(t, 12.11, b.Total)
}

func TestComputeBreakdown_ZeroQuantity(t *testing.T) {
	b := ComputeBreakdown(100, 0, platformRates)
	assert.Equal(t, Breakdown{}, b)
}

func TestComputeBreakdown_ZeroRates(t *testing.T) {
	b := ComputeBreakdown(50, 2, Rates{})
	assert.Equal(t, 100.00, b.Subtotal)
	assert.Equal(t, 0.00, b.ConvenienceFee)
	assert.Equal(t, 0.00, b.Tax)
	assert.Equal(t, 100.00, b.Total)
}

func TestComputeBreakdown_FreeTickets(t *testing.T) {
	b := ComputeBreakdown(0, 4, platformRates)
	assert.Equal(t, 0.00, b.Total)
}
