package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	c := NewCostCalculator()

	// command-r-plus: $2.50/M input, $10.00/M output
	got := c.CalculateCost("command-r-plus", 1_000_000, 100_000)
	assert.InDelta(t, 2.50+1.00, got, 1e-9)

	// Model lookup is case insensitive
	assert.Equal(t, got, c.CalculateCost("Command-R-Plus", 1_000_000, 100_000))

	// Zero tokens cost nothing
	assert.Equal(t, 0.0, c.CalculateCost("gpt-4o", 0, 0))
}

func TestCalculateCostPrefixFallback(t *testing.T) {
	c := NewCostCalculator()

	// Dated model variants fall back to the family price
	dated := c.CalculateCost("command-r-plus-08-2024", 1_000_000, 0)
	assert.InDelta(t, 2.50, dated, 1e-9)

	mini := c.CalculateCost("gpt-4o-mini-2024-07-18", 1_000_000, 0)
	assert.InDelta(t, 0.15, mini, 1e-9)
}

func TestCalculateCostUnknownModel(t *testing.T) {
	c := NewCostCalculator()
	assert.Equal(t, 0.0, c.CalculateCost("some-local-model", 1_000_000, 1_000_000))
}

func TestSetPrice(t *testing.T) {
	c := NewCostCalculator()
	c.SetPrice("my-model", PricingModel{InputPrice: 1.00, OutputPrice: 2.00})

	got := c.CalculateCost("my-model", 500_000, 500_000)
	assert.InDelta(t, 0.50+1.00, got, 1e-9)
}
