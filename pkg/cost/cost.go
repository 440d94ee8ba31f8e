package cost

import (
	"strings"
	"sync"
)

// PricingModel defines the cost per 1M tokens (standard industry pricing unit)
type PricingModel struct {
	InputPrice  float64 // Cost per 1M input tokens
	OutputPrice float64 // Cost per 1M output tokens
}

// CostCalculator calculates estimated costs for LLM usage
type CostCalculator struct {
	mu     sync.RWMutex
	prices map[string]PricingModel
}

// NewCostCalculator creates a new calculator with default pricing
func NewCostCalculator() *CostCalculator {
	c := &CostCalculator{
		prices: make(map[string]PricingModel),
	}
	c.loadDefaults()
	return c
}

// CalculateCost returns the estimated cost in USD
func (c *CostCalculator) CalculateCost(model string, promptTokens, completionTokens int) float64 {
	modelLower := strings.ToLower(model)

	c.mu.RLock()
	price, ok := c.prices[modelLower]
	if !ok {
		// Unknown model: try common prefixes, otherwise report 0
		price = PricingModel{0, 0}

		switch {
		case strings.HasPrefix(modelLower, "gpt-4o-mini"):
			price = c.prices["gpt-4o-mini"]
		case strings.HasPrefix(modelLower, "gpt-4"):
			price = c.prices["gpt-4o"]
		case strings.HasPrefix(modelLower, "command-r-plus"):
			price = c.prices["command-r-plus"]
		case strings.HasPrefix(modelLower, "command-r"):
			price = c.prices["command-r"]
		case strings.HasPrefix(modelLower, "command"):
			price = c.prices["command-r"]
		}
	}
	c.mu.RUnlock()

	inputCost := (float64(promptTokens) / 1_000_000.0) * price.InputPrice
	outputCost := (float64(completionTokens) / 1_000_000.0) * price.OutputPrice

	return inputCost + outputCost
}

// SetPrice registers or overrides the pricing for a model.
func (c *CostCalculator) SetPrice(model string, price PricingModel) {
	c.mu.Lock()
	c.prices[strings.ToLower(model)] = price
	c.mu.Unlock()
}

// loadDefaults loads standard pricing for the providers used for extraction
func (c *CostCalculator) loadDefaults() {
	// Cohere
	c.prices["command-r-plus"] = PricingModel{InputPrice: 2.50, OutputPrice: 10.00}
	c.prices["command-r"] = PricingModel{InputPrice: 0.15, OutputPrice: 0.60}
	c.prices["command-r7b"] = PricingModel{InputPrice: 0.0375, OutputPrice: 0.15}
	c.prices["command-a"] = PricingModel{InputPrice: 2.50, OutputPrice: 10.00}

	// OpenAI
	c.prices["gpt-4o"] = PricingModel{InputPrice: 2.50, OutputPrice: 10.00}
	c.prices["gpt-4o-mini"] = PricingModel{InputPrice: 0.15, OutputPrice: 0.60}
	c.prices["gpt-4-turbo"] = PricingModel{InputPrice: 10.00, OutputPrice: 30.00}
	c.prices["gpt-3.5-turbo"] = PricingModel{InputPrice: 0.50, OutputPrice: 1.50}

	// OpenAI embeddings (output tokens do not apply)
	c.prices["text-embedding-3-small"] = PricingModel{InputPrice: 0.02, OutputPrice: 0}
	c.prices["text-embedding-3-large"] = PricingModel{InputPrice: 0.13, OutputPrice: 0}

	// Default/Fallback mappings
	c.prices["gpt-4"] = c.prices["gpt-4o"]
	c.prices["unknown"] = PricingModel{0, 0}
}
