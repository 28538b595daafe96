package config

import "strings"

// Pricing is the list price of a model in USD per million tokens.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// PricingTable covers the catalog models. Ollama and plugin models are free
// or unknown and are absent.
var PricingTable = map[string]Pricing{
	"gpt-4o":       {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":  {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4":        {InputPer1M: 30.00, OutputPer1M: 60.00},
	"gpt-5":        {InputPer1M: 1.25, OutputPer1M: 10.00},
	"o3":           {InputPer1M: 2.00, OutputPer1M: 8.00},
	"o3-pro":       {InputPer1M: 20.00, OutputPer1M: 80.00},
	"o4-mini":      {InputPer1M: 1.10, OutputPer1M: 4.40},
	"o4-mini-high": {InputPer1M: 1.10, OutputPer1M: 4.40},

	"claude-3-opus-20240229":   {InputPer1M: 15.00, OutputPer1M: 75.00},
	"claude-3-sonnet-20240229": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-haiku-20240307":  {InputPer1M: 0.25, OutputPer1M: 1.25},
	"claude-2.1":               {InputPer1M: 8.00, OutputPer1M: 24.00},
	"claude-2.0":               {InputPer1M: 8.00, OutputPer1M: 24.00},

	"gemini-1.5-pro":   {InputPer1M: 1.25, OutputPer1M: 5.00},
	"gemini-1.5-flash": {InputPer1M: 0.075, OutputPer1M: 0.30},
	"gemini-1.0-pro":   {InputPer1M: 0.50, OutputPer1M: 1.50},
}

// LookupPricing finds a model's pricing. Names returned by provider APIs
// ("models/gemini-1.5-pro", "gpt-4o-2024-08-06") fall back to the longest
// catalog name they start with.
func LookupPricing(model string) (Pricing, bool) {
	model = strings.TrimPrefix(strings.ToLower(model), "models/")
	if p, ok := PricingTable[model]; ok {
		return p, true
	}
	best := ""
	for name := range PricingTable {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return Pricing{}, false
	}
	return PricingTable[best], true
}

// EstimateCost returns the USD cost of a call, or 0 for unpriced models.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := LookupPricing(model)
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000*p.InputPer1M + float64(outputTokens)/1_000_000*p.OutputPer1M
}
