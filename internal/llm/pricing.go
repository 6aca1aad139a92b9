package llm

// Price is USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Cost returns the USD cost of one request.
func (p Price) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1e6
}

// PriceOf returns the list price for a model ID. Aliases are resolved
// first, so "gemini-flash" and "gemini-2.5-flash" price the same.
func PriceOf(model string) (Price, bool) {
	for _, aliases := range []map[string]string{geminiAliases, openaiAliases, anthropicAliases} {
		if id, ok := aliases[model]; ok {
			model = id
			break
		}
	}
	p, ok := prices[model]
	return p, ok
}

// prices covers the models reachable through the built-in aliases plus
// their common neighbours.
var prices = map[string]Price{
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-5-mini":   {0.25, 2},

	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-3-5-haiku-20241022":  {0.8, 4},
}
