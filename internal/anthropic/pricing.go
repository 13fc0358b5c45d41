package anthropic

import (
	"strings"

	"github.com/gerunddev/git-auto-commit/internal/log"
)

// price is USD per million tokens.
type price struct {
	input  float64
	output float64
}

// prices is keyed by model family; IDs are matched by substring.
var prices = []struct {
	family string
	price  price
}{
	{"haiku-4", price{input: 1, output: 5}},
	{"haiku", price{input: 0.8, output: 4}},
	{"sonnet", price{input: 3, output: 15}},
	{"opus-4-5", price{input: 5, output: 25}},
	{"opus", price{input: 15, output: 75}},
}

// Cost estimates the USD cost of a call. Unknown models cost zero.
func Cost(model string, inputTokens, outputTokens int) float64 {
	for _, p := range prices {
		if strings.Contains(model, p.family) {
			return (float64(inputTokens)*p.price.input + float64(outputTokens)*p.price.output) / 1_000_000
		}
	}
	log.Debug("no price for model", "model", model)
	return 0
}
