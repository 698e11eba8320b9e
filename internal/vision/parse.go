package vision

import (
	"github.com/vbonduro/fridgechef/internal/ingredient"
)

// ParseResponse parses the model's comma-separated answer into ingredient
// names using the same rule as manual entry.
func ParseResponse(raw string) []string {
	return ingredient.ParseList(raw)
}
