package enums

import "fmt"

// PriceBand is the coarse price indicator shown on a business listing.
type PriceBand string

const (
	PriceBandBudget   PriceBand = "$"
	PriceBandModerate PriceBand = "$$"
	PriceBandPricey   PriceBand = "$$$"
	PriceBandLuxury   PriceBand = "$$$$"
)

var validPriceBands = []PriceBand{
	PriceBandBudget,
	PriceBandModerate,
	PriceBandPricey,
	PriceBandLuxury,
}

func (p PriceBand) String() string {
	return string(p)
}

// IsValid reports whether the band is part of the closed vocabulary.
func (p PriceBand) IsValid() bool {
	for _, candidate := range validPriceBands {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceBand converts raw input into a PriceBand.
func ParsePriceBand(value string) (PriceBand, error) {
	for _, candidate := range validPriceBands {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price band %q", value)
}
