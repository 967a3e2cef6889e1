// pricing.go

package main

import "strings"

// Price tiers. Each material and size option in the catalog carries one of
// these; the multiplier tables below govern checkout totals.

type MaterialTier string

const (
	MaterialStandard MaterialTier = "standard"
	MaterialPremium  MaterialTier = "premium"
)

func (t MaterialTier) Multiplier() float64 {
	if t == MaterialPremium {
		return 1.2
	}
	return 1.0
}

func (t MaterialTier) Valid() bool {
	return t == MaterialStandard || t == MaterialPremium
}

type SizeTier string

const (
	SizeSmall  SizeTier = "small"
	SizeMedium SizeTier = "medium"
	SizeLarge  SizeTier = "large"
)

func (t SizeTier) Multiplier() float64 {
	switch t {
	case SizeMedium:
		return 1.3
	case SizeLarge:
		return 1.5
	}
	return 1.0
}

func (t SizeTier) Valid() bool {
	return t == SizeSmall || t == SizeMedium || t == SizeLarge
}

// Price computes the unit price for a configured product. Pure; modifiers
// compose multiplicatively.
func Price(basePrice float64, material MaterialTier, size SizeTier) float64 {
	return basePrice * material.Multiplier() * size.Multiplier()
}

// MaterialTierFromLabel classifies a bare display label. This is the ingestion
// path only, used when seeding or when an admin creates an option without an
// explicit tier; priced items read the tier stored on the catalog entry.
func MaterialTierFromLabel(label string) MaterialTier {
	if strings.Contains(label, "Premium") || strings.Contains(label, "5mm") {
		return MaterialPremium
	}
	return MaterialStandard
}

// SizeTierFromLabel classifies a bare size label. The dimension tokens match
// the catalog's stock size labels ("4x6 ft", "18x24 in", and so on).
func SizeTierFromLabel(label string) SizeTier {
	switch {
	case strings.Contains(label, "Medium"),
		strings.Contains(label, "4x6"),
		strings.Contains(label, "18x24"):
		return SizeMedium
	case strings.Contains(label, "Large"),
		strings.Contains(label, "5x8"),
		strings.Contains(label, "24x36"):
		return SizeLarge
	}
	return SizeSmall
}

// PriceForLabels prices from display labels via the classifiers.
func PriceForLabels(basePrice float64, material, size string) float64 {
	return Price(basePrice, MaterialTierFromLabel(material), SizeTierFromLabel(size))
}
