package domain

import "fmt"

// RiskTier is the classification assigned to an asset. The zero value is RiskLow.
type RiskTier int

const (
	RiskLow RiskTier = iota
	RiskMedium
	RiskHigh
)

// RiskTiers lists every tier from lowest to highest.
var RiskTiers = []RiskTier{RiskLow, RiskMedium, RiskHigh}

func (r RiskTier) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return fmt.Sprintf("RiskTier(%d)", int(r))
	}
}

// MarshalText encodes the tier by name so JSON and Kafka headers stay readable.
func (r RiskTier) MarshalText() ([]byte, error) {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("invalid risk tier %d", int(r))
	}
}

// UnmarshalText decodes a tier name produced by MarshalText.
func (r *RiskTier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*r = RiskLow
	case "medium":
		*r = RiskMedium
	case "high":
		*r = RiskHigh
	default:
		return fmt.Errorf("unknown risk tier %q", text)
	}
	return nil
}

// Classify assigns a risk tier to each asset from the location key of its
// Location field:
//   - High when the key is in both highOccurrence and highMagnitude
//   - Medium when it is in exactly one of them
//   - Low otherwise, including assets with no resolvable key
//
// The result has the same length and order as assets. Nil sets are valid.
func Classify(highOccurrence, highMagnitude map[string]struct{}, assets []Asset) []ClassifiedAsset {
	out := make([]ClassifiedAsset, len(assets))
	for i, a := range assets {
		out[i] = ClassifiedAsset{Asset: a, Risk: assessRisk(highOccurrence, highMagnitude, a)}
	}
	return out
}

func assessRisk(highOccurrence, highMagnitude map[string]struct{}, asset Asset) RiskTier {
	key := LocationKey(asset.Location)
	if key == "" {
		return RiskLow
	}

	_, occ := highOccurrence[key]
	_, mag := highMagnitude[key]
	switch {
	case occ && mag:
		return RiskHigh
	case occ || mag:
		return RiskMedium
	default:
		return RiskLow
	}
}
