package ranking

import (
	"fmt"
	"math"
	"sort"
)

// Feature symbols. Every preset must assign a weight to each of these.
const (
	FeatureArea          = "A" // expertise tag match against case area/subarea
	FeatureSemantic      = "S" // embedding similarity (profile + historical cases)
	FeatureTrackRecord   = "T" // success-rate KPI, subarea-specific when known
	FeatureGeo           = "G" // exponential decay on haversine distance
	FeatureQualification = "Q" // bar qualifications / certifications
	FeatureUrgency       = "U" // urgency vs. remaining capacity fit
	FeatureReview        = "R" // client review average
	FeatureCommunication = "C" // soft-skill score
	FeatureFirm          = "E" // firm reputation
	FeaturePrice         = "P" // price fit for the case complexity
	FeatureMaturity      = "M" // time active on the platform
	FeatureInteraction   = "I" // platform engagement
	FeatureLanguages     = "L" // languages and community events
)

// Symbols lists all 13 feature symbols in canonical order.
var Symbols = []string{
	FeatureArea, FeatureSemantic, FeatureTrackRecord, FeatureGeo,
	FeatureQualification, FeatureUrgency, FeatureReview, FeatureCommunication,
	FeatureFirm, FeaturePrice, FeatureMaturity, FeatureInteraction,
	FeatureLanguages,
}

// Weights maps feature symbols to their share of the composite score.
type Weights map[string]float64

const weightSumTolerance = 0.01

// Validate checks that all 13 symbols are present and the weights sum to 1
// within tolerance.
func (w Weights) Validate() error {
	var sum float64
	for _, s := range Symbols {
		v, ok := w[s]
		if !ok {
			return fmt.Errorf("weights missing feature %q", s)
		}
		if v < 0 {
			return fmt.Errorf("weight %q is negative: %f", s, v)
		}
		sum += v
	}
	if len(w) != len(Symbols) {
		return fmt.Errorf("weights contain unknown features (got %d entries)", len(w))
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %f, want 1.0 +/- %.2f", sum, weightSumTolerance)
	}
	return nil
}

// Clone returns a copy so presets stay immutable.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Named presets. Selected per request; "balanced" is the configurable default.
var presets = map[string]Weights{
	"balanced": {
		FeatureArea: 0.16, FeatureSemantic: 0.14, FeatureTrackRecord: 0.12,
		FeatureGeo: 0.10, FeatureQualification: 0.08, FeatureUrgency: 0.08,
		FeatureReview: 0.07, FeatureCommunication: 0.06, FeatureFirm: 0.05,
		FeaturePrice: 0.05, FeatureMaturity: 0.04, FeatureInteraction: 0.03,
		FeatureLanguages: 0.02,
	},
	"expertise": {
		FeatureArea: 0.24, FeatureSemantic: 0.20, FeatureTrackRecord: 0.16,
		FeatureGeo: 0.04, FeatureQualification: 0.12, FeatureUrgency: 0.04,
		FeatureReview: 0.05, FeatureCommunication: 0.04, FeatureFirm: 0.04,
		FeaturePrice: 0.02, FeatureMaturity: 0.02, FeatureInteraction: 0.02,
		FeatureLanguages: 0.01,
	},
	"proximity": {
		FeatureArea: 0.12, FeatureSemantic: 0.08, FeatureTrackRecord: 0.08,
		FeatureGeo: 0.30, FeatureQualification: 0.06, FeatureUrgency: 0.12,
		FeatureReview: 0.06, FeatureCommunication: 0.04, FeatureFirm: 0.03,
		FeaturePrice: 0.04, FeatureMaturity: 0.03, FeatureInteraction: 0.02,
		FeatureLanguages: 0.02,
	},
	"economy": {
		FeatureArea: 0.14, FeatureSemantic: 0.10, FeatureTrackRecord: 0.08,
		FeatureGeo: 0.08, FeatureQualification: 0.05, FeatureUrgency: 0.08,
		FeatureReview: 0.08, FeatureCommunication: 0.05, FeatureFirm: 0.03,
		FeaturePrice: 0.22, FeatureMaturity: 0.04, FeatureInteraction: 0.03,
		FeatureLanguages: 0.02,
	},
}

// PresetByName resolves a preset, returning a defensive copy.
func PresetByName(name string) (Weights, error) {
	w, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return w.Clone(), nil
}

// PresetNames returns all preset names sorted for stable listing.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
