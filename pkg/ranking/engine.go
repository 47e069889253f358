package ranking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidCase is returned when ranking is invoked on a case without a
// usable summary embedding.
var ErrInvalidCase = errors.New("case has no usable embedding")

// Request carries the per-run parameters for one ranking pass.
type Request struct {
	TopN            int
	Preset          string
	AreaOverride    string
	SubareaOverride string
	RadiusKm        float64
	ExcludeIds      []uuid.UUID
}

// Match is one ranked candidate with the full per-feature breakdown for
// explainability.
type Match struct {
	LawyerId         uuid.UUID     `json:"lawyer_id"`
	FairScore        float64       `json:"fair_score"`
	EquityScore      float64       `json:"equity_score"`
	RawScore         float64       `json:"raw_score"`
	FeatureBreakdown FeatureVector `json:"feature_breakdown"`
	WeightsUsed      Weights       `json:"weights_used"`
	PresetUsed       string        `json:"preset_used"`
}

// Engine ranks candidate lawyers for a case. Stateless besides config.
type Engine struct {
	defaultPreset   string
	defaultRadiusKm float64
	decayKm         float64
	maxEquityDelta  float64
}

// NewEngine builds a ranking engine. maxEquityDelta bounds how far the
// equity boost may move a fair score above the raw score.
func NewEngine(defaultPreset string, defaultRadiusKm, decayKm, maxEquityDelta float64) (*Engine, error) {
	if _, err := PresetByName(defaultPreset); err != nil {
		return nil, fmt.Errorf("default preset: %w", err)
	}
	if maxEquityDelta < 0 || maxEquityDelta > 0.05 {
		maxEquityDelta = 0.05
	}
	return &Engine{
		defaultPreset:   defaultPreset,
		defaultRadiusKm: defaultRadiusKm,
		decayKm:         decayKm,
		maxEquityDelta:  maxEquityDelta,
	}, nil
}

// Rank produces a descending-ordered list of matches. An empty candidate set
// is a valid empty result, never an error.
func (e *Engine) Rank(c *Case, candidates []*Lawyer, req Request) ([]Match, error) {
	if c == nil || len(c.SummaryEmbedding) == 0 {
		return nil, ErrInvalidCase
	}

	presetName := req.Preset
	if presetName == "" {
		presetName = e.defaultPreset
	}
	weights, err := PresetByName(presetName)
	if err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", presetName, err)
	}

	// Overrides apply to a copy; the triaged case stays immutable.
	scored := *c
	if req.AreaOverride != "" {
		scored.Area = req.AreaOverride
	}
	if req.SubareaOverride != "" {
		scored.Subarea = req.SubareaOverride
	}

	radius := req.RadiusKm
	if radius <= 0 {
		radius = e.defaultRadiusKm
	}

	excluded := make(map[uuid.UUID]struct{}, len(req.ExcludeIds))
	for _, id := range req.ExcludeIds {
		excluded[id] = struct{}{}
	}

	matches := make([]Match, 0, len(candidates))
	for _, lawyer := range candidates {
		if lawyer == nil {
			continue
		}
		if _, skip := excluded[lawyer.Id]; skip {
			continue
		}

		fv := ComputeFeatures(&scored, lawyer, radius, e.decayKm)
		raw := fv.WeightedScore(weights)
		equity := e.equityBoost(lawyer)

		matches = append(matches, Match{
			LawyerId:         lawyer.Id,
			FairScore:        raw + equity,
			EquityScore:      equity,
			RawScore:         raw,
			FeatureBreakdown: fv,
			WeightsUsed:      weights,
			PresetUsed:       presetName,
		})
	}

	// Descending by fair score; ties broken by lawyer id for determinism.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].FairScore != matches[j].FairScore {
			return matches[i].FairScore > matches[j].FairScore
		}
		return strings.Compare(matches[i].LawyerId.String(), matches[j].LawyerId.String()) < 0
	})

	if req.TopN > 0 && len(matches) > req.TopN {
		matches = matches[:req.TopN]
	}
	return matches, nil
}

// equityBoost gives under-exposed lawyers a bounded lift. The bound keeps
// strict quality ordering intact for any pair whose raw gap exceeds the delta.
func (e *Engine) equityBoost(l *Lawyer) float64 {
	exposure := clamp01(l.Exposure)
	return e.maxEquityDelta * (1 - exposure)
}
