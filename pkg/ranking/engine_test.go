package ranking

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCase() *Case {
	return &Case{
		Id:               uuid.New(),
		Area:             "labor",
		Subarea:          "wrongful termination",
		UrgencyHours:     72,
		Latitude:         -23.55,
		Longitude:        -46.63,
		Complexity:       "medium",
		SummaryEmbedding: []float32{0.6, 0.8, 0},
	}
}

func testLawyer(seed int) *Lawyer {
	return &Lawyer{
		Id:            uuid.New(),
		ExpertiseTags: []string{"labor", "wrongful termination"},
		Latitude:      -23.56,
		Longitude:     -46.64,
		KPI: LawyerKPI{
			SuccessRate: 0.5 + float64(seed%5)*0.1,
			OpenCases:   seed % 3,
			Capacity:    10,
		},
		SoftSkillScore:     0.7,
		QualificationScore: 0.8,
		FirmReputation:     0.6,
		PriceLevel:         3,
		YearsActive:        5,
		EngagementScore:    0.5,
		Languages:          []string{"pt", "en"},
		EventsAttended:     4,
		ReviewAverage:      4.2,
		Exposure:           0.5,
		ProfileEmbedding:   []float32{0.6, 0.8, 0},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("balanced", 50, 25, 0.03)
	require.NoError(t, err)
	return e
}

func TestRankOrderedAndBounded(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()

	candidates := make([]*Lawyer, 0, 10)
	for i := 0; i < 10; i++ {
		candidates = append(candidates, testLawyer(i))
	}

	matches, err := e.Rank(c, candidates, Request{TopN: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 5)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].FairScore, matches[i].FairScore,
			"output must be non-increasing by fair score")
	}

	for _, m := range matches {
		assert.Len(t, m.FeatureBreakdown, 13)
		assert.Equal(t, "balanced", m.PresetUsed)
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	e := newTestEngine(t)
	matches, err := e.Rank(testCase(), nil, Request{TopN: 10})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRankInvalidCase(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()
	c.SummaryEmbedding = nil

	_, err := e.Rank(c, []*Lawyer{testLawyer(1)}, Request{TopN: 10})
	assert.ErrorIs(t, err, ErrInvalidCase)
}

func TestRankExcludesIds(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()

	top := testLawyer(4)
	top.KPI.SuccessRate = 0.99
	top.Exposure = 0
	other := testLawyer(1)

	matches, err := e.Rank(c, []*Lawyer{top, other}, Request{TopN: 10})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, top.Id, matches[0].LawyerId)

	// Re-rank excluding the previous winner
	matches, err = e.Rank(c, []*Lawyer{top, other}, Request{TopN: 10, ExcludeIds: []uuid.UUID{top.Id}})
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, top.Id, m.LawyerId)
	}
}

func TestRankBeyondRadiusGetsZeroGeoScore(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()

	far := testLawyer(2)
	far.Latitude = -30.0 // several hundred km away
	far.Longitude = -51.0

	matches, err := e.Rank(c, []*Lawyer{far}, Request{TopN: 10, RadiusKm: 50})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0.0, matches[0].FeatureBreakdown[FeatureGeo])
}

func TestRankDeterministicTieBreak(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()

	a := testLawyer(1)
	b := testLawyer(1)
	b.Latitude = a.Latitude
	b.Longitude = a.Longitude
	b.KPI = a.KPI

	run := func() []uuid.UUID {
		matches, err := e.Rank(c, []*Lawyer{a, b}, Request{TopN: 10})
		require.NoError(t, err)
		ids := make([]uuid.UUID, len(matches))
		for i, m := range matches {
			ids[i] = m.LawyerId
		}
		return ids
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run(), "identical inputs must rank identically")
	}
}

func TestEquityBoostIsBounded(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()

	strong := testLawyer(4)
	strong.KPI.SuccessRate = 0.95
	strong.Exposure = 1.0 // fully exposed, no boost

	weak := testLawyer(0)
	weak.KPI.SuccessRate = 0.10
	weak.Exposure = 0.0 // maximum boost

	matches, err := e.Rank(c, []*Lawyer{strong, weak}, Request{TopN: 10})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, m := range matches {
		assert.LessOrEqual(t, m.EquityScore, 0.03+1e-9)
		assert.GreaterOrEqual(t, m.EquityScore, 0.0)
		assert.InDelta(t, m.RawScore+m.EquityScore, m.FairScore, 1e-9)
	}

	// A large raw gap cannot be inverted by the bounded boost
	assert.Equal(t, strong.Id, matches[0].LawyerId)
}

func TestRankOverridesArea(t *testing.T) {
	e := newTestEngine(t)
	c := testCase()

	l := testLawyer(1)
	l.ExpertiseTags = []string{"tax"}

	matches, err := e.Rank(c, []*Lawyer{l}, Request{TopN: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, matches[0].FeatureBreakdown[FeatureArea])

	matches, err = e.Rank(c, []*Lawyer{l}, Request{TopN: 1, AreaOverride: "tax", SubareaOverride: "tax"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, matches[0].FeatureBreakdown[FeatureArea])
}

func TestComputeFeaturesAllWithinUnitRange(t *testing.T) {
	c := testCase()
	for i := 0; i < 5; i++ {
		fv := ComputeFeatures(c, testLawyer(i), 50, 25)
		for _, s := range Symbols {
			v, ok := fv[s]
			require.True(t, ok, fmt.Sprintf("missing feature %s", s))
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestTrackRecordPrefersSubareaKPI(t *testing.T) {
	c := testCase()
	l := testLawyer(1)
	l.KPI.SuccessRate = 0.4
	l.KPIBySubarea = map[string]float64{"wrongful termination": 0.9}

	fv := ComputeFeatures(c, l, 50, 25)
	assert.InDelta(t, 0.9, fv[FeatureTrackRecord], 1e-9)
}
