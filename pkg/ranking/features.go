package ranking

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Case is the ranking engine's read-only view of a triaged case.
type Case struct {
	Id               uuid.UUID
	Area             string
	Subarea          string
	UrgencyHours     int
	Latitude         float64
	Longitude        float64
	Complexity       string // "low" | "medium" | "high"
	SummaryEmbedding []float32
}

// LawyerKPI carries the operational indicators used by scoring.
type LawyerKPI struct {
	SuccessRate      float64 // overall, 0..1
	CasesClosed      int
	OpenCases        int
	Capacity         int // max concurrent cases
	AvgResponseHours float64
}

// Lawyer is the read-only candidate input. All fuzzy sub-inputs
// (qualification, reputation, engagement...) arrive pre-normalized to 0..1
// by the profile pipeline.
type Lawyer struct {
	Id                       uuid.UUID
	ExpertiseTags            []string
	Latitude                 float64
	Longitude                float64
	KPI                      LawyerKPI
	KPIBySubarea             map[string]float64 // success rate per subarea
	SoftSkillScore           float64
	QualificationScore       float64
	FirmReputation           float64
	PriceLevel               int // 1 (budget) .. 5 (premium)
	YearsActive              float64
	EngagementScore          float64
	Languages                []string
	EventsAttended           int
	ReviewAverage            float64 // 0..5
	Exposure                 float64 // 0..1, share of recent matches received
	ProfileEmbedding         []float32
	HistoricalCaseEmbeddings [][]float32
}

// FeatureVector holds the 13 normalized scores keyed by symbol.
type FeatureVector map[string]float64

// WeightedScore combines a vector with weights into the raw composite.
func (fv FeatureVector) WeightedScore(w Weights) float64 {
	var sum float64
	for _, s := range Symbols {
		sum += fv[s] * w[s]
	}
	return sum
}

// ComputeFeatures calculates all 13 feature scores for one lawyer. Pure
// function: same inputs always give the same vector.
func ComputeFeatures(c *Case, l *Lawyer, radiusKm, decayKm float64) FeatureVector {
	distance := Haversine(c.Latitude, c.Longitude, l.Latitude, l.Longitude)

	return FeatureVector{
		FeatureArea:          areaScore(c, l),
		FeatureSemantic:      semanticScore(c, l),
		FeatureTrackRecord:   trackRecordScore(c, l),
		FeatureGeo:           GeoScore(distance, radiusKm, decayKm),
		FeatureQualification: clamp01(l.QualificationScore),
		FeatureUrgency:       urgencyScore(c, l),
		FeatureReview:        clamp01(l.ReviewAverage / 5.0),
		FeatureCommunication: clamp01(l.SoftSkillScore),
		FeatureFirm:          clamp01(l.FirmReputation),
		FeaturePrice:         priceFitScore(c, l),
		FeatureMaturity:      maturityScore(l),
		FeatureInteraction:   clamp01(l.EngagementScore),
		FeatureLanguages:     languagesScore(l),
	}
}

// areaScore: exact subarea tag is a full match, area-level tag a partial one.
func areaScore(c *Case, l *Lawyer) float64 {
	area := normalizeTag(c.Area)
	subarea := normalizeTag(c.Subarea)

	var best float64
	for _, tag := range l.ExpertiseTags {
		t := normalizeTag(tag)
		if subarea != "" && t == subarea {
			return 1.0
		}
		if area != "" && t == area && best < 0.7 {
			best = 0.7
		}
	}
	return best
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// semanticScore blends profile similarity with the best historical case
// similarity. Historical wins count slightly more than the static profile.
func semanticScore(c *Case, l *Lawyer) float64 {
	if len(c.SummaryEmbedding) == 0 {
		return 0
	}

	profile := cosineSimilarity(c.SummaryEmbedding, l.ProfileEmbedding)

	var bestHist float64
	for _, emb := range l.HistoricalCaseEmbeddings {
		if sim := cosineSimilarity(c.SummaryEmbedding, emb); sim > bestHist {
			bestHist = sim
		}
	}

	if len(l.HistoricalCaseEmbeddings) == 0 {
		return clamp01(profile)
	}
	return clamp01(0.4*profile + 0.6*bestHist)
}

func trackRecordScore(c *Case, l *Lawyer) float64 {
	if rate, ok := l.KPIBySubarea[normalizeTag(c.Subarea)]; ok {
		return clamp01(rate)
	}
	return clamp01(l.KPI.SuccessRate)
}

// urgencyScore penalizes loaded lawyers harder when the case is urgent.
func urgencyScore(c *Case, l *Lawyer) float64 {
	capacity := l.KPI.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	load := float64(l.KPI.OpenCases) / float64(capacity)
	if load > 1 {
		load = 1
	}

	if c.UrgencyHours > 0 && c.UrgencyHours <= 24 {
		return clamp01(1 - load)
	}
	return clamp01(1 - 0.5*load)
}

// priceFitScore compares the lawyer's price level with the level the case
// complexity suggests. One level of distance is fine, more decays linearly.
func priceFitScore(c *Case, l *Lawyer) float64 {
	expected := 3
	switch c.Complexity {
	case "low":
		expected = 2
	case "high":
		expected = 4
	}

	level := l.PriceLevel
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}

	diff := math.Abs(float64(level - expected))
	return clamp01(1 - diff/4.0)
}

func maturityScore(l *Lawyer) float64 {
	if l.YearsActive <= 0 {
		return 0
	}
	return clamp01(1 - math.Exp(-l.YearsActive/4.0))
}

func languagesScore(l *Lawyer) float64 {
	langs := float64(len(l.Languages))
	events := float64(l.EventsAttended)
	return clamp01(0.6*math.Min(1, langs/3.0) + 0.4*math.Min(1, events/10.0))
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Map [-1,1] into [0,1] so a weighted sum stays monotonic
	return clamp01((sim + 1) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
