package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	// Sao Paulo -> Rio de Janeiro, roughly 360km
	d := Haversine(-23.5505, -46.6333, -22.9068, -43.1729)
	assert.InDelta(t, 360, d, 15)

	// Same point
	assert.InDelta(t, 0, Haversine(10, 10, 10, 10), 1e-9)
}

func TestGeoScoreBeyondRadiusIsZero(t *testing.T) {
	assert.Equal(t, 0.0, GeoScore(51, 50, 25))
}

func TestGeoScoreDecays(t *testing.T) {
	near := GeoScore(1, 50, 25)
	far := GeoScore(40, 50, 25)
	assert.Greater(t, near, far)
	assert.Greater(t, far, 0.0)
	assert.LessOrEqual(t, near, 1.0)
}
