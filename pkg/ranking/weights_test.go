package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllPresetsSumToOne(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			w, err := PresetByName(name)
			require.NoError(t, err)
			require.NoError(t, w.Validate())

			var sum float64
			for _, s := range Symbols {
				sum += w[s]
			}
			assert.InDelta(t, 1.0, sum, 0.01)
		})
	}
}

func TestAllPresetsCoverAllSymbols(t *testing.T) {
	for _, name := range PresetNames() {
		w, err := PresetByName(name)
		require.NoError(t, err)
		assert.Len(t, w, 13)
		for _, s := range Symbols {
			_, ok := w[s]
			assert.True(t, ok, "preset %s missing symbol %s", name, s)
		}
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	w, err := PresetByName("balanced")
	require.NoError(t, err)

	w[FeatureArea] += 0.2
	assert.Error(t, w.Validate())

	delete(w, FeatureArea)
	assert.Error(t, w.Validate())
}

func TestPresetByNameUnknown(t *testing.T) {
	_, err := PresetByName("does-not-exist")
	assert.Error(t, err)
}

func TestPresetsAreImmutable(t *testing.T) {
	w1, err := PresetByName("balanced")
	require.NoError(t, err)
	w1[FeatureArea] = 0.99

	w2, err := PresetByName("balanced")
	require.NoError(t, err)
	assert.False(t, math.Abs(w2[FeatureArea]-0.99) < 1e-9, "mutating a returned preset must not affect the stored one")
}
