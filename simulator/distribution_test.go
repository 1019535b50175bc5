package simulator

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistributionRejectsInvalid(t *testing.T) {
	_, err := NewDistribution[string]()
	assert.ErrorIs(t, err, ErrEmptyDistribution)

	_, err = NewDistribution(Choice[string]{"a", 1}, Choice[string]{"b", 0})
	assert.Error(t, err)

	_, err = NewDistribution(Choice[int]{1, -2})
	assert.Error(t, err)

	assert.Panics(t, func() { MustDistribution[string]() })
}

func TestDistributionProbability(t *testing.T) {
	assert.InDelta(t, 0.05, CurrencyWeights.Probability(0), 1e-6)
	assert.InDelta(t, 0.55, CurrencyWeights.Probability(2), 1e-6)
	assert.InDelta(t, 95.0/97, StatusWeights.Probability(0), 1e-6)
	assert.InDelta(t, 20.0/24, VoucherWeights.Probability(0), 1e-6)
	assert.Equal(t, float64(0), StatusWeights.Probability(7))
	assert.Equal(t, 5, VoucherWeights.Len())
	assert.Equal(t, "", VoucherWeights.Value(0))
}

func TestDistributionPick(t *testing.T) {
	f := gofakeit.New(99)

	single, err := NewDistribution(Choice[string]{"only", 3})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		assert.Equal(t, "only", single.Pick(f))
	}

	d := MustDistribution(Choice[int]{1, 1}, Choice[int]{2, 3})
	counts := map[int]int{}
	const n = 8000
	for i := 0; i < n; i++ {
		counts[d.Pick(f)]++
	}
	assert.Len(t, counts, 2)
	within(t, "weight 3 of 4", counts[2], n, 0.75)
}
