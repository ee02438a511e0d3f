package nandsim

import (
	"context"
	"testing"

	"nandsim/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOrder(t *testing.T) {
	base := types.DefaultParameters(types.StepResponse)
	values := []float64{10e-12, 50e-12, 100e-12, 200e-12}

	list, err := Sweep(context.Background(), base, FieldC, values)
	require.NoError(t, err)
	require.Len(t, list, len(values))
	for i, s := range list {
		assert.Equal(t, values[i], s.Params.C)
		assert.Equal(t, base.S, s.Params.S)

		single, err := Simulate(s.Params)
		require.NoError(t, err)
		assert.Equal(t, single.Output, s.Output)
	}
}

func TestSweepInvalid(t *testing.T) {
	base := types.DefaultParameters(types.SteadyInput)
	_, err := Sweep(context.Background(), base, FieldS, []float64{1e-3, 0, 2e-3})
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = Sweep(context.Background(), base, Field("r"), []float64{1})
	assert.Error(t, err)
}

func TestSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, types.DefaultParameters(types.StepResponse), FieldStimulus, []float64{5e-9, 10e-9})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("Stimulus")
	require.NoError(t, err)
	assert.Equal(t, FieldStimulus, f)
	_, err = ParseField("x")
	assert.Error(t, err)
}
