package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venomio/matchsim/internal/domain/predictor"
	"github.com/venomio/matchsim/internal/platform/logging"
)

func TestBatchRunAggregates(t *testing.T) {
	t.Parallel()

	svc := NewBatchService(newTestEngine(), logging.NewNop())
	in := BatchInput{Match: seededMatchInput(t, 42), Trials: 16, MaxWorkers: 4}

	result, err := svc.Run(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, 16, result.Trials)
	require.Equal(t, 16, result.Succeeded)
	require.Zero(t, result.Failed)
	require.Empty(t, result.Failures)
	require.Equal(t, 4, result.WorkerCount)

	require.Equal(t, 16, result.HomeWins+result.Draws+result.AwayWins)
	require.InDelta(t, 1.0, result.HomeWinProb+result.DrawProb+result.AwayWinProb, 1e-9)
	require.GreaterOrEqual(t, result.AvgHomeGoals, 0.0)
	require.GreaterOrEqual(t, result.AvgAwayGoals, 0.0)
	require.NotEmpty(t, result.SampleEvents)
}

func TestBatchRunReproducible(t *testing.T) {
	t.Parallel()

	svc := NewBatchService(newTestEngine(), logging.NewNop())
	in := BatchInput{Match: seededMatchInput(t, 42), Trials: 8, MaxWorkers: 8}

	a, err := svc.Run(context.Background(), in)
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), in)
	require.NoError(t, err)

	// Worker scheduling varies, the per-trial seeds do not.
	require.Equal(t, a.HomeWins, b.HomeWins)
	require.Equal(t, a.Draws, b.Draws)
	require.Equal(t, a.AwayWins, b.AwayWins)
	require.True(t, math.Abs(a.AvgHomeGoals-b.AvgHomeGoals) < 1e-9)
	require.Equal(t, a.SampleEvents, b.SampleEvents)
}

func TestBatchRunRejectsZeroTrials(t *testing.T) {
	t.Parallel()

	svc := NewBatchService(newTestEngine(), logging.NewNop())
	_, err := svc.Run(context.Background(), BatchInput{Match: seededMatchInput(t, 1)})
	require.Error(t, err)
}

func TestBatchRunCollectsFailures(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{errs: map[string]error{
		predictor.ModelShotsPerMinute: predictor.ErrModelUnavailable,
	}}
	engine := NewEngine(scorer, DefaultSimulationParams(), logging.NewNop())
	svc := NewBatchService(engine, logging.NewNop())

	result, err := svc.Run(context.Background(), BatchInput{
		Match: seededMatchInput(t, 1), Trials: 4, MaxWorkers: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 4, result.Failed)
	require.Zero(t, result.Succeeded)
	require.Len(t, result.Failures, 4)
	for i, failure := range result.Failures {
		require.Equal(t, i, failure.Trial)
		require.Contains(t, failure.Cause, "unavailable")
	}
}
