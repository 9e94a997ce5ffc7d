package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/platform/logging"
)

// BatchInput is a Monte Carlo run over one fixture. Trial i runs with seed
// Match.Seed+i, so a batch is reproducible end to end.
type BatchInput struct {
	Match      MatchInput
	Trials     int
	MaxWorkers int
}

// TrialFailure records one aborted trial without sinking the batch.
type TrialFailure struct {
	Trial int    `json:"trial"`
	Seed  int64  `json:"seed"`
	Cause string `json:"cause"`
}

// BatchResult aggregates outcomes across trials. Probabilities and averages
// are computed over succeeded trials only.
type BatchResult struct {
	Trials    int `json:"trials"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	HomeWins int `json:"home_wins"`
	Draws    int `json:"draws"`
	AwayWins int `json:"away_wins"`

	HomeWinProb float64 `json:"home_win_prob"`
	DrawProb    float64 `json:"draw_prob"`
	AwayWinProb float64 `json:"away_win_prob"`

	AvgHomeGoals float64 `json:"avg_home_goals"`
	AvgAwayGoals float64 `json:"avg_away_goals"`
	AvgHomeShots float64 `json:"avg_home_shots"`
	AvgAwayShots float64 `json:"avg_away_shots"`

	WorkerCount int            `json:"worker_count"`
	Failures    []TrialFailure `json:"failures,omitempty"`

	// SampleEvents is the first trial's full event log, for callers that want
	// one concrete timeline next to the aggregates.
	SampleEvents []match.Event `json:"sample_events,omitempty"`
}

// BatchService fans trials out over a worker pool. Each trial deep-copies its
// own team state inside the engine, so workers share nothing but the
// read-only inputs.
type BatchService struct {
	engine *Engine
	logger *logging.Logger
}

func NewBatchService(engine *Engine, logger *logging.Logger) *BatchService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BatchService{engine: engine, logger: logger}
}

func (s *BatchService) Run(ctx context.Context, in BatchInput) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "batch.run")
	defer span.End()

	if in.Trials <= 0 {
		return BatchResult{}, fmt.Errorf("trials must be > 0, got %d", in.Trials)
	}

	workerCount := in.MaxWorkers
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	if workerCount > in.Trials {
		workerCount = in.Trials
	}
	span.SetAttributes(
		attribute.Int("batch.trials", in.Trials),
		attribute.Int("batch.workers", workerCount),
	)

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	result := BatchResult{Trials: in.Trials, WorkerCount: workerCount}
	var mu sync.Mutex
	var sample *match.Log

	var workers sync.WaitGroup
	for i := 0; i < in.Trials; i++ {
		trial := i
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			trialInput := in.Match
			trialInput.Seed = in.Match.Seed + int64(trial)

			if err := ctx.Err(); err != nil {
				mu.Lock()
				result.Failed++
				result.Failures = append(result.Failures, TrialFailure{
					Trial: trial, Seed: trialInput.Seed, Cause: err.Error(),
				})
				mu.Unlock()
				return
			}

			log, err := s.engine.SimulateMatch(ctx, trialInput)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, TrialFailure{
					Trial: trial, Seed: trialInput.Seed, Cause: err.Error(),
				})
				return
			}

			result.Succeeded++
			home, away := log.FinalScore()
			switch {
			case home > away:
				result.HomeWins++
			case home < away:
				result.AwayWins++
			default:
				result.Draws++
			}
			result.AvgHomeGoals += float64(home)
			result.AvgAwayGoals += float64(away)
			result.AvgHomeShots += float64(log.CountType(match.EventShot, match.SideHome))
			result.AvgAwayShots += float64(log.CountType(match.EventShot, match.SideAway))

			if trial == 0 {
				sample = log
			}
		}); err != nil {
			workers.Done()
			mu.Lock()
			result.Failed++
			result.Failures = append(result.Failures, TrialFailure{
				Trial: trial, Seed: in.Match.Seed + int64(trial), Cause: fmt.Sprintf("submit: %v", err),
			})
			mu.Unlock()
		}
	}
	workers.Wait()

	if n := float64(result.Succeeded); n > 0 {
		result.HomeWinProb = float64(result.HomeWins) / n
		result.DrawProb = float64(result.Draws) / n
		result.AwayWinProb = float64(result.AwayWins) / n
		result.AvgHomeGoals /= n
		result.AvgAwayGoals /= n
		result.AvgHomeShots /= n
		result.AvgAwayShots /= n
	}
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Trial < result.Failures[j].Trial
	})
	if sample != nil {
		result.SampleEvents = sample.Events()
	}

	if result.Failed > 0 {
		s.logger.WarnContext(ctx, "batch finished with failed trials",
			"trials", in.Trials, "failed", result.Failed)
	} else {
		s.logger.InfoContext(ctx, "batch finished",
			"trials", in.Trials, "home_win_prob", result.HomeWinProb)
	}

	return result, nil
}
