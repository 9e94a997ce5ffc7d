package predictor

import (
	"math"
	"testing"

	crerr "github.com/cockroachdb/errors"

	"github.com/venomio/matchsim/internal/domain/predictor"
)

func TestScoreUnknownModel(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())
	_, err := bank.Score("xgboost_v9", predictor.Features{})
	if !crerr.Is(err, predictor.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestScoreMissingFeature(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())
	_, err := bank.Score(predictor.ModelShotsPerMinute, predictor.Features{
		FeatTeamShotRate: 0.05,
	})
	if !crerr.Is(err, predictor.ErrFeatureMismatch) {
		t.Fatalf("expected ErrFeatureMismatch, got %v", err)
	}
}

func spmFeatures(rate, minutes, prior float64) predictor.Features {
	return predictor.Features{
		FeatTeamShotRate:  rate,
		FeatMinutesSample: minutes,
		FeatLeaguePrior:   prior,
		FeatMatchState:    0,
		FeatMatchSegment:  0,
		FeatPlayerDif:     0,
		FeatIsHome:        0,
	}
}

func TestShotsPerMinuteShrinkage(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())

	// Tiny sample collapses onto the league prior.
	low, err := bank.Score(predictor.ModelShotsPerMinute, spmFeatures(0.20, 10, 0.05))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if math.Abs(low.Value-0.05) > 0.01 {
		t.Fatalf("low-sample value %.4f strayed from prior 0.05", low.Value)
	}
	if low.Confidence > 0.05 {
		t.Fatalf("low-sample confidence %.4f too high", low.Confidence)
	}

	// Huge sample trusts the team's own rate.
	high, err := bank.Score(predictor.ModelShotsPerMinute, spmFeatures(0.20, 100000, 0.05))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if math.Abs(high.Value-0.20) > 0.01 {
		t.Fatalf("high-sample value %.4f strayed from own rate 0.20", high.Value)
	}
	if high.Confidence < 0.99 {
		t.Fatalf("high-sample confidence %.4f too low", high.Confidence)
	}
}

func TestShotsPerMinuteContextDirection(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())

	level := spmFeatures(0.08, 100000, 0.05)
	leading := spmFeatures(0.08, 100000, 0.05)
	leading[FeatMatchState] = 1.5

	a, err := bank.Score(predictor.ModelShotsPerMinute, level)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	b, err := bank.Score(predictor.ModelShotsPerMinute, leading)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if b.Value >= a.Value {
		t.Fatalf("leading big should depress shot rate: %.5f vs %.5f", b.Value, a.Value)
	}
}

func TestShotTypeShares(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())

	out, err := bank.Score(predictor.ModelShotType, predictor.Features{
		FeatHeadRating: 1,
		FeatFootRating: 3,
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if math.Abs(out.Classes[ClassHead]-0.25) > 1e-9 {
		t.Fatalf("head share: got %.4f want 0.25", out.Classes[ClassHead])
	}
	if math.Abs(out.Classes[ClassHead]+out.Classes[ClassFoot]-1) > 1e-9 {
		t.Fatalf("class shares do not sum to one")
	}

	// No rating at all falls back to the default head share.
	fallback, err := bank.Score(predictor.ModelShotType, predictor.Features{
		FeatHeadRating: 0,
		FeatFootRating: 0,
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if fallback.Classes[ClassHead] != DefaultWeights().DefaultHeadShare {
		t.Fatalf("fallback head share: got %.4f", fallback.Classes[ClassHead])
	}
}

func TestQualityChainStaysInRange(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())

	baseline, err := bank.Score(predictor.ModelShotQualityBaseline, predictor.Features{
		FeatTeamQuality:     0.8,
		FeatShooterQuality:  1.2,
		FeatAssisterQuality: 0.5,
	})
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if baseline.Value <= 0 || baseline.Value >= 1 {
		t.Fatalf("baseline out of range: %.4f", baseline.Value)
	}

	refined, err := bank.Score(predictor.ModelShotQualityRefined, predictor.Features{
		FeatBaselineXG:   baseline.Value,
		FeatMatchState:   -1.5,
		FeatPlayerDif:    1,
		FeatMatchSegment: 6,
	})
	if err != nil {
		t.Fatalf("refined: %v", err)
	}
	if refined.Value < 0 || refined.Value > 1 {
		t.Fatalf("refined out of range: %.4f", refined.Value)
	}

	final, err := bank.Score(predictor.ModelShotQualityModifier, predictor.Features{
		FeatRefinedXG:   refined.Value,
		FeatFinishing:   2,
		FeatGoalkeeping: -2,
		FeatIsHome:      1,
	})
	if err != nil {
		t.Fatalf("modifier: %v", err)
	}
	if final.Value <= 0 || final.Value >= 1 {
		t.Fatalf("final out of range: %.4f", final.Value)
	}
	if final.Value <= refined.Value {
		t.Fatalf("strong finisher vs weak keeper should raise xg: %.4f vs %.4f", final.Value, refined.Value)
	}
}

func TestFoulRateFloorsAndBlends(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())

	zero, err := bank.Score(predictor.ModelFoulRate, predictor.Features{
		FeatTeamFoulsPer90:   0,
		FeatOppDrawnPer90:    0,
		FeatRefFoulsPerMatch: 0,
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if zero.Value <= 0 {
		t.Fatalf("foul rate must stay positive, got %v", zero.Value)
	}

	typical, err := bank.Score(predictor.ModelFoulRate, predictor.Features{
		FeatTeamFoulsPer90:   12,
		FeatOppDrawnPer90:    10,
		FeatRefFoulsPerMatch: 24,
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// (0.65*11 + 0.35*12) / 90
	want := (0.65*11 + 0.35*12) / 90
	if math.Abs(typical.Value-want) > 1e-9 {
		t.Fatalf("foul rate: got %.6f want %.6f", typical.Value, want)
	}
}

func TestCardRateShrinksTowardReferee(t *testing.T) {
	t.Parallel()

	bank := NewBank(DefaultWeights())

	// A player with no foul history takes the referee's rates exactly.
	fresh, err := bank.Score(predictor.ModelCardRate, predictor.Features{
		FeatPlayerFouls:       0,
		FeatPlayerYellows:     0,
		FeatPlayerReds:        0,
		FeatRefYellowsPerFoul: 0.12,
		FeatRefRedsPerFoul:    0.01,
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if math.Abs(fresh.Classes[ClassYellow]-0.12) > 1e-9 {
		t.Fatalf("fresh yellow: got %.4f want 0.12", fresh.Classes[ClassYellow])
	}
	if math.Abs(fresh.Classes[ClassRed]-0.01) > 1e-9 {
		t.Fatalf("fresh red: got %.4f want 0.01", fresh.Classes[ClassRed])
	}

	sum := fresh.Classes[ClassNone] + fresh.Classes[ClassYellow] + fresh.Classes[ClassRed]
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("class probabilities sum to %.6f", sum)
	}

	// A career hothead pulls the yellow rate above the referee baseline.
	hothead, err := bank.Score(predictor.ModelCardRate, predictor.Features{
		FeatPlayerFouls:       200,
		FeatPlayerYellows:     80,
		FeatPlayerReds:        4,
		FeatRefYellowsPerFoul: 0.12,
		FeatRefRedsPerFoul:    0.01,
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if hothead.Classes[ClassYellow] <= fresh.Classes[ClassYellow] {
		t.Fatalf("card history ignored: %.4f <= %.4f", hothead.Classes[ClassYellow], fresh.Classes[ClassYellow])
	}
}
