package predictor

import (
	"math"

	crerr "github.com/cockroachdb/errors"

	"github.com/venomio/matchsim/internal/domain/predictor"
)

// Feature keys the bank's models read. Callers build vectors with these keys;
// a missing required key fails the score with ErrFeatureMismatch.
const (
	FeatTeamShotRate  = "team_shot_rate"
	FeatMinutesSample = "minutes_sample"
	FeatLeaguePrior   = "league_prior"
	FeatMatchState    = "match_state"
	FeatMatchSegment  = "match_segment"
	FeatPlayerDif     = "player_dif"
	FeatIsHome        = "is_home"
	FeatElevationDif  = "elevation_dif"
	FeatTravel        = "travel"
	FeatRestDays      = "rest_days"
	FeatTemperature   = "temperature"
	FeatIsRaining     = "is_raining"
	FeatImportant     = "important"

	FeatHeadRating = "head_rating"
	FeatFootRating = "foot_rating"

	FeatTeamQuality     = "team_quality"
	FeatShooterQuality  = "shooter_quality"
	FeatAssisterQuality = "assister_quality"
	FeatBaselineXG      = "baseline_xg"
	FeatRefinedXG       = "refined_xg"
	FeatFinishing       = "finishing"
	FeatGoalkeeping     = "goalkeeping"

	FeatTeamFoulsPer90   = "team_fouls_per90"
	FeatOppDrawnPer90    = "opp_drawn_per90"
	FeatRefFoulsPerMatch = "ref_fouls_per_match"

	FeatPlayerFouls       = "player_fouls"
	FeatPlayerYellows     = "player_yellows"
	FeatPlayerReds        = "player_reds"
	FeatRefYellowsPerFoul = "ref_yellows_per_foul"
	FeatRefRedsPerFoul    = "ref_reds_per_foul"
)

// Class labels returned by the categorical models.
const (
	ClassHead   = "head"
	ClassFoot   = "foot"
	ClassNone   = "none"
	ClassYellow = "yellow"
	ClassRed    = "red"
)

// Weights freezes the coefficients of the pretrained models. The defaults
// reproduce the production fit; tests override individual entries to probe
// model behavior.
type Weights struct {
	// SPMShrinkMinutes is the pseudo-sample (in minutes) used for shrinking a
	// low-sample team rate toward the league prior.
	SPMShrinkMinutes float64
	SPMContext       map[string]float64

	QualityBias  float64
	QualityCoef  map[string]float64
	RefineCoef   map[string]float64
	ModifierCoef map[string]float64

	// FoulRefereeBlend is the share of the foul expectation taken from the
	// referee profile rather than the two teams.
	FoulRefereeBlend float64

	// CardShrinkFouls is the pseudo-count of fouls pulling a player's card
	// rates toward the referee's per-foul rates.
	CardShrinkFouls float64

	DefaultHeadShare float64
}

func DefaultWeights() Weights {
	return Weights{
		SPMShrinkMinutes: 540,
		SPMContext: map[string]float64{
			FeatMatchState:   -0.055,
			FeatMatchSegment: 0.021,
			FeatPlayerDif:    0.140,
			FeatIsHome:       0.085,
			FeatElevationDif: 0.00004,
			FeatTravel:       -0.00002,
			FeatRestDays:     0.006,
			FeatTemperature:  -0.0015,
			FeatIsRaining:    -0.030,
			FeatImportant:    0.012,
		},
		QualityBias: -2.35,
		QualityCoef: map[string]float64{
			FeatTeamQuality:     0.62,
			FeatShooterQuality:  0.48,
			FeatAssisterQuality: 0.27,
		},
		RefineCoef: map[string]float64{
			FeatMatchState:   -0.045,
			FeatPlayerDif:    0.110,
			FeatMatchSegment: 0.012,
		},
		ModifierCoef: map[string]float64{
			FeatFinishing:    0.520,
			FeatGoalkeeping:  -0.470,
			FeatIsHome:       0.035,
			FeatElevationDif: 0.00002,
			FeatTravel:       -0.00001,
			FeatRestDays:     0.004,
			FeatTemperature:  -0.0010,
			FeatIsRaining:    -0.045,
		},
		FoulRefereeBlend: 0.35,
		CardShrinkFouls:  10,
		DefaultHeadShare: 0.22,
	}
}

// Bank serves every pretrained model behind the Scorer interface. It is
// immutable after construction and safe for concurrent use.
type Bank struct {
	weights Weights
	models  map[string]func(predictor.Features) (predictor.Output, error)
}

func NewBank(w Weights) *Bank {
	b := &Bank{weights: w}
	b.models = map[string]func(predictor.Features) (predictor.Output, error){
		predictor.ModelShotsPerMinute:      b.scoreShotsPerMinute,
		predictor.ModelShotType:            b.scoreShotType,
		predictor.ModelShotQualityBaseline: b.scoreQualityBaseline,
		predictor.ModelShotQualityRefined:  b.scoreQualityRefined,
		predictor.ModelShotQualityModifier: b.scoreQualityModifier,
		predictor.ModelFoulRate:            b.scoreFoulRate,
		predictor.ModelCardRate:            b.scoreCardRate,
	}
	return b
}

func (b *Bank) Score(model string, features predictor.Features) (predictor.Output, error) {
	score, ok := b.models[model]
	if !ok {
		return predictor.Output{}, crerr.Wrapf(predictor.ErrModelUnavailable, "model %q", model)
	}
	return score(features)
}

// scoreShotsPerMinute estimates a team's per-minute shot probability. The raw
// rate comes in as a feature, gets a multiplicative context adjustment, and is
// shrunk toward the league prior in proportion to sample size.
func (b *Bank) scoreShotsPerMinute(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatTeamShotRate, FeatMinutesSample, FeatLeaguePrior,
		FeatMatchState, FeatMatchSegment, FeatPlayerDif, FeatIsHome); err != nil {
		return predictor.Output{}, err
	}

	adjusted := f[FeatTeamShotRate] * math.Exp(dot(b.weights.SPMContext, f))

	sample := math.Max(f[FeatMinutesSample], 0)
	confidence := sample / (sample + b.weights.SPMShrinkMinutes)
	value := confidence*adjusted + (1-confidence)*f[FeatLeaguePrior]

	return predictor.Output{
		Value:      clamp01(value),
		Confidence: confidence,
	}, nil
}

// scoreShotType splits a shot into head or foot from the team's relative
// aerial and ground ratings.
func (b *Bank) scoreShotType(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatHeadRating, FeatFootRating); err != nil {
		return predictor.Output{}, err
	}

	head := math.Max(f[FeatHeadRating], 0)
	foot := math.Max(f[FeatFootRating], 0)
	share := b.weights.DefaultHeadShare
	if total := head + foot; total > 0 {
		share = head / total
	}

	return predictor.Output{
		Value:      share,
		Confidence: 1,
		Classes:    map[string]float64{ClassHead: share, ClassFoot: 1 - share},
	}, nil
}

// scoreQualityBaseline is the player-level xG baseline from aggregated team
// quality and the shooter/assister coefficients.
func (b *Bank) scoreQualityBaseline(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatTeamQuality, FeatShooterQuality, FeatAssisterQuality); err != nil {
		return predictor.Output{}, err
	}

	value := sigmoid(b.weights.QualityBias + dot(b.weights.QualityCoef, f))
	return predictor.Output{Value: value, Confidence: 1}, nil
}

// scoreQualityRefined bends the baseline by match state and player advantage.
func (b *Bank) scoreQualityRefined(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatBaselineXG, FeatMatchState, FeatPlayerDif, FeatMatchSegment); err != nil {
		return predictor.Output{}, err
	}

	value := f[FeatBaselineXG] * math.Exp(dot(b.weights.RefineCoef, f))
	return predictor.Output{Value: clamp01(value), Confidence: 1}, nil
}

// scoreQualityModifier applies finishing, goalkeeping and conditions on the
// logit scale to produce the final scoring probability.
func (b *Bank) scoreQualityModifier(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatRefinedXG, FeatFinishing, FeatGoalkeeping); err != nil {
		return predictor.Output{}, err
	}

	value := sigmoid(logit(f[FeatRefinedXG]) + dot(b.weights.ModifierCoef, f))
	return predictor.Output{Value: value, Confidence: 1}, nil
}

// scoreFoulRate yields a team's per-minute foul probability, blending the
// team/opponent foul profile with the referee's whistle tendency. Venue and
// match-status multipliers are applied downstream by the resolver.
func (b *Bank) scoreFoulRate(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatTeamFoulsPer90, FeatOppDrawnPer90, FeatRefFoulsPerMatch); err != nil {
		return predictor.Output{}, err
	}

	teamSide := (f[FeatTeamFoulsPer90] + f[FeatOppDrawnPer90]) / 2
	refSide := f[FeatRefFoulsPerMatch] / 2
	perMatch := (1-b.weights.FoulRefereeBlend)*teamSide + b.weights.FoulRefereeBlend*refSide

	value := math.Max(perMatch/90, 1e-6)
	return predictor.Output{Value: clamp01(value), Confidence: 1}, nil
}

// scoreCardRate returns none/yellow/red probabilities per foul, shrinking the
// fouler's own card rates toward the referee's per-foul rates with a fixed
// pseudo-count of fouls.
func (b *Bank) scoreCardRate(f predictor.Features) (predictor.Output, error) {
	if err := f.Require(FeatPlayerFouls, FeatPlayerYellows, FeatPlayerReds,
		FeatRefYellowsPerFoul, FeatRefRedsPerFoul); err != nil {
		return predictor.Output{}, err
	}

	k := b.weights.CardShrinkFouls
	fouls := math.Max(f[FeatPlayerFouls], 0)

	yellow := clamp01((f[FeatPlayerYellows] + k*f[FeatRefYellowsPerFoul]) / (fouls + k))
	red := clamp01((f[FeatPlayerReds] + k*f[FeatRefRedsPerFoul]) / (fouls + k))
	if yellow+red > 1 {
		scale := 1 / (yellow + red)
		yellow *= scale
		red *= scale
	}

	return predictor.Output{
		Confidence: fouls / (fouls + k),
		Classes: map[string]float64{
			ClassNone:   1 - yellow - red,
			ClassYellow: yellow,
			ClassRed:    red,
		},
	}, nil
}

func dot(coef map[string]float64, f predictor.Features) float64 {
	sum := 0.0
	for k, w := range coef {
		sum += w * f[k]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	const eps = 1e-9
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Log(p / (1 - p))
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
