package usecase

import (
	"fmt"
	"math"

	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/predictor"
	"github.com/venomio/matchsim/internal/domain/squad"
	bank "github.com/venomio/matchsim/internal/infrastructure/predictor"
	"github.com/venomio/matchsim/internal/platform/rng"
)

// ShotResolver turns "a shot happens this minute" into a concrete attempt:
// shot type, shooter, assister, quality chain, and outcome.
type ShotResolver struct {
	scorer    predictor.Scorer
	saveSplit float64
}

func NewShotResolver(scorer predictor.Scorer, saveSplit float64) *ShotResolver {
	return &ShotResolver{scorer: scorer, saveSplit: saveSplit}
}

// Resolve samples one shot for the offense. The returned event carries the
// outcome; goal is true when the score should advance.
func (r *ShotResolver) Resolve(src rng.Source, st match.State, mctx match.Context, offense, defense *squad.Team) (match.Event, bool, error) {
	active := offense.Active()
	if len(active) == 0 {
		return match.Event{}, false, fmt.Errorf("%w: no active players on %s", ErrTrialAborted, offense.ID)
	}

	kind, err := r.sampleShotKind(src, active)
	if err != nil {
		return match.Event{}, false, err
	}

	shooter, err := r.sampleShooter(src, active, kind)
	if err != nil {
		return match.Event{}, false, err
	}

	assister, err := r.sampleAssister(src, active, shooter, kind)
	if err != nil {
		return match.Event{}, false, err
	}

	quality, err := r.sampleQuality(st, mctx, offense, defense, shooter, assister, kind)
	if err != nil {
		return match.Event{}, false, err
	}
	if math.IsNaN(quality) || quality < 0 || quality > 1 {
		return match.Event{}, false, fmt.Errorf("%w: shot quality %v", ErrInvalidProbability, quality)
	}

	goal := rng.Bernoulli(src, quality)
	outcome := match.OutcomeMiss
	if goal {
		outcome = match.OutcomeGoal
	} else if r.saveSplit > 0 && rng.Bernoulli(src, r.saveSplit) {
		outcome = match.OutcomeSave
	}

	ev := match.Event{
		Minute:   st.Minute,
		Type:     match.EventShot,
		Side:     offense.Side,
		Player:   shooter.ID,
		ShotKind: kind,
		Outcome:  outcome,
		Quality:  quality,
	}
	if assister != nil {
		ev.Assister = assister.ID
	}
	return ev, goal, nil
}

func (r *ShotResolver) sampleShotKind(src rng.Source, active []*squad.Player) (match.ShotKind, error) {
	var head, foot float64
	for _, p := range active {
		head += p.Headers
		foot += p.Footers
	}

	out, err := r.scorer.Score(predictor.ModelShotType, predictor.Features{
		bank.FeatHeadRating: head,
		bank.FeatFootRating: foot,
	})
	if err != nil {
		return "", fmt.Errorf("score shot type: %w", err)
	}

	idx, err := rng.PickWeighted(src, []float64{out.Classes[bank.ClassHead], out.Classes[bank.ClassFoot]}, 0)
	if err != nil {
		return "", fmt.Errorf("pick shot type: %w", err)
	}
	if idx == 0 {
		return match.ShotHead, nil
	}
	return match.ShotFoot, nil
}

// sampleShooter weights each active player by their historical volume for the
// shot type. The +1 floor keeps never-shooters possible and degrades to a
// uniform pick on an all-zero roster.
func (r *ShotResolver) sampleShooter(src rng.Source, active []*squad.Player, kind match.ShotKind) (*squad.Player, error) {
	weights := make([]float64, len(active))
	for i, p := range active {
		if kind == match.ShotHead {
			weights[i] = p.Headers
		} else {
			weights[i] = p.Footers
		}
	}

	idx, err := rng.PickWeighted(src, weights, 1)
	if err != nil {
		return nil, fmt.Errorf("pick shooter: %w", err)
	}
	return active[idx], nil
}

// sampleAssister picks the creator. Headed shots come from deliveries, so any
// teammate is equally likely. Footed shots weigh teammates by key passes and
// include an unassisted bucket weighted by the shooter's own history.
func (r *ShotResolver) sampleAssister(src rng.Source, active []*squad.Player, shooter *squad.Player, kind match.ShotKind) (*squad.Player, error) {
	teammates := make([]*squad.Player, 0, len(active)-1)
	for _, p := range active {
		if p != shooter {
			teammates = append(teammates, p)
		}
	}
	if len(teammates) == 0 {
		return nil, nil
	}

	if kind == match.ShotHead {
		idx, err := rng.PickWeighted(src, make([]float64, len(teammates)), 1)
		if err != nil {
			return nil, fmt.Errorf("pick assister: %w", err)
		}
		return teammates[idx], nil
	}

	// Last slot is the unassisted bucket.
	weights := make([]float64, len(teammates)+1)
	for i, p := range teammates {
		weights[i] = p.KeyPasses
	}
	weights[len(teammates)] = shooter.NonAssistedShots

	idx, err := rng.PickWeighted(src, weights, 1)
	if err != nil {
		return nil, fmt.Errorf("pick assister: %w", err)
	}
	if idx == len(teammates) {
		return nil, nil
	}
	return teammates[idx], nil
}

// sampleQuality runs the three-stage quality chain: player-level baseline,
// state refinement, then the finishing/goalkeeping/conditions modifier.
func (r *ShotResolver) sampleQuality(st match.State, mctx match.Context, offense, defense *squad.Team, shooter, assister *squad.Player, kind match.ShotKind) (float64, error) {
	var offQuality, defQuality, shooterQuality, assisterQuality float64
	offActive := offense.Active()
	defActive := defense.Active()
	for _, p := range offActive {
		if kind == match.ShotHead {
			offQuality += p.OffHeadQuality
		} else {
			offQuality += p.OffFootQuality
		}
	}
	for _, p := range defActive {
		if kind == match.ShotHead {
			defQuality += p.DefHeadQuality
		} else {
			defQuality += p.DefFootQuality
		}
	}
	if len(offActive) > 0 {
		offQuality /= float64(len(offActive))
	}
	if len(defActive) > 0 {
		defQuality /= float64(len(defActive))
	}

	if kind == match.ShotHead {
		shooterQuality = shooter.OffHeadQuality
	} else {
		shooterQuality = shooter.OffFootQuality
	}
	if assister != nil {
		assisterQuality = assister.OffFootQuality
	}

	baseline, err := r.scorer.Score(predictor.ModelShotQualityBaseline, predictor.Features{
		bank.FeatTeamQuality:     offQuality - defQuality,
		bank.FeatShooterQuality:  shooterQuality,
		bank.FeatAssisterQuality: assisterQuality,
	})
	if err != nil {
		return 0, fmt.Errorf("score quality baseline: %w", err)
	}

	refined, err := r.scorer.Score(predictor.ModelShotQualityRefined, predictor.Features{
		bank.FeatBaselineXG:   baseline.Value,
		bank.FeatMatchState:   float64(st.StateFor(offense.Side)),
		bank.FeatPlayerDif:    float64(st.PlayerDifFor(offense.Side)),
		bank.FeatMatchSegment: float64(st.Segment),
	})
	if err != nil {
		return 0, fmt.Errorf("score quality refinement: %w", err)
	}

	var goalkeeping float64
	if gk := defense.Goalkeeper(); gk != nil {
		goalkeeping = gk.GoalkeeperAbility
	}

	final, err := r.scorer.Score(predictor.ModelShotQualityModifier, predictor.Features{
		bank.FeatRefinedXG:    refined.Value,
		bank.FeatFinishing:    shooter.FinishingAbility,
		bank.FeatGoalkeeping:  goalkeeping,
		bank.FeatIsHome:       isHome(offense.Side),
		bank.FeatElevationDif: elevationDif(mctx, offense.Side),
		bank.FeatTravel:       travel(mctx, offense.Side),
		bank.FeatRestDays:     restDays(mctx, offense.Side),
		bank.FeatTemperature:  mctx.Temperature,
		bank.FeatIsRaining:    boolFeature(mctx.IsRaining),
	})
	if err != nil {
		return 0, fmt.Errorf("score quality modifier: %w", err)
	}

	return final.Value, nil
}

func isHome(side match.Side) float64 {
	if side == match.SideHome {
		return 1
	}
	return 0
}

func elevationDif(mctx match.Context, side match.Side) float64 {
	if side == match.SideHome {
		return mctx.HomeElevationDif
	}
	return mctx.AwayElevationDif
}

func travel(mctx match.Context, side match.Side) float64 {
	if side == match.SideAway {
		return mctx.AwayTravel
	}
	return 0
}

func restDays(mctx match.Context, side match.Side) float64 {
	if side == match.SideHome {
		return mctx.HomeRestDays
	}
	return mctx.AwayRestDays
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
