package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/predictor"
	"github.com/venomio/matchsim/internal/domain/squad"
	bank "github.com/venomio/matchsim/internal/infrastructure/predictor"
	"github.com/venomio/matchsim/internal/platform/logging"
	"github.com/venomio/matchsim/internal/platform/rng"
)

// SimulationParams are the engine knobs that hold across a whole batch.
type SimulationParams struct {
	MaxActive       int
	SubCap          int
	StoppageMinutes int
	SaveSplit       float64
	FoulFactors     FoulFactors
	SubMultipliers  SubMultipliers
}

func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		MaxActive:       11,
		SubCap:          5,
		StoppageMinutes: 5,
		SaveSplit:       0,
		FoulFactors:     DefaultFoulFactors(),
		SubMultipliers:  DefaultSubMultipliers(),
	}
}

// MatchInput is one trial's worth of inputs. Teams are treated as templates;
// the engine deep-copies them before mutating anything.
type MatchInput struct {
	Home    *squad.Team
	Away    *squad.Team
	Context match.Context
	Referee history.RefereeAggregates

	// LeagueShotsPerMinute is the shrinkage prior for the shot-rate model.
	LeagueShotsPerMinute float64

	Seed int64
}

// Engine runs a single match minute by minute. It is stateless across calls
// and safe to share between trials.
type Engine struct {
	scorer     predictor.Scorer
	shots      *ShotResolver
	discipline *DisciplineResolver
	lineup     *LineupManager
	params     SimulationParams
	logger     *logging.Logger
}

func NewEngine(scorer predictor.Scorer, params SimulationParams, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		scorer:     scorer,
		shots:      NewShotResolver(scorer, params.SaveSplit),
		discipline: NewDisciplineResolver(scorer, params.FoulFactors),
		lineup:     NewLineupManager(params.SubMultipliers),
		params:     params,
		logger:     logger,
	}
}

// SimulateMatch plays one trial to full time and returns its event log.
// Any predictor failure or broken probability aborts the trial; exhausted
// substitution windows are skipped.
func (e *Engine) SimulateMatch(ctx context.Context, in MatchInput) (*match.Log, error) {
	ctx, span := startUsecaseSpan(ctx, "engine.simulate_match")
	defer span.End()

	if err := in.Context.Validate(); err != nil {
		return nil, err
	}
	if err := e.validateTeams(in); err != nil {
		return nil, err
	}

	home := in.Home.DeepCopy()
	away := in.Away.DeepCopy()
	home.Side = match.SideHome
	away.Side = match.SideAway
	homeSquadSize := len(home.Players)
	awaySquadSize := len(away.Players)

	src := rng.New(in.Seed)
	log := match.NewLog()

	homeGoals := in.Context.InitialHomeGoals
	awayGoals := in.Context.InitialAwayGoals
	first := in.Context.InitialMinute + 1
	total := in.Context.TotalMinutes()

	var st match.State
	st.Recompute(first, homeGoals, awayGoals, home.RedCount(), away.RedCount())
	if err := log.Append(match.Event{
		Minute:    first,
		Type:      match.EventKickoff,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
	}); err != nil {
		return nil, err
	}

	for minute := first; minute <= total; minute++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTrialAborted, err)
		}

		st.Recompute(minute, homeGoals, awayGoals, home.RedCount(), away.RedCount())

		// Halftime boundary: substitutions happen before play resumes and the
		// regular window check is skipped for this minute.
		halftimeSubs := minute == match.HalftimeMinute+1
		if halftimeSubs {
			e.substitutions(ctx, src, st, log, home, away)
		}

		for _, pair := range [2][2]*squad.Team{{home, away}, {away, home}} {
			offense, defense := pair[0], pair[1]

			shotProb, err := e.shotProbability(st, in, offense, defense)
			if err != nil {
				return nil, err
			}
			if !rng.Bernoulli(src, shotProb) {
				continue
			}

			ev, goal, err := e.shots.Resolve(src, st, in.Context, offense, defense)
			if err != nil {
				return nil, err
			}
			ev.HomeGoals = homeGoals
			ev.AwayGoals = awayGoals
			if err := log.Append(ev); err != nil {
				return nil, err
			}
			if goal {
				if offense.Side == match.SideHome {
					homeGoals++
				} else {
					awayGoals++
				}
				if err := log.Append(match.Event{
					Minute:    minute,
					Type:      match.EventGoal,
					Side:      offense.Side,
					Player:    ev.Player,
					Assister:  ev.Assister,
					ShotKind:  ev.ShotKind,
					HomeGoals: homeGoals,
					AwayGoals: awayGoals,
				}); err != nil {
					return nil, err
				}
			}
		}

		for _, pair := range [2][2]*squad.Team{{home, away}, {away, home}} {
			events, err := e.discipline.Resolve(src, st, pair[0], pair[1], in.Referee)
			if err != nil {
				return nil, err
			}
			for _, ev := range events {
				if err := log.Append(ev); err != nil {
					return nil, err
				}
			}
		}

		if !halftimeSubs {
			e.substitutions(ctx, src, st, log, home, away)
		}

		home.TickMinutes()
		away.TickMinutes()
	}

	if err := log.Append(match.Event{
		Minute:    total,
		Type:      match.EventFullTime,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
	}); err != nil {
		return nil, err
	}

	if err := home.CheckConservation(homeSquadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrialAborted, err)
	}
	if err := away.CheckConservation(awaySquadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrialAborted, err)
	}

	return log, nil
}

func (e *Engine) validateTeams(in MatchInput) error {
	if in.Home == nil || in.Away == nil {
		return fmt.Errorf("%w: both teams are required", squad.ErrRosterInvalid)
	}

	for _, team := range []*squad.Team{in.Home, in.Away} {
		if in.Context.InitialMinute == 0 {
			if err := team.Validate(e.params.MaxActive); err != nil {
				return err
			}
			continue
		}

		// Mid-match entry: carded players may already be gone, so the pitch
		// only has to hold maxActive minus removals.
		if err := team.CheckConservation(len(team.Players)); err != nil {
			return err
		}
		want := e.params.MaxActive - team.RedCount()
		if got := len(team.Active()); got != want {
			return fmt.Errorf("%w: team %s fields %d players, need %d", squad.ErrRosterInvalid, team.ID, got, want)
		}
	}
	return nil
}

// shotProbability scores the SPM model for one side at the current state.
func (e *Engine) shotProbability(st match.State, in MatchInput, offense, defense *squad.Team) (float64, error) {
	offActive := offense.Active()
	defActive := defense.Active()

	var offRate, defRate, sample float64
	for _, p := range offActive {
		offRate += p.OffShots
		sample += p.Minutes
	}
	for _, p := range defActive {
		defRate += p.DefShots
	}
	if len(offActive) > 0 {
		offRate /= float64(len(offActive))
	}
	if len(defActive) > 0 {
		defRate /= float64(len(defActive))
	}

	out, err := e.scorer.Score(predictor.ModelShotsPerMinute, predictor.Features{
		bank.FeatTeamShotRate:  (offRate + defRate) / 2,
		bank.FeatMinutesSample: sample,
		bank.FeatLeaguePrior:   in.LeagueShotsPerMinute,
		bank.FeatMatchState:    float64(st.StateFor(offense.Side)),
		bank.FeatMatchSegment:  float64(st.Segment),
		bank.FeatPlayerDif:     float64(st.PlayerDifFor(offense.Side)),
		bank.FeatIsHome:        isHome(offense.Side),
		bank.FeatElevationDif:  elevationDif(in.Context, offense.Side),
		bank.FeatTravel:        travel(in.Context, offense.Side),
		bank.FeatRestDays:      restDays(in.Context, offense.Side),
		bank.FeatTemperature:   in.Context.Temperature,
		bank.FeatIsRaining:     boolFeature(in.Context.IsRaining),
		bank.FeatImportant:     boolFeature(in.Context.Important),
	})
	if err != nil {
		return 0, fmt.Errorf("score shot rate: %w", err)
	}
	if math.IsNaN(out.Value) || out.Value < 0 || out.Value > 1 {
		return 0, fmt.Errorf("%w: shot rate %v", ErrInvalidProbability, out.Value)
	}
	return out.Value, nil
}

func (e *Engine) substitutions(ctx context.Context, src rng.Source, st match.State, log *match.Log, home, away *squad.Team) {
	for _, team := range []*squad.Team{home, away} {
		events, err := e.lineup.MaybeSubstitute(src, st, team)
		if err != nil {
			if errors.Is(err, ErrRosterExhausted) {
				e.logger.DebugContext(ctx, "substitution window skipped",
					"team", team.ID, "minute", st.Minute, "error", err)
			} else {
				e.logger.WarnContext(ctx, "substitution failed",
					"team", team.ID, "minute", st.Minute, "error", err)
			}
		}
		for _, ev := range events {
			// Append cannot fail here: window events carry the loop minute.
			_ = log.Append(ev)
		}
	}
}
