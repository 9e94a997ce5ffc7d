package usecase

import (
	"fmt"
	"math"

	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/predictor"
	"github.com/venomio/matchsim/internal/domain/squad"
	bank "github.com/venomio/matchsim/internal/infrastructure/predictor"
	"github.com/venomio/matchsim/internal/platform/rng"
)

// FoulFactors are the multiplicative adjustments on the base foul rate.
// Venue captures that away sides get whistled more; status captures that
// trailing sides chase the ball harder.
type FoulFactors struct {
	Home   float64
	Away   float64
	Status map[match.Status]float64
}

func DefaultFoulFactors() FoulFactors {
	return FoulFactors{
		Home: 0.95,
		Away: 1.05,
		Status: map[match.Status]float64{
			match.StatusLeading:  0.88,
			match.StatusLevel:    1.0,
			match.StatusTrailing: 1.11,
		},
	}
}

// DisciplineResolver samples fouls and cards each minute. A second yellow
// removes the player the same way a straight red does.
type DisciplineResolver struct {
	scorer  predictor.Scorer
	factors FoulFactors
}

func NewDisciplineResolver(scorer predictor.Scorer, factors FoulFactors) *DisciplineResolver {
	return &DisciplineResolver{scorer: scorer, factors: factors}
}

// Resolve samples at most one foul for the team this minute and escalates it
// into a card when the card model says so. Player removal happens in place.
func (d *DisciplineResolver) Resolve(src rng.Source, st match.State, team, opponent *squad.Team, ref history.RefereeAggregates) ([]match.Event, error) {
	active := team.Active()
	if len(active) == 0 {
		return nil, nil
	}

	out, err := d.scorer.Score(predictor.ModelFoulRate, predictor.Features{
		bank.FeatTeamFoulsPer90:   team.FoulsCommittedPer90,
		bank.FeatOppDrawnPer90:    opponent.FoulsDrawnPer90,
		bank.FeatRefFoulsPerMatch: ref.FoulsPerMatch,
	})
	if err != nil {
		return nil, fmt.Errorf("score foul rate: %w", err)
	}

	rate := out.Value * d.venueFactor(team.Side) * d.statusFactor(st.StateFor(team.Side).Status())
	if math.IsNaN(rate) || rate < 0 {
		return nil, fmt.Errorf("%w: foul rate %v", ErrInvalidProbability, rate)
	}
	if rate > 1 {
		rate = 1
	}
	if !rng.Bernoulli(src, rate) {
		return nil, nil
	}

	fouler, err := d.sampleFouler(src, active)
	if err != nil {
		return nil, err
	}

	events := []match.Event{{
		Minute:    st.Minute,
		Type:      match.EventFoul,
		Side:      team.Side,
		Player:    fouler.ID,
		HomeGoals: st.HomeGoals,
		AwayGoals: st.AwayGoals,
	}}

	card, err := d.sampleCard(src, fouler, ref)
	if err != nil {
		return nil, err
	}

	switch card {
	case match.CardYellow:
		fouler.YellowsShown++
		kind := match.CardYellow
		if fouler.YellowsShown >= 2 {
			kind = match.CardSecondYellow
			fouler.Status = squad.StatusRemoved
		}
		events = append(events, cardEvent(st, team.Side, fouler.ID, kind))
	case match.CardRed:
		fouler.Status = squad.StatusRemoved
		events = append(events, cardEvent(st, team.Side, fouler.ID, match.CardRed))
	}

	return events, nil
}

func (d *DisciplineResolver) venueFactor(side match.Side) float64 {
	if side == match.SideHome {
		return d.factors.Home
	}
	return d.factors.Away
}

func (d *DisciplineResolver) statusFactor(status match.Status) float64 {
	if f, ok := d.factors.Status[status]; ok {
		return f
	}
	return 1
}

func (d *DisciplineResolver) sampleFouler(src rng.Source, active []*squad.Player) (*squad.Player, error) {
	weights := make([]float64, len(active))
	for i, p := range active {
		weights[i] = p.FoulsCommitted
	}
	idx, err := rng.PickWeighted(src, weights, 1)
	if err != nil {
		return nil, fmt.Errorf("pick fouler: %w", err)
	}
	return active[idx], nil
}

func (d *DisciplineResolver) sampleCard(src rng.Source, fouler *squad.Player, ref history.RefereeAggregates) (match.CardKind, error) {
	out, err := d.scorer.Score(predictor.ModelCardRate, predictor.Features{
		bank.FeatPlayerFouls:       fouler.FoulsCommitted,
		bank.FeatPlayerYellows:     fouler.Yellows,
		bank.FeatPlayerReds:        fouler.Reds,
		bank.FeatRefYellowsPerFoul: ref.YellowsPerFoul,
		bank.FeatRefRedsPerFoul:    ref.RedsPerFoul,
	})
	if err != nil {
		return "", fmt.Errorf("score card rate: %w", err)
	}

	weights := []float64{
		out.Classes[bank.ClassNone],
		out.Classes[bank.ClassYellow],
		out.Classes[bank.ClassRed],
	}
	for _, w := range weights {
		if math.IsNaN(w) || w < 0 {
			return "", fmt.Errorf("%w: card class weight %v", ErrInvalidProbability, w)
		}
	}

	idx, err := rng.PickWeighted(src, weights, 0)
	if err != nil {
		return "", fmt.Errorf("pick card: %w", err)
	}
	switch idx {
	case 1:
		return match.CardYellow, nil
	case 2:
		return match.CardRed, nil
	default:
		return "", nil
	}
}

func cardEvent(st match.State, side match.Side, playerID string, kind match.CardKind) match.Event {
	return match.Event{
		Minute:    st.Minute,
		Type:      match.EventCard,
		Side:      side,
		Player:    playerID,
		Card:      kind,
		HomeGoals: st.HomeGoals,
		AwayGoals: st.AwayGoals,
	}
}
