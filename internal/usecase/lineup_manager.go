package usecase

import (
	"fmt"

	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/squad"
	"github.com/venomio/matchsim/internal/platform/rng"
)

// SubMultipliers scale substitution weights by the team's match status.
// Out applies to leaving the pitch, In to coming on.
type SubMultipliers struct {
	Out map[match.Status]float64
	In  map[match.Status]float64
}

func DefaultSubMultipliers() SubMultipliers {
	return SubMultipliers{
		Out: map[match.Status]float64{
			match.StatusLeading:  1.1,
			match.StatusLevel:    1.0,
			match.StatusTrailing: 0.9,
		},
		In: map[match.Status]float64{
			match.StatusLeading:  0.9,
			match.StatusLevel:    1.0,
			match.StatusTrailing: 1.1,
		},
	}
}

// LineupManager performs substitutions at a team's historical windows.
// Substituted players never re-enter; removed players are never replaced.
type LineupManager struct {
	multipliers SubMultipliers
}

func NewLineupManager(multipliers SubMultipliers) *LineupManager {
	return &LineupManager{multipliers: multipliers}
}

// MaybeSubstitute runs the window check for one minute. It returns
// ErrRosterExhausted when a due window cannot be served; callers treat that
// as a skipped window, not a failed trial.
func (m *LineupManager) MaybeSubstitute(src rng.Source, st match.State, team *squad.Team) ([]match.Event, error) {
	due := team.SubWindows[st.Minute]
	if due == 0 {
		return nil, nil
	}
	if team.SubsRemaining <= 0 {
		return nil, fmt.Errorf("%w: team %s out of budget at minute %d", ErrRosterExhausted, team.ID, st.Minute)
	}

	status := st.StateFor(team.Side).Status()
	var events []match.Event
	for i := 0; i < due; i++ {
		if team.SubsRemaining <= 0 {
			break
		}

		active := team.Active()
		bench := team.Bench()
		if len(active) == 0 || len(bench) == 0 {
			if len(events) > 0 {
				return events, nil
			}
			return nil, fmt.Errorf("%w: team %s has no bench at minute %d", ErrRosterExhausted, team.ID, st.Minute)
		}

		out, err := m.pickOut(src, active, status)
		if err != nil {
			return events, err
		}
		in, err := m.pickIn(src, bench, status)
		if err != nil {
			return events, err
		}

		out.Status = squad.StatusSubstituted
		in.Status = squad.StatusActive
		team.SubsRemaining--

		events = append(events, match.Event{
			Minute:    st.Minute,
			Type:      match.EventSubstitution,
			Side:      team.Side,
			PlayerOut: out.ID,
			PlayerIn:  in.ID,
			HomeGoals: st.HomeGoals,
			AwayGoals: st.AwayGoals,
		})
	}

	return events, nil
}

// pickOut favors players who have been on the pitch longest, scaled by their
// own status-conditioned tendency to be withdrawn.
func (m *LineupManager) pickOut(src rng.Source, active []*squad.Player, status match.Status) (*squad.Player, error) {
	mult := multiplier(m.multipliers.Out, status)
	weights := make([]float64, len(active))
	for i, p := range active {
		weights[i] = float64(p.MinutesOnPitch) * tendency(p.SubOffTendency, status) * mult
	}
	idx, err := rng.PickWeighted(src, weights, 1)
	if err != nil {
		return nil, fmt.Errorf("pick outgoing player: %w", err)
	}
	return active[idx], nil
}

// pickIn favors fresh legs, scaled by the bench player's tendency to come on
// in this match status.
func (m *LineupManager) pickIn(src rng.Source, bench []*squad.Player, status match.Status) (*squad.Player, error) {
	mult := multiplier(m.multipliers.In, status)
	weights := make([]float64, len(bench))
	for i, p := range bench {
		weights[i] = 1 / (1 + float64(p.MinutesOnPitch)) * tendency(p.SubOnTendency, status) * mult
	}
	idx, err := rng.PickWeighted(src, weights, 1)
	if err != nil {
		return nil, fmt.Errorf("pick incoming player: %w", err)
	}
	return bench[idx], nil
}

func multiplier(table map[match.Status]float64, status match.Status) float64 {
	if f, ok := table[status]; ok {
		return f
	}
	return 1
}

func tendency(table map[match.Status]float64, status match.Status) float64 {
	if table == nil {
		return 1
	}
	if f, ok := table[status]; ok {
		return f
	}
	return 1
}
