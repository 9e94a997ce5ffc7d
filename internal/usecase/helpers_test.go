package usecase

import (
	"testing"

	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/predictor"
	"github.com/venomio/matchsim/internal/domain/squad"
	"github.com/venomio/matchsim/internal/infrastructure/repository/memory"
)

// fakeScorer returns canned outputs per model name.
type fakeScorer struct {
	outputs map[string]predictor.Output
	errs    map[string]error
}

func (f *fakeScorer) Score(model string, _ predictor.Features) (predictor.Output, error) {
	if err, ok := f.errs[model]; ok {
		return predictor.Output{}, err
	}
	if out, ok := f.outputs[model]; ok {
		return out, nil
	}
	return predictor.Output{}, nil
}

// seededFixture builds the demo fixture from the in-memory snapshot: two full
// squads, the demo referee, and the league prior.
func seededFixture(t *testing.T) (home, away *squad.Team, ref history.RefereeAggregates, prior float64) {
	t.Helper()

	snapshot := memory.SeedSnapshot()
	for i, teamID := range memory.DemoTeamIDs {
		var starters, bench []string
		for j := 1; j <= 16; j++ {
			id := teamID + "-p" + twoDigits(j)
			if j <= 11 {
				starters = append(starters, id)
			} else {
				bench = append(bench, id)
			}
		}
		side := match.SideHome
		if i == 1 {
			side = match.SideAway
		}
		team, err := BuildTeam(snapshot, RosterInput{
			TeamID:   teamID,
			Starters: starters,
			Bench:    bench,
		}, side, 5)
		if err != nil {
			t.Fatalf("build team %s: %v", teamID, err)
		}
		if i == 0 {
			home = team
		} else {
			away = team
		}
	}

	return home, away, snapshot.Referees[memory.DemoRefereeID], snapshot.LeagueShotsPerMinute
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
