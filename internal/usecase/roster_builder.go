package usecase

import (
	"fmt"
	"math"
	"sort"

	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/squad"
)

// RosterInput names one side's lineup for a fixture. SubsUsed supports
// mid-match entry where part of the budget is already spent.
type RosterInput struct {
	TeamID   string
	Starters []string
	Bench    []string
	SubsUsed int
}

// BuildTeam materializes a simulatable squad from the historical snapshot:
// player aggregates become Player records, the substitution budget comes from
// the team's historical average capped by the competition rule, and the
// budget is spread over the team's most common substitution minutes.
func BuildTeam(snapshot history.Snapshot, in RosterInput, side match.Side, subCap int) (*squad.Team, error) {
	teamAgg, ok := snapshot.Teams[in.TeamID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, in.TeamID)
	}

	team := &squad.Team{
		ID:                  in.TeamID,
		Name:                teamAgg.Name,
		Side:                side,
		FoulsCommittedPer90: teamAgg.FoulsCommittedPer90,
		FoulsDrawnPer90:     teamAgg.FoulsDrawnPer90,
	}

	for _, id := range in.Starters {
		p, err := buildPlayer(snapshot, id)
		if err != nil {
			return nil, err
		}
		p.Status = squad.StatusActive
		team.Players = append(team.Players, p)
	}
	for _, id := range in.Bench {
		p, err := buildPlayer(snapshot, id)
		if err != nil {
			return nil, err
		}
		p.Status = squad.StatusBench
		team.Players = append(team.Players, p)
	}

	budget := int(math.Round(teamAgg.AvgSubs))
	if budget > subCap {
		budget = subCap
	}
	budget -= in.SubsUsed
	if budget < 0 {
		budget = 0
	}
	if bench := len(in.Bench); budget > bench {
		budget = bench
	}
	team.SubsRemaining = budget
	team.SubWindows = subWindows(teamAgg.SubMinuteCounts, budget)

	return team, nil
}

func buildPlayer(snapshot history.Snapshot, id string) (*squad.Player, error) {
	agg, ok := snapshot.Players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
	}

	return &squad.Player{
		ID:         agg.PlayerID,
		Name:       agg.Name,
		Goalkeeper: agg.Goalkeeper,

		Minutes:          agg.Minutes,
		Headers:          agg.Headers,
		Footers:          agg.Footers,
		KeyPasses:        agg.KeyPasses,
		NonAssistedShots: agg.NonAssistedShots,
		FoulsCommitted:   agg.FoulsCommitted,
		FoulsDrawn:       agg.FoulsDrawn,
		Yellows:          agg.Yellows,
		Reds:             agg.Reds,

		OffShots:       agg.OffShots,
		DefShots:       agg.DefShots,
		OffHeadQuality: agg.OffHeadQuality,
		DefHeadQuality: agg.DefHeadQuality,
		OffFootQuality: agg.OffFootQuality,
		DefFootQuality: agg.DefFootQuality,

		FinishingAbility:  agg.FinishingAbility,
		GoalkeeperAbility: agg.GoalkeeperAbility,

		SubOnTendency:  statusMap(agg.SubOnShare),
		SubOffTendency: statusMap(agg.SubOffShare),
	}, nil
}

func statusMap(shares map[string]float64) map[match.Status]float64 {
	out := make(map[match.Status]float64, len(shares))
	for k, v := range shares {
		out[match.Status(k)] = v
	}
	return out
}

// subWindows spreads the substitution budget over the minutes the team
// historically substitutes at. One window for a single sub, two for two or
// three, three for a bigger budget; the budget round-robins across the chosen
// minutes earliest-first.
func subWindows(minuteCounts map[int]int, budget int) map[int]int {
	if budget <= 0 || len(minuteCounts) == 0 {
		return map[int]int{}
	}

	windows := 1
	switch {
	case budget >= 4:
		windows = 3
	case budget >= 2:
		windows = 2
	}
	if windows > len(minuteCounts) {
		windows = len(minuteCounts)
	}

	type minuteCount struct {
		minute int
		count  int
	}
	ranked := make([]minuteCount, 0, len(minuteCounts))
	for minute, count := range minuteCounts {
		ranked = append(ranked, minuteCount{minute: minute, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].minute < ranked[j].minute
	})

	picked := make([]int, 0, windows)
	for _, mc := range ranked[:windows] {
		picked = append(picked, mc.minute)
	}
	sort.Ints(picked)

	out := make(map[int]int, windows)
	for i := 0; i < budget; i++ {
		out[picked[i%len(picked)]]++
	}
	return out
}
