package memory

import (
	"fmt"

	"github.com/venomio/matchsim/internal/domain/history"
)

// DemoLeagueID is the league served by SeedSnapshot.
const DemoLeagueID = "demo"

// DemoTeamIDs are the two squads in the seeded snapshot, in home/away order
// for the demo fixture.
var DemoTeamIDs = [2]string{"demo-atletico", "demo-rovers"}

// DemoRefereeID is the referee in the seeded snapshot.
const DemoRefereeID = "demo-referee"

// SeedSnapshot builds a small but complete snapshot: two 16-man squads, one
// referee, and a league shot-rate prior. Player aggregates are spread so
// selection code has meaningful weights to work with.
func SeedSnapshot() history.Snapshot {
	snapshot := history.Snapshot{
		LeagueID:             DemoLeagueID,
		Players:              make(map[string]history.PlayerAggregates),
		Teams:                make(map[string]history.TeamAggregates),
		Referees:             make(map[string]history.RefereeAggregates),
		LeagueShotsPerMinute: 0.055,
	}

	snapshot.Referees[DemoRefereeID] = history.RefereeAggregates{
		RefereeID:      DemoRefereeID,
		Name:           "A. Whistler",
		Matches:        120,
		FoulsPerMatch:  23.5,
		YellowsPerFoul: 0.14,
		RedsPerFoul:    0.006,
	}

	for t, teamID := range DemoTeamIDs {
		snapshot.Teams[teamID] = history.TeamAggregates{
			TeamID:              teamID,
			Name:                teamID,
			AvgSubs:             4.2,
			SubMinuteCounts:     map[int]int{46: 18, 60: 25, 68: 22, 75: 30, 82: 19, 87: 12},
			FoulsCommittedPer90: 11.5 + float64(t),
			FoulsDrawnPer90:     10.8,
		}

		for i := 0; i < 16; i++ {
			playerID := fmt.Sprintf("%s-p%02d", teamID, i+1)
			p := history.PlayerAggregates{
				PlayerID:   playerID,
				Name:       fmt.Sprintf("Player %02d", i+1),
				TeamID:     teamID,
				Goalkeeper: i == 0,

				Minutes:          2400 - float64(i)*90,
				Headers:          float64((i * 3) % 14),
				Footers:          float64(8 + (i*7)%30),
				KeyPasses:        float64((i * 5) % 25),
				NonAssistedShots: float64(2 + i%6),
				FoulsCommitted:   float64(10 + (i*4)%30),
				FoulsDrawn:       float64(8 + (i*3)%20),
				Yellows:          float64(i % 7),
				Reds:             float64(i % 9 / 8),

				OffShots:       0.04 + float64(i%8)*0.004,
				DefShots:       0.045 + float64(i%6)*0.003,
				OffHeadQuality: 0.3 + float64(i%5)*0.05,
				DefHeadQuality: 0.28 + float64(i%4)*0.04,
				OffFootQuality: 0.35 + float64(i%6)*0.05,
				DefFootQuality: 0.33 + float64(i%5)*0.04,

				FinishingAbility:  -0.4 + float64(i%9)*0.1,
				GoalkeeperAbility: 0,

				SubOnShare: map[string]float64{
					"leading": 0.25, "level": 0.4, "trailing": 0.35,
				},
				SubOffShare: map[string]float64{
					"leading": 0.35, "level": 0.4, "trailing": 0.25,
				},
			}
			if p.Goalkeeper {
				p.Headers = 0
				p.Footers = 0
				p.KeyPasses = 0
				p.GoalkeeperAbility = 0.2
			}
			snapshot.Players[playerID] = p
		}
	}

	return snapshot
}

// NewSeededRepository is SeedSnapshot pre-loaded into a repository.
func NewSeededRepository() *SnapshotRepository {
	repo := NewSnapshotRepository()
	repo.Put(SeedSnapshot())
	return repo
}
