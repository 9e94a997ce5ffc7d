package history

import (
	"context"
	"errors"
)

var ErrSnapshotNotFound = errors.New("history snapshot not found")

// PlayerAggregates is a player's historical sample, accumulated upstream and
// loaded once per batch. All rates are raw counts paired with Minutes so
// consumers decide their own normalization.
type PlayerAggregates struct {
	PlayerID   string
	Name       string
	TeamID     string
	Goalkeeper bool

	Minutes          float64
	Headers          float64
	Footers          float64
	KeyPasses        float64
	NonAssistedShots float64
	FoulsCommitted   float64
	FoulsDrawn       float64
	Yellows          float64
	Reds             float64

	OffShots       float64
	DefShots       float64
	OffHeadQuality float64
	DefHeadQuality float64
	OffFootQuality float64
	DefFootQuality float64

	FinishingAbility  float64
	GoalkeeperAbility float64

	// Share of historical appearances starting on the pitch versus coming on,
	// split by the team's match status at the time.
	SubOnShare  map[string]float64
	SubOffShare map[string]float64
}

// TeamAggregates carries team-level substitution history.
type TeamAggregates struct {
	TeamID string
	Name   string

	// AvgSubs is the historical mean number of substitutions per match.
	AvgSubs float64
	// SubMinuteCounts maps a match minute to how often a substitution was
	// made at that minute.
	SubMinuteCounts map[int]int

	FoulsCommittedPer90 float64
	FoulsDrawnPer90     float64
}

// RefereeAggregates is a referee's per-match discipline profile.
type RefereeAggregates struct {
	RefereeID      string
	Name           string
	Matches        float64
	FoulsPerMatch  float64
	YellowsPerFoul float64
	RedsPerFoul    float64
}

// Snapshot is the immutable slice of history a batch simulates against.
type Snapshot struct {
	LeagueID string
	Players  map[string]PlayerAggregates
	Teams    map[string]TeamAggregates
	Referees map[string]RefereeAggregates

	// LeagueShotsPerMinute is the league-wide prior the SPM model shrinks
	// low-sample teams toward.
	LeagueShotsPerMinute float64
}

// Repository loads snapshots from whatever backs the historical store.
type Repository interface {
	LoadSnapshot(ctx context.Context, leagueID string) (Snapshot, error)
}
