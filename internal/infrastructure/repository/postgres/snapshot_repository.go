package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
)

// SnapshotRepository loads the historical aggregates a simulation batch runs
// against. The tables are write-once per ingest run, so every query here is a
// plain read with no locking concerns.
type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, leagueID string) (history.Snapshot, error) {
	var prior leaguePriorTableModel
	err := r.db.GetContext(ctx, &prior,
		`SELECT league_id, shots_per_minute FROM league_priors WHERE league_id = $1`, leagueID)
	if err != nil {
		if isNotFound(err) {
			return history.Snapshot{}, crerr.Wrapf(history.ErrSnapshotNotFound, "league %q", leagueID)
		}
		return history.Snapshot{}, fmt.Errorf("select league prior: %w", err)
	}

	snapshot := history.Snapshot{
		LeagueID:             leagueID,
		Players:              make(map[string]history.PlayerAggregates),
		Teams:                make(map[string]history.TeamAggregates),
		Referees:             make(map[string]history.RefereeAggregates),
		LeagueShotsPerMinute: prior.ShotsPerMinute,
	}

	if err := r.loadReferees(ctx, leagueID, &snapshot); err != nil {
		return history.Snapshot{}, err
	}
	if err := r.loadTeams(ctx, leagueID, &snapshot); err != nil {
		return history.Snapshot{}, err
	}
	if err := r.loadPlayers(ctx, leagueID, &snapshot); err != nil {
		return history.Snapshot{}, err
	}

	return snapshot, nil
}

func (r *SnapshotRepository) loadReferees(ctx context.Context, leagueID string, snapshot *history.Snapshot) error {
	var rows []refereeTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT referee_id, league_id, name, matches, fouls_per_match, yellows_per_foul, reds_per_foul
		 FROM referee_aggregates WHERE league_id = $1`, leagueID)
	if err != nil {
		return fmt.Errorf("select referee aggregates: %w", err)
	}

	for _, row := range rows {
		snapshot.Referees[row.RefereeID] = history.RefereeAggregates{
			RefereeID:      row.RefereeID,
			Name:           row.Name,
			Matches:        row.Matches,
			FoulsPerMatch:  row.FoulsPerMatch,
			YellowsPerFoul: row.YellowsPerFoul,
			RedsPerFoul:    row.RedsPerFoul,
		}
	}
	return nil
}

func (r *SnapshotRepository) loadTeams(ctx context.Context, leagueID string, snapshot *history.Snapshot) error {
	var rows []teamTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT team_id, league_id, name, avg_subs, fouls_committed_per90, fouls_drawn_per90
		 FROM team_aggregates WHERE league_id = $1`, leagueID)
	if err != nil {
		return fmt.Errorf("select team aggregates: %w", err)
	}

	var minuteRows []teamSubMinuteTableModel
	err = r.db.SelectContext(ctx, &minuteRows,
		`SELECT team_id, minute, occurrences
		 FROM team_sub_minutes WHERE league_id = $1 ORDER BY team_id, minute`, leagueID)
	if err != nil {
		return fmt.Errorf("select team sub minutes: %w", err)
	}

	minutesByTeam := make(map[string]map[int]int, len(rows))
	for _, row := range minuteRows {
		if minutesByTeam[row.TeamID] == nil {
			minutesByTeam[row.TeamID] = make(map[int]int)
		}
		minutesByTeam[row.TeamID][row.Minute] = row.Occurrences
	}

	for _, row := range rows {
		snapshot.Teams[row.TeamID] = history.TeamAggregates{
			TeamID:              row.TeamID,
			Name:                row.Name,
			AvgSubs:             row.AvgSubs,
			SubMinuteCounts:     minutesByTeam[row.TeamID],
			FoulsCommittedPer90: row.FoulsCommittedPer90,
			FoulsDrawnPer90:     row.FoulsDrawnPer90,
		}
	}
	return nil
}

func (r *SnapshotRepository) loadPlayers(ctx context.Context, leagueID string, snapshot *history.Snapshot) error {
	var rows []playerTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT player_id, league_id, team_id, name, goalkeeper,
		        minutes, headers, footers, key_passes, non_assisted_shots,
		        fouls_committed, fouls_drawn, yellows, reds,
		        off_shots, def_shots, off_head_quality, def_head_quality,
		        off_foot_quality, def_foot_quality,
		        finishing_ability, goalkeeper_ability,
		        sub_on_leading, sub_on_level, sub_on_trailing,
		        sub_off_leading, sub_off_level, sub_off_trailing
		 FROM player_aggregates WHERE league_id = $1`, leagueID)
	if err != nil {
		return fmt.Errorf("select player aggregates: %w", err)
	}

	for _, row := range rows {
		snapshot.Players[row.PlayerID] = history.PlayerAggregates{
			PlayerID:   row.PlayerID,
			Name:       row.Name,
			TeamID:     row.TeamID,
			Goalkeeper: row.Goalkeeper,

			Minutes:          row.Minutes,
			Headers:          row.Headers,
			Footers:          row.Footers,
			KeyPasses:        row.KeyPasses,
			NonAssistedShots: row.NonAssistedShots,
			FoulsCommitted:   row.FoulsCommitted,
			FoulsDrawn:       row.FoulsDrawn,
			Yellows:          row.Yellows,
			Reds:             row.Reds,

			OffShots:       row.OffShots,
			DefShots:       row.DefShots,
			OffHeadQuality: row.OffHeadQuality,
			DefHeadQuality: row.DefHeadQuality,
			OffFootQuality: row.OffFootQuality,
			DefFootQuality: row.DefFootQuality,

			FinishingAbility:  row.FinishingAbility,
			GoalkeeperAbility: row.GoalkeeperAbility,

			SubOnShare: map[string]float64{
				string(match.StatusLeading):  row.SubOnLeading,
				string(match.StatusLevel):    row.SubOnLevel,
				string(match.StatusTrailing): row.SubOnTrailing,
			},
			SubOffShare: map[string]float64{
				string(match.StatusLeading):  row.SubOffLeading,
				string(match.StatusLevel):    row.SubOffLevel,
				string(match.StatusTrailing): row.SubOffTrailing,
			},
		}
	}
	return nil
}
