package postgres

type leaguePriorTableModel struct {
	LeagueID       string  `db:"league_id"`
	ShotsPerMinute float64 `db:"shots_per_minute"`
}

type refereeTableModel struct {
	RefereeID      string  `db:"referee_id"`
	LeagueID       string  `db:"league_id"`
	Name           string  `db:"name"`
	Matches        float64 `db:"matches"`
	FoulsPerMatch  float64 `db:"fouls_per_match"`
	YellowsPerFoul float64 `db:"yellows_per_foul"`
	RedsPerFoul    float64 `db:"reds_per_foul"`
}

type teamTableModel struct {
	TeamID              string  `db:"team_id"`
	LeagueID            string  `db:"league_id"`
	Name                string  `db:"name"`
	AvgSubs             float64 `db:"avg_subs"`
	FoulsCommittedPer90 float64 `db:"fouls_committed_per90"`
	FoulsDrawnPer90     float64 `db:"fouls_drawn_per90"`
}

type teamSubMinuteTableModel struct {
	TeamID      string `db:"team_id"`
	Minute      int    `db:"minute"`
	Occurrences int    `db:"occurrences"`
}

type playerTableModel struct {
	PlayerID   string `db:"player_id"`
	LeagueID   string `db:"league_id"`
	TeamID     string `db:"team_id"`
	Name       string `db:"name"`
	Goalkeeper bool   `db:"goalkeeper"`

	Minutes          float64 `db:"minutes"`
	Headers          float64 `db:"headers"`
	Footers          float64 `db:"footers"`
	KeyPasses        float64 `db:"key_passes"`
	NonAssistedShots float64 `db:"non_assisted_shots"`
	FoulsCommitted   float64 `db:"fouls_committed"`
	FoulsDrawn       float64 `db:"fouls_drawn"`
	Yellows          float64 `db:"yellows"`
	Reds             float64 `db:"reds"`

	OffShots       float64 `db:"off_shots"`
	DefShots       float64 `db:"def_shots"`
	OffHeadQuality float64 `db:"off_head_quality"`
	DefHeadQuality float64 `db:"def_head_quality"`
	OffFootQuality float64 `db:"off_foot_quality"`
	DefFootQuality float64 `db:"def_foot_quality"`

	FinishingAbility  float64 `db:"finishing_ability"`
	GoalkeeperAbility float64 `db:"goalkeeper_ability"`

	SubOnLeading   float64 `db:"sub_on_leading"`
	SubOnLevel     float64 `db:"sub_on_level"`
	SubOnTrailing  float64 `db:"sub_on_trailing"`
	SubOffLeading  float64 `db:"sub_off_leading"`
	SubOffLevel    float64 `db:"sub_off_level"`
	SubOffTrailing float64 `db:"sub_off_trailing"`
}
