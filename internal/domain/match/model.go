package match

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidContext = errors.New("invalid match context")
)

const (
	RegulationMinutes = 90
	HalftimeMinute    = 45
)

// Side identifies a team within a match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// StateCategory is the weighted bucketing of a score or player-count
// difference, seen from one team's perspective. Two-goal (or two-man) leads
// and larger collapse into the +/-1.5 buckets.
type StateCategory float64

const (
	StateTrailingBig StateCategory = -1.5
	StateTrailing    StateCategory = -1
	StateLevel       StateCategory = 0
	StateLeading     StateCategory = 1
	StateLeadingBig  StateCategory = 1.5
)

// CategoryForDiff buckets a signed difference into a StateCategory.
func CategoryForDiff(diff int) StateCategory {
	switch {
	case diff <= -2:
		return StateTrailingBig
	case diff == -1:
		return StateTrailing
	case diff == 0:
		return StateLevel
	case diff == 1:
		return StateLeading
	default:
		return StateLeadingBig
	}
}

// Status collapses a StateCategory into the three-way view used by foul and
// substitution modifiers.
type Status string

const (
	StatusTrailing Status = "trailing"
	StatusLevel    Status = "level"
	StatusLeading  Status = "leading"
)

func (c StateCategory) Status() Status {
	switch {
	case c < 0:
		return StatusTrailing
	case c > 0:
		return StatusLeading
	default:
		return StatusLevel
	}
}

// Segment is the 15-minute block of the match clock, 1 through 6. Stoppage
// minutes past 90 stay in segment 6.
type Segment int

func SegmentForMinute(minute int) Segment {
	switch {
	case minute <= 15:
		return 1
	case minute <= 30:
		return 2
	case minute <= 45:
		return 3
	case minute <= 60:
		return 4
	case minute <= 75:
		return 5
	default:
		return 6
	}
}

// State is the per-minute snapshot every predictor feature derives from. It
// is recomputed at the top of each tick before any sampling happens.
type State struct {
	Minute        int
	Segment       Segment
	HomeGoals     int
	AwayGoals     int
	HomeState     StateCategory
	AwayState     StateCategory
	HomePlayerDif StateCategory
	AwayPlayerDif StateCategory
}

// Recompute refreshes the derived buckets from the raw score and red-card
// counts for the given minute.
func (s *State) Recompute(minute, homeGoals, awayGoals, homeReds, awayReds int) {
	s.Minute = minute
	s.Segment = SegmentForMinute(minute)
	s.HomeGoals = homeGoals
	s.AwayGoals = awayGoals
	s.HomeState = CategoryForDiff(homeGoals - awayGoals)
	s.AwayState = CategoryForDiff(awayGoals - homeGoals)
	s.HomePlayerDif = CategoryForDiff(awayReds - homeReds)
	s.AwayPlayerDif = CategoryForDiff(homeReds - awayReds)
}

func (s State) StateFor(side Side) StateCategory {
	if side == SideHome {
		return s.HomeState
	}
	return s.AwayState
}

func (s State) PlayerDifFor(side Side) StateCategory {
	if side == SideHome {
		return s.HomePlayerDif
	}
	return s.AwayPlayerDif
}

func (s State) GoalsFor(side Side) int {
	if side == SideHome {
		return s.HomeGoals
	}
	return s.AwayGoals
}

// Context carries the fixture-level conditions that stay fixed for the whole
// match. InitialMinute and the initial goal counts support resuming a live
// match mid-way.
type Context struct {
	RefereeID        string
	HomeElevationDif float64
	AwayElevationDif float64
	AwayTravel       float64
	HomeRestDays     float64
	AwayRestDays     float64
	Temperature      float64
	IsRaining        bool
	Important        bool
	StoppageMinutes  int
	InitialMinute    int
	InitialHomeGoals int
	InitialAwayGoals int
}

func (c Context) Validate() error {
	if c.InitialMinute < 0 || c.InitialMinute >= RegulationMinutes {
		return fmt.Errorf("%w: initial minute %d outside [0,%d)", ErrInvalidContext, c.InitialMinute, RegulationMinutes)
	}
	if c.InitialHomeGoals < 0 || c.InitialAwayGoals < 0 {
		return fmt.Errorf("%w: negative initial score %d-%d", ErrInvalidContext, c.InitialHomeGoals, c.InitialAwayGoals)
	}
	if c.StoppageMinutes < 0 {
		return fmt.Errorf("%w: negative stoppage minutes %d", ErrInvalidContext, c.StoppageMinutes)
	}
	return nil
}

// TotalMinutes is the last minute the engine will simulate.
func (c Context) TotalMinutes() int {
	return RegulationMinutes + c.StoppageMinutes
}
