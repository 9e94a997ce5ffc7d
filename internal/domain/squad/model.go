package squad

import (
	"errors"
	"fmt"

	"github.com/venomio/matchsim/internal/domain/match"
)

var (
	ErrRosterInvalid = errors.New("invalid roster")
)

// PlayerStatus tracks where a player sits during a simulated match.
// Substituted and removed players never return to the pitch.
type PlayerStatus string

const (
	StatusActive      PlayerStatus = "active"
	StatusBench       PlayerStatus = "bench"
	StatusSubstituted PlayerStatus = "substituted"
	StatusRemoved     PlayerStatus = "removed"
)

// Player couples a player's historical aggregates with the mutable in-match
// counters the simulator updates each minute. Historical fields are read-only
// once a trial starts.
type Player struct {
	ID         string
	Name       string
	Goalkeeper bool

	// Historical sample.
	Minutes           float64
	Headers           float64
	Footers           float64
	KeyPasses         float64
	NonAssistedShots  float64
	FoulsCommitted    float64
	FoulsDrawn        float64
	Yellows           float64
	Reds              float64
	OffShots          float64
	DefShots          float64
	OffHeadQuality    float64
	DefHeadQuality    float64
	OffFootQuality    float64
	DefFootQuality    float64
	FinishingAbility  float64
	GoalkeeperAbility float64

	// Status-conditioned substitution tendencies, by the team's match status.
	SubOnTendency  map[match.Status]float64
	SubOffTendency map[match.Status]float64

	// In-match state.
	Status         PlayerStatus
	MinutesOnPitch int
	YellowsShown   int
}

func (p *Player) clone() *Player {
	cp := *p
	if p.SubOnTendency != nil {
		cp.SubOnTendency = make(map[match.Status]float64, len(p.SubOnTendency))
		for k, v := range p.SubOnTendency {
			cp.SubOnTendency[k] = v
		}
	}
	if p.SubOffTendency != nil {
		cp.SubOffTendency = make(map[match.Status]float64, len(p.SubOffTendency))
		for k, v := range p.SubOffTendency {
			cp.SubOffTendency[k] = v
		}
	}
	return &cp
}

// Team is one side's full matchday squad plus its substitution budget and
// historically derived substitution windows (minute -> how many swaps).
type Team struct {
	ID      string
	Name    string
	Side    match.Side
	Players []*Player

	SubsRemaining int
	SubWindows    map[int]int

	// Team-level foul profile carried from history.
	FoulsCommittedPer90 float64
	FoulsDrawnPer90     float64
}

// Validate checks the roster right before kickoff: exactly maxActive players
// on the pitch, no duplicates, and every player in a coherent status.
func (t *Team) Validate(maxActive int) error {
	seen := make(map[string]struct{}, len(t.Players))
	active := 0
	for _, p := range t.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player with empty id on team %s", ErrRosterInvalid, t.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player %s on team %s", ErrRosterInvalid, p.ID, t.ID)
		}
		seen[p.ID] = struct{}{}

		switch p.Status {
		case StatusActive:
			active++
		case StatusBench:
		default:
			return fmt.Errorf("%w: player %s starts in status %q", ErrRosterInvalid, p.ID, p.Status)
		}
	}
	if active != maxActive {
		return fmt.Errorf("%w: team %s fields %d players, need %d", ErrRosterInvalid, t.ID, active, maxActive)
	}
	if t.SubsRemaining < 0 {
		return fmt.Errorf("%w: team %s has negative substitution budget", ErrRosterInvalid, t.ID)
	}
	return nil
}

func (t *Team) Active() []*Player {
	return t.withStatus(StatusActive)
}

func (t *Team) Bench() []*Player {
	return t.withStatus(StatusBench)
}

func (t *Team) withStatus(status PlayerStatus) []*Player {
	out := make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// RedCount counts players lost to removal, which caps active capacity.
func (t *Team) RedCount() int {
	n := 0
	for _, p := range t.Players {
		if p.Status == StatusRemoved {
			n++
		}
	}
	return n
}

// Goalkeeper returns the active goalkeeper, or nil when the side has none on
// the pitch.
func (t *Team) Goalkeeper() *Player {
	for _, p := range t.Players {
		if p.Status == StatusActive && p.Goalkeeper {
			return p
		}
	}
	return nil
}

// TickMinutes credits one minute to everyone currently on the pitch.
func (t *Team) TickMinutes() {
	for _, p := range t.Players {
		if p.Status == StatusActive {
			p.MinutesOnPitch++
		}
	}
}

// CheckConservation verifies no player appeared or vanished mid-trial.
func (t *Team) CheckConservation(squadSize int) error {
	counts := map[PlayerStatus]int{}
	for _, p := range t.Players {
		counts[p.Status]++
	}
	total := counts[StatusActive] + counts[StatusBench] + counts[StatusSubstituted] + counts[StatusRemoved]
	if total != squadSize || total != len(t.Players) {
		return fmt.Errorf("%w: team %s status counts %v do not sum to squad size %d", ErrRosterInvalid, t.ID, counts, squadSize)
	}
	return nil
}

// DeepCopy duplicates the team and all players so concurrent trials never
// share mutable state.
func (t *Team) DeepCopy() *Team {
	cp := *t
	cp.Players = make([]*Player, len(t.Players))
	for i, p := range t.Players {
		cp.Players[i] = p.clone()
	}
	if t.SubWindows != nil {
		cp.SubWindows = make(map[int]int, len(t.SubWindows))
		for k, v := range t.SubWindows {
			cp.SubWindows[k] = v
		}
	}
	return &cp
}
