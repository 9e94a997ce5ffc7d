package match

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

var ErrEventOutOfOrder = errors.New("event minute precedes log tail")

type EventType string

const (
	EventKickoff      EventType = "kickoff"
	EventShot         EventType = "shot"
	EventGoal         EventType = "goal"
	EventFoul         EventType = "foul"
	EventCard         EventType = "card"
	EventSubstitution EventType = "substitution"
	EventFullTime     EventType = "full_time"
)

type ShotKind string

const (
	ShotHead ShotKind = "head"
	ShotFoot ShotKind = "foot"
)

type ShotOutcome string

const (
	OutcomeGoal ShotOutcome = "goal"
	OutcomeSave ShotOutcome = "save"
	OutcomeMiss ShotOutcome = "miss"
)

type CardKind string

const (
	CardYellow       CardKind = "yellow"
	CardSecondYellow CardKind = "second_yellow"
	CardRed          CardKind = "red"
)

// Event is a single minute-stamped occurrence. Only the fields relevant to
// the event type are populated.
type Event struct {
	Minute    int         `json:"minute"`
	Type      EventType   `json:"type"`
	Side      Side        `json:"side,omitempty"`
	Player    string      `json:"player,omitempty"`
	Assister  string      `json:"assister,omitempty"`
	ShotKind  ShotKind    `json:"shot_kind,omitempty"`
	Outcome   ShotOutcome `json:"outcome,omitempty"`
	Quality   float64     `json:"quality,omitempty"`
	Card      CardKind    `json:"card,omitempty"`
	PlayerOut string      `json:"player_out,omitempty"`
	PlayerIn  string      `json:"player_in,omitempty"`
	HomeGoals int         `json:"home_goals"`
	AwayGoals int         `json:"away_goals"`
}

// Log is an append-only, minute-ordered record of a single trial. It is not
// safe for concurrent use; each trial owns its own log.
type Log struct {
	events []Event
}

func NewLog() *Log {
	return &Log{}
}

// Append adds an event, enforcing non-decreasing minutes.
func (l *Log) Append(ev Event) error {
	if n := len(l.events); n > 0 && ev.Minute < l.events[n-1].Minute {
		return fmt.Errorf("%w: minute %d after minute %d", ErrEventOutOfOrder, ev.Minute, l.events[n-1].Minute)
	}
	l.events = append(l.events, ev)
	return nil
}

func (l *Log) Len() int {
	return len(l.events)
}

// Events returns a copy so callers cannot break the ordering invariant.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// FinalScore reads the score from the last appended event.
func (l *Log) FinalScore() (home, away int) {
	if n := len(l.events); n > 0 {
		return l.events[n-1].HomeGoals, l.events[n-1].AwayGoals
	}
	return 0, 0
}

// CountType tallies events of one type, optionally filtered by side. An empty
// side matches both teams.
func (l *Log) CountType(t EventType, side Side) int {
	n := 0
	for _, ev := range l.events {
		if ev.Type != t {
			continue
		}
		if side != "" && ev.Side != side {
			continue
		}
		n++
	}
	return n
}

func (l *Log) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(l.events)
}

// Render formats the log as a human-readable timeline, one event per line.
func (l *Log) Render() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, ev := range l.events {
		fmt.Fprintf(buf, "%3d' [%d-%d] %s", ev.Minute, ev.HomeGoals, ev.AwayGoals, ev.Type)
		if ev.Side != "" {
			fmt.Fprintf(buf, " %s", ev.Side)
		}
		switch ev.Type {
		case EventShot, EventGoal:
			fmt.Fprintf(buf, " %s shot by %s", ev.ShotKind, ev.Player)
			if ev.Assister != "" {
				fmt.Fprintf(buf, " (assist %s)", ev.Assister)
			}
			fmt.Fprintf(buf, " xg=%.3f %s", ev.Quality, ev.Outcome)
		case EventFoul:
			fmt.Fprintf(buf, " by %s", ev.Player)
		case EventCard:
			fmt.Fprintf(buf, " %s for %s", ev.Card, ev.Player)
		case EventSubstitution:
			fmt.Fprintf(buf, " %s off, %s on", ev.PlayerOut, ev.PlayerIn)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}
