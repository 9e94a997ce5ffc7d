package usecase

import (
	"errors"
	"testing"

	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/domain/squad"
	"github.com/venomio/matchsim/internal/platform/rng"
)

func lineupState(minute int) match.State {
	var st match.State
	st.Recompute(minute, 0, 0, 0, 0)
	return st
}

func TestMaybeSubstituteNoWindow(t *testing.T) {
	t.Parallel()

	home, _, _, _ := seededFixture(t)
	m := NewLineupManager(DefaultSubMultipliers())

	events, err := m.MaybeSubstitute(rng.New(1), lineupState(17), home)
	if err != nil {
		t.Fatalf("quiet minute errored: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("quiet minute produced %d events", len(events))
	}
}

func TestMaybeSubstituteSwaps(t *testing.T) {
	t.Parallel()

	home, _, _, _ := seededFixture(t)
	m := NewLineupManager(DefaultSubMultipliers())

	// Pick a window the roster builder allocated.
	var minute, due int
	for w, n := range home.SubWindows {
		minute, due = w, n
		break
	}

	for _, p := range home.Active() {
		p.MinutesOnPitch = minute
	}
	before := home.SubsRemaining

	st := lineupState(minute)
	events, err := m.MaybeSubstitute(rng.New(9), st, home)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if len(events) != due {
		t.Fatalf("got %d events want %d", len(events), due)
	}
	if home.SubsRemaining != before-due {
		t.Fatalf("budget: got %d want %d", home.SubsRemaining, before-due)
	}
	if got := len(home.Active()); got != 11 {
		t.Fatalf("active count changed to %d", got)
	}

	for _, ev := range events {
		if ev.Type != match.EventSubstitution || ev.PlayerOut == "" || ev.PlayerIn == "" {
			t.Fatalf("malformed substitution event: %+v", ev)
		}
	}

	if err := home.CheckConservation(16); err != nil {
		t.Fatalf("conservation: %v", err)
	}
}

func TestMaybeSubstituteExhaustedBudget(t *testing.T) {
	t.Parallel()

	home, _, _, _ := seededFixture(t)
	m := NewLineupManager(DefaultSubMultipliers())

	var minute int
	for w := range home.SubWindows {
		minute = w
		break
	}
	home.SubsRemaining = 0

	_, err := m.MaybeSubstitute(rng.New(2), lineupState(minute), home)
	if !errors.Is(err, ErrRosterExhausted) {
		t.Fatalf("expected ErrRosterExhausted, got %v", err)
	}
	if home.SubsRemaining != 0 {
		t.Fatalf("budget went negative")
	}
}

func TestMaybeSubstituteEmptyBench(t *testing.T) {
	t.Parallel()

	home, _, _, _ := seededFixture(t)
	m := NewLineupManager(DefaultSubMultipliers())

	var minute int
	for w := range home.SubWindows {
		minute = w
		break
	}
	for _, p := range home.Bench() {
		p.Status = squad.StatusSubstituted
	}

	_, err := m.MaybeSubstitute(rng.New(2), lineupState(minute), home)
	if !errors.Is(err, ErrRosterExhausted) {
		t.Fatalf("expected ErrRosterExhausted, got %v", err)
	}
}

func TestSubstitutedPlayersNeverReenter(t *testing.T) {
	t.Parallel()

	home, _, _, _ := seededFixture(t)
	m := NewLineupManager(DefaultSubMultipliers())

	windows := make([]int, 0, len(home.SubWindows))
	for w := range home.SubWindows {
		windows = append(windows, w)
	}

	src := rng.New(33)
	seen := map[string]struct{}{}
	for _, minute := range windows {
		events, err := m.MaybeSubstitute(src, lineupState(minute), home)
		if err != nil && !errors.Is(err, ErrRosterExhausted) {
			t.Fatalf("substitute: %v", err)
		}
		for _, ev := range events {
			if _, dup := seen[ev.PlayerIn]; dup {
				t.Fatalf("player %s came on twice", ev.PlayerIn)
			}
			seen[ev.PlayerIn] = struct{}{}
		}
	}

	for _, p := range home.Players {
		if p.Status == squad.StatusSubstituted {
			if _, wasIn := seen[p.ID]; wasIn {
				t.Fatalf("substituted player %s re-entered", p.ID)
			}
		}
	}
}
