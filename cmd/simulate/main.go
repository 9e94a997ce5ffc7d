package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc/pool"

	"github.com/venomio/matchsim/internal/config"
	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/infrastructure/predictor"
	"github.com/venomio/matchsim/internal/infrastructure/repository/memory"
	"github.com/venomio/matchsim/internal/platform/logging"
	"github.com/venomio/matchsim/internal/usecase"
)

// fixture mirrors one POST /v1/simulations payload so fixture files can be
// replayed against the API later.
type fixture struct {
	LeagueID  string `json:"league_id"`
	RefereeID string `json:"referee_id"`

	Home roster `json:"home"`
	Away roster `json:"away"`

	Conditions conditions `json:"conditions"`

	InitialMinute    int `json:"initial_minute"`
	InitialHomeGoals int `json:"initial_home_goals"`
	InitialAwayGoals int `json:"initial_away_goals"`

	StoppageMinutes *int `json:"stoppage_minutes"`

	Trials int   `json:"trials"`
	Seed   int64 `json:"seed"`
}

type roster struct {
	TeamID   string   `json:"team_id"`
	Starters []string `json:"starters"`
	Bench    []string `json:"bench"`
	SubsUsed int      `json:"subs_used"`
}

type conditions struct {
	HomeElevationDif float64 `json:"home_elevation_dif"`
	AwayElevationDif float64 `json:"away_elevation_dif"`
	AwayTravel       float64 `json:"away_travel"`
	HomeRestDays     float64 `json:"home_rest_days"`
	AwayRestDays     float64 `json:"away_rest_days"`
	Temperature      float64 `json:"temperature"`
	IsRaining        bool    `json:"is_raining"`
	Important        bool    `json:"important"`
}

type fixtureResult struct {
	Fixture string              `json:"fixture"`
	Result  usecase.BatchResult `json:"result"`
	Error   string              `json:"error,omitempty"`
}

func main() {
	fixturesPath := flag.String("fixtures", "", "path to a JSON array of fixtures (default: built-in demo fixture)")
	trials := flag.Int("trials", 0, "override trial count for every fixture")
	seed := flag.Int64("seed", 0, "override base seed for every fixture")
	workers := flag.Int("workers", 0, "max concurrent fixtures (default GOMAXPROCS)")
	events := flag.Bool("events", false, "include the sample event timeline in the output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(logging.LevelWarn)
	logging.SetDefault(logger)

	fixtures, err := loadFixtures(*fixturesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixtures: %v\n", err)
		os.Exit(1)
	}

	params := usecase.DefaultSimulationParams()
	params.SubCap = cfg.SubCap
	params.StoppageMinutes = cfg.StoppageMinutes
	params.SaveSplit = cfg.SaveSplit

	engine := usecase.NewEngine(predictor.NewBank(predictor.DefaultWeights()), params, logger)
	batch := usecase.NewBatchService(engine, logger)
	snapshots := memory.NewSeededRepository()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := make([]fixtureResult, len(fixtures))
	var mu sync.Mutex

	runner := pool.New().WithMaxGoroutines(maxGoroutines(*workers))
	for i, fx := range fixtures {
		runner.Go(func() {
			out := runFixture(ctx, batch, snapshots, params, cfg, fx, *trials, *seed, i)
			mu.Lock()
			results[i] = out
			mu.Unlock()
		})
	}
	runner.Wait()

	failed := 0
	for i := range results {
		if !*events {
			results[i].Result.SampleEvents = nil
		}
		if results[i].Error != "" {
			failed++
		}
	}

	encoder := sonic.ConfigDefault.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "encode results: %v\n", err)
		os.Exit(1)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func runFixture(
	ctx context.Context,
	batch *usecase.BatchService,
	snapshots history.Repository,
	params usecase.SimulationParams,
	cfg config.Config,
	fx fixture,
	trialsOverride int,
	seedOverride int64,
	index int,
) fixtureResult {
	name := fmt.Sprintf("%s vs %s", fx.Home.TeamID, fx.Away.TeamID)
	out := fixtureResult{Fixture: name}

	snapshot, err := snapshots.LoadSnapshot(ctx, fx.LeagueID)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	referee, ok := snapshot.Referees[fx.RefereeID]
	if !ok {
		out.Error = fmt.Sprintf("unknown referee %q", fx.RefereeID)
		return out
	}

	home, err := usecase.BuildTeam(snapshot, usecase.RosterInput{
		TeamID: fx.Home.TeamID, Starters: fx.Home.Starters, Bench: fx.Home.Bench, SubsUsed: fx.Home.SubsUsed,
	}, match.SideHome, params.SubCap)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	away, err := usecase.BuildTeam(snapshot, usecase.RosterInput{
		TeamID: fx.Away.TeamID, Starters: fx.Away.Starters, Bench: fx.Away.Bench, SubsUsed: fx.Away.SubsUsed,
	}, match.SideAway, params.SubCap)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	stoppage := params.StoppageMinutes
	if fx.StoppageMinutes != nil {
		stoppage = *fx.StoppageMinutes
	}
	trials := fx.Trials
	if trialsOverride > 0 {
		trials = trialsOverride
	}
	if trials == 0 {
		trials = cfg.DefaultTrials
	}
	seed := fx.Seed
	if seedOverride != 0 {
		seed = seedOverride + int64(index)
	}

	result, err := batch.Run(ctx, usecase.BatchInput{
		Match: usecase.MatchInput{
			Home: home,
			Away: away,
			Context: match.Context{
				RefereeID:        fx.RefereeID,
				HomeElevationDif: fx.Conditions.HomeElevationDif,
				AwayElevationDif: fx.Conditions.AwayElevationDif,
				AwayTravel:       fx.Conditions.AwayTravel,
				HomeRestDays:     fx.Conditions.HomeRestDays,
				AwayRestDays:     fx.Conditions.AwayRestDays,
				Temperature:      fx.Conditions.Temperature,
				IsRaining:        fx.Conditions.IsRaining,
				Important:        fx.Conditions.Important,
				StoppageMinutes:  stoppage,
				InitialMinute:    fx.InitialMinute,
				InitialHomeGoals: fx.InitialHomeGoals,
				InitialAwayGoals: fx.InitialAwayGoals,
			},
			Referee:              referee,
			LeagueShotsPerMinute: snapshot.LeagueShotsPerMinute,
			Seed:                 seed,
		},
		Trials:     trials,
		MaxWorkers: cfg.MaxWorkers,
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Result = result
	return out
}

func loadFixtures(path string) ([]fixture, error) {
	if path == "" {
		return []fixture{demoFixture()}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fixtures []fixture
	if err := sonic.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("%s contains no fixtures", path)
	}

	return fixtures, nil
}

func demoFixture() fixture {
	return fixture{
		LeagueID:  memory.DemoLeagueID,
		RefereeID: memory.DemoRefereeID,
		Home:      demoRoster(memory.DemoTeamIDs[0]),
		Away:      demoRoster(memory.DemoTeamIDs[1]),
		Trials:    1000,
		Seed:      1,
	}
}

func demoRoster(teamID string) roster {
	var starters, bench []string
	for i := 1; i <= 16; i++ {
		id := fmt.Sprintf("%s-p%02d", teamID, i)
		if i <= 11 {
			starters = append(starters, id)
		} else {
			bench = append(bench, id)
		}
	}
	return roster{TeamID: teamID, Starters: starters, Bench: bench}
}

func maxGoroutines(workers int) int {
	if workers > 0 {
		return workers
	}
	return runtime.GOMAXPROCS(0)
}
