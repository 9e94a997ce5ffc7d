package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	idgen "github.com/venomio/matchsim/internal/platform/id"
	"github.com/venomio/matchsim/internal/platform/logging"
	"github.com/venomio/matchsim/internal/usecase"
)

// Handler serves the simulation API. Fixture payloads name rosters by player
// ID; everything else comes from the historical snapshot.
type Handler struct {
	batchService *usecase.BatchService
	snapshots    history.Repository
	params       usecase.SimulationParams

	defaultTrials  int
	defaultWorkers int

	ids       idgen.Generator
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	batchService *usecase.BatchService,
	snapshots history.Repository,
	params usecase.SimulationParams,
	defaultTrials int,
	defaultWorkers int,
	ids idgen.Generator,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}

	return &Handler{
		batchService:   batchService,
		snapshots:      snapshots,
		params:         params,
		defaultTrials:  defaultTrials,
		defaultWorkers: defaultWorkers,
		ids:            ids,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type rosterPayload struct {
	TeamID   string   `json:"team_id" validate:"required"`
	Starters []string `json:"starters" validate:"required,len=11"`
	Bench    []string `json:"bench" validate:"max=12"`
	SubsUsed int      `json:"subs_used" validate:"min=0"`
}

type conditionsPayload struct {
	HomeElevationDif float64 `json:"home_elevation_dif"`
	AwayElevationDif float64 `json:"away_elevation_dif"`
	AwayTravel       float64 `json:"away_travel" validate:"min=0"`
	HomeRestDays     float64 `json:"home_rest_days" validate:"min=0"`
	AwayRestDays     float64 `json:"away_rest_days" validate:"min=0"`
	Temperature      float64 `json:"temperature"`
	IsRaining        bool    `json:"is_raining"`
	Important        bool    `json:"important"`
}

type simulationRequest struct {
	LeagueID  string        `json:"league_id" validate:"required"`
	RefereeID string        `json:"referee_id" validate:"required"`
	Home      rosterPayload `json:"home" validate:"required"`
	Away      rosterPayload `json:"away" validate:"required"`

	Conditions conditionsPayload `json:"conditions"`

	// Live-resume fields; all zero for a fresh match.
	InitialMinute    int `json:"initial_minute" validate:"min=0,max=89"`
	InitialHomeGoals int `json:"initial_home_goals" validate:"min=0"`
	InitialAwayGoals int `json:"initial_away_goals" validate:"min=0"`

	StoppageMinutes *int `json:"stoppage_minutes" validate:"omitempty,min=0,max=15"`

	Trials        int   `json:"trials" validate:"min=0,max=100000"`
	Seed          int64 `json:"seed"`
	IncludeEvents bool  `json:"include_events"`
}

// simulationResponse tags the batch aggregates with an opaque run ID so
// callers can correlate responses with server logs.
type simulationResponse struct {
	SimulationID string `json:"simulation_id"`
	usecase.BatchResult
}

func (h *Handler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSimulation")
	defer span.End()

	var req simulationRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode body: %v", errInvalidRequest, err))
		return
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}

	snapshot, err := h.snapshots.LoadSnapshot(ctx, req.LeagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	referee, ok := snapshot.Referees[req.RefereeID]
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: %q", usecase.ErrUnknownReferee, req.RefereeID))
		return
	}

	home, err := usecase.BuildTeam(snapshot, usecase.RosterInput{
		TeamID:   req.Home.TeamID,
		Starters: req.Home.Starters,
		Bench:    req.Home.Bench,
		SubsUsed: req.Home.SubsUsed,
	}, match.SideHome, h.params.SubCap)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	away, err := usecase.BuildTeam(snapshot, usecase.RosterInput{
		TeamID:   req.Away.TeamID,
		Starters: req.Away.Starters,
		Bench:    req.Away.Bench,
		SubsUsed: req.Away.SubsUsed,
	}, match.SideAway, h.params.SubCap)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stoppage := h.params.StoppageMinutes
	if req.StoppageMinutes != nil {
		stoppage = *req.StoppageMinutes
	}
	trials := req.Trials
	if trials == 0 {
		trials = h.defaultTrials
	}

	batchInput := usecase.BatchInput{
		Match: usecase.MatchInput{
			Home: home,
			Away: away,
			Context: match.Context{
				RefereeID:        req.RefereeID,
				HomeElevationDif: req.Conditions.HomeElevationDif,
				AwayElevationDif: req.Conditions.AwayElevationDif,
				AwayTravel:       req.Conditions.AwayTravel,
				HomeRestDays:     req.Conditions.HomeRestDays,
				AwayRestDays:     req.Conditions.AwayRestDays,
				Temperature:      req.Conditions.Temperature,
				IsRaining:        req.Conditions.IsRaining,
				Important:        req.Conditions.Important,
				StoppageMinutes:  stoppage,
				InitialMinute:    req.InitialMinute,
				InitialHomeGoals: req.InitialHomeGoals,
				InitialAwayGoals: req.InitialAwayGoals,
			},
			Referee:              referee,
			LeagueShotsPerMinute: snapshot.LeagueShotsPerMinute,
			Seed:                 req.Seed,
		},
		Trials:     trials,
		MaxWorkers: h.defaultWorkers,
	}

	simulationID, err := h.ids.NewID()
	if err != nil {
		writeError(ctx, w, fmt.Errorf("generate simulation id: %w", err))
		return
	}

	result, err := h.batchService.Run(ctx, batchInput)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !req.IncludeEvents {
		result.SampleEvents = nil
	}

	h.logger.InfoContext(ctx, "simulation served",
		"simulation_id", simulationID,
		"league_id", req.LeagueID,
		"home", req.Home.TeamID,
		"away", req.Away.TeamID,
		"trials", result.Trials,
		"failed", result.Failed,
	)
	writeSuccess(ctx, w, http.StatusOK, simulationResponse{
		SimulationID: simulationID,
		BatchResult:  result,
	})
}
