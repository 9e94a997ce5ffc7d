package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/venomio/matchsim/internal/infrastructure/predictor"
	"github.com/venomio/matchsim/internal/infrastructure/repository/memory"
	"github.com/venomio/matchsim/internal/platform/logging"
	"github.com/venomio/matchsim/internal/usecase"
)

func newTestServer() http.Handler {
	params := usecase.DefaultSimulationParams()
	engine := usecase.NewEngine(predictor.NewBank(predictor.DefaultWeights()), params, logging.NewNop())
	batch := usecase.NewBatchService(engine, logging.NewNop())
	handler := NewHandler(batch, memory.NewSeededRepository(), params, 8, 2, nil, logging.NewNop())
	return NewRouter(handler, logging.NewNop())
}

func demoRoster(teamID string) rosterPayload {
	var starters, bench []string
	for j := 1; j <= 16; j++ {
		id := fmt.Sprintf("%s-p%02d", teamID, j)
		if j <= 11 {
			starters = append(starters, id)
		} else {
			bench = append(bench, id)
		}
	}
	return rosterPayload{TeamID: teamID, Starters: starters, Bench: bench}
}

func demoRequest() simulationRequest {
	return simulationRequest{
		LeagueID:  memory.DemoLeagueID,
		RefereeID: memory.DemoRefereeID,
		Home:      demoRoster(memory.DemoTeamIDs[0]),
		Away:      demoRoster(memory.DemoTeamIDs[1]),
		Trials:    4,
		Seed:      42,
	}
}

func postSimulation(t *testing.T, server http.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := sonic.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/simulations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestRunSimulation(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	rec := postSimulation(t, server, demoRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			SimulationID string `json:"simulation_id"`
			usecase.BatchResult
		} `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Trials != 4 || envelope.Data.Succeeded != 4 {
		t.Fatalf("batch result: %+v", envelope.Data)
	}
	if envelope.Data.SimulationID == "" {
		t.Fatalf("missing simulation id")
	}
	// Events stay out of the payload unless asked for.
	if len(envelope.Data.SampleEvents) != 0 {
		t.Fatalf("sample events leaked into response")
	}
}

func TestRunSimulationIncludeEvents(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := demoRequest()
	req.IncludeEvents = true
	rec := postSimulation(t, server, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data usecase.BatchResult `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.SampleEvents) == 0 {
		t.Fatalf("expected sample events in response")
	}
}

func TestRunSimulationBadBody(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/simulations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestRunSimulationValidation(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := demoRequest()
	req.Home.Starters = req.Home.Starters[:10]
	rec := postSimulation(t, server, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestRunSimulationUnknownLeague(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := demoRequest()
	req.LeagueID = "nope"
	rec := postSimulation(t, server, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", rec.Code)
	}
}

func TestRunSimulationUnknownReferee(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := demoRequest()
	req.RefereeID = "nobody"
	rec := postSimulation(t, server, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", rec.Code)
	}
}
