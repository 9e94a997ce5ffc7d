package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/venomio/matchsim/internal/config"
	"github.com/venomio/matchsim/internal/domain/history"
	"github.com/venomio/matchsim/internal/domain/match"
	"github.com/venomio/matchsim/internal/infrastructure/predictor"
	"github.com/venomio/matchsim/internal/infrastructure/repository/memory"
	"github.com/venomio/matchsim/internal/infrastructure/repository/postgres"
	"github.com/venomio/matchsim/internal/interfaces/httpapi"
	idgen "github.com/venomio/matchsim/internal/platform/id"
	"github.com/venomio/matchsim/internal/platform/logging"
	"github.com/venomio/matchsim/internal/usecase"
)

// NewHTTPServer wires repositories, the simulation services, and the HTTP
// router into a server. The returned cleanup closes the database handle when
// one was opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	cleanup := func() error { return nil }

	snapshots, dbCleanup, err := newSnapshotRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if dbCleanup != nil {
		cleanup = dbCleanup
	}

	params, err := simulationParams(cfg)
	if err != nil {
		return nil, nil, err
	}

	bank := predictor.NewBank(predictor.DefaultWeights())
	engine := usecase.NewEngine(bank, params, logger)
	batch := usecase.NewBatchService(engine, logger)

	handler := httpapi.NewHandler(batch, snapshots, params, cfg.DefaultTrials, cfg.MaxWorkers, idgen.NewRandomGenerator(), logger)
	router := httpapi.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newSnapshotRepository(cfg config.Config, logger *logging.Logger) (history.Repository, func() error, error) {
	if !cfg.DBEnabled {
		logger.Info("using in-memory history snapshots", "reason", "DB_ENABLED=false")
		return memory.NewSeededRepository(), nil, nil
	}

	db, err := connectDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect history database: %w", err)
	}

	logger.Info("using postgres history snapshots", "database", dbNameFromURL(cfg.DBURL))

	return postgres.NewSnapshotRepository(db), db.Close, nil
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func simulationParams(cfg config.Config) (usecase.SimulationParams, error) {
	params := usecase.DefaultSimulationParams()
	params.SubCap = cfg.SubCap
	params.StoppageMinutes = cfg.StoppageMinutes
	params.SaveSplit = cfg.SaveSplit
	params.FoulFactors.Home = cfg.FoulHomeFactor
	params.FoulFactors.Away = cfg.FoulAwayFactor

	status, err := statusMap(cfg.FoulStatusFactors, params.FoulFactors.Status)
	if err != nil {
		return usecase.SimulationParams{}, fmt.Errorf("foul status factors: %w", err)
	}
	params.FoulFactors.Status = status

	out, err := statusMap(cfg.SubOutMultipliers, params.SubMultipliers.Out)
	if err != nil {
		return usecase.SimulationParams{}, fmt.Errorf("sub out multipliers: %w", err)
	}
	params.SubMultipliers.Out = out

	in, err := statusMap(cfg.SubInMultipliers, params.SubMultipliers.In)
	if err != nil {
		return usecase.SimulationParams{}, fmt.Errorf("sub in multipliers: %w", err)
	}
	params.SubMultipliers.In = in

	return params, nil
}

// statusMap overlays configured factors on top of the defaults so a partial
// override keeps the remaining statuses intact.
func statusMap(overrides map[string]float64, defaults map[match.Status]float64) (map[match.Status]float64, error) {
	out := make(map[match.Status]float64, len(defaults))
	for status, factor := range defaults {
		out[status] = factor
	}

	for key, factor := range overrides {
		switch match.Status(key) {
		case match.StatusLeading, match.StatusLevel, match.StatusTrailing:
			out[match.Status(key)] = factor
		default:
			return nil, fmt.Errorf("unknown status %q", key)
		}
	}

	return out, nil
}
