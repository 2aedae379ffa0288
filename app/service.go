// Package app wires the configuration into a running matching service: the
// store backend, engines, manager, reassignment service, metric sinks, the
// MQTT status listener and the HTTP API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apienvelope "github.com/skyops/fleetmatch/api"
	apiassignments "github.com/skyops/fleetmatch/api/assignments"
	apiconflicts "github.com/skyops/fleetmatch/api/conflicts"
	apifleet "github.com/skyops/fleetmatch/api/fleet"
	apireassign "github.com/skyops/fleetmatch/api/reassign"
	"github.com/skyops/fleetmatch/config"
	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/decision"
	coremetrics "github.com/skyops/fleetmatch/core/metrics"
	"github.com/skyops/fleetmatch/core/reassign"
	"github.com/skyops/fleetmatch/core/reassign/logging"
	"github.com/skyops/fleetmatch/core/store"
	"github.com/skyops/fleetmatch/infra/logger"
	"github.com/skyops/fleetmatch/infra/metrics"
	"github.com/skyops/fleetmatch/infra/mqtt"
	"github.com/skyops/fleetmatch/infra/storage/sheet"
	"github.com/skyops/fleetmatch/infra/storage/sqlite"
	"github.com/skyops/fleetmatch/internal/eventbus"
)

// Service orchestrates the matching engine and its collaborators.
type Service struct {
	Manager   *assignment.Manager
	Reassign  *reassign.Service
	Conflicts *conflict.Engine
	Decisions *decision.Engine

	store       store.Store
	logStore    logging.LogStore
	listener    *mqtt.StatusListener
	bus         eventbus.EventBus
	sink        coremetrics.Sink
	log         logger.Logger
	apiAddr     string
	sweepEvery  time.Duration
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := newStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	logStore, err := newLogStore(cfg.Logging)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("log store: %w", err)
	}

	conflicts := conflict.NewEngine()
	decisions := decision.NewEngine(conflicts, cfg.Decision.Weights)

	mgr, err := assignment.NewManager(ctx, st, conflicts, logger.New("assignment"))
	if err != nil {
		_ = st.Close()
		_ = logStore.Close()
		return nil, fmt.Errorf("assignment manager: %w", err)
	}
	svc, err := reassign.NewService(mgr, decisions, conflicts, logStore, logger.New("reassign"))
	if err != nil {
		_ = st.Close()
		_ = logStore.Close()
		return nil, fmt.Errorf("reassign service: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	mgr.SetBus(bus)
	svc.SetBus(bus)
	if sink != nil {
		mgr.SetMetricsSink(sink)
		svc.SetMetricsSink(sink)
	}

	s := &Service{
		Manager:     mgr,
		Reassign:    svc,
		Conflicts:   conflicts,
		Decisions:   decisions,
		store:       st,
		logStore:    logStore,
		bus:         bus,
		sink:        sink,
		log:         logg,
		apiAddr:     cfg.API.Addr,
		sweepEvery:  time.Duration(cfg.Reassign.SweepIntervalSeconds) * time.Second,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	if cfg.MQTT.Enabled {
		listener, err := mqtt.NewStatusListener(cfg.MQTT, mgr, svc)
		if err != nil {
			return nil, fmt.Errorf("mqtt listener: %w", err)
		}
		s.listener = listener
	}
	return s, nil
}

// Handler builds the HTTP API routing table.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/fleet", apifleet.NewFleetHandler(s.Manager))
	mux.Handle("/api/assignments", apiassignments.NewAssignHandler(s.Manager))
	mux.Handle("/api/assignments/release", apiassignments.NewReleaseHandler(s.Manager))
	mux.Handle("/api/assignments/history", apiassignments.NewHistoryHandler(s.Manager))
	mux.Handle("/api/assignments/candidates", apiassignments.NewCandidatesHandler(s.Manager, s.Decisions))
	mux.Handle("/api/conflicts", apiconflicts.NewScanHandler(s.Manager, s.Conflicts))
	mux.Handle("/api/reassign/sweep", apireassign.NewSweepHandler(s.Reassign, s.log))
	mux.Handle("/api/reassign/process", apireassign.NewProcessHandler(s.Reassign))
	mux.Handle("/api/reassign/log", apireassign.NewLogHandler(s.Reassign))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		apienvelope.OK(w, nil)
	})
	return mux
}

// Run starts the HTTP API, the Prometheus endpoint and the periodic urgent
// sweep, then blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.apiAddr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	if s.promEnabled {
		go func() {
			if err := metrics.ServeScrapes(ctx, ":"+s.promPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.sweepEvery > 0 {
		go s.sweepLoop(ctx)
	}

	s.log.Infof("listening on %s", s.apiAddr)
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		s.log.Errorf("http server: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	return runErr
}

func (s *Service) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reassign.ProcessAll(ctx); err != nil && err != reassign.ErrSweepInProgress {
				s.log.Errorf("periodic sweep: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if s.sink != nil {
		_ = s.sink.Close()
	}
	if err := s.logStore.Close(); err != nil {
		return err
	}
	return s.store.Close()
}

func newStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sheet":
		return sheet.NewStore(cfg.Path)
	case "sqlite":
		return sqlite.NewStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %s", cfg.Backend)
	}
}

func newLogStore(cfg config.LoggingConfig) (logging.LogStore, error) {
	switch cfg.Backend {
	case "memory":
		return logging.NewMemoryStore(), nil
	case "jsonl":
		return logging.NewJSONLStore(cfg.Path)
	case "sqlite":
		return logging.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown logging backend %s", cfg.Backend)
	}
}
