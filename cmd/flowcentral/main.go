package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/flowcentral/flowcentral/internal/alerts"
	"github.com/flowcentral/flowcentral/internal/api"
	"github.com/flowcentral/flowcentral/internal/auth"
	"github.com/flowcentral/flowcentral/internal/catalog"
	"github.com/flowcentral/flowcentral/internal/config"
	"github.com/flowcentral/flowcentral/internal/engine"
	"github.com/flowcentral/flowcentral/internal/source"
	"github.com/flowcentral/flowcentral/internal/store"
	"github.com/flowcentral/flowcentral/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve the dashboard UI static files from this directory; leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("flowcentral starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"poll_interval", cfg.Monitor.PollInterval,
		"facilities", len(cfg.Monitor.Facilities),
	)

	// Threshold catalog: the builtin table unless a file overrides it.
	// Held behind an atomic pointer so the hot-reload watcher can swap it
	// under the poll loop.
	var cat atomic.Pointer[catalog.Catalog]
	if cfg.Monitor.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.Monitor.CatalogPath)
		if err != nil {
			slog.Error("failed to load threshold catalog", "path", cfg.Monitor.CatalogPath, "err", err)
			os.Exit(1)
		}
		cat.Store(loaded)
	} else {
		cat.Store(catalog.Builtin())
	}
	slog.Info("threshold catalog ready", "facilities", len(cat.Load().Facilities()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Monitor.CatalogPath != "" {
		go func() {
			err := config.WatchCatalog(ctx, cfg.Monitor.CatalogPath, func(updated *catalog.Catalog) {
				cat.Store(updated)
				slog.Info("threshold catalog hot-reloaded", "facilities", len(updated.Facilities()))
			})
			if err != nil {
				slog.Error("catalog watcher stopped", "err", err)
			}
		}()
	}

	// Shared SSO session and HTTP client for all facility sources.
	session, err := source.NewSession(cfg.Monitor.CookieFile)
	if err != nil {
		slog.Error("failed to open cookie session", "err", err)
		os.Exit(1)
	}
	client, err := source.NewClient(cfg.Monitor.Auth, cfg.Monitor.TLS, session.Jar())
	if err != nil {
		slog.Error("failed to build source client", "err", err)
		os.Exit(1)
	}

	var sources []*source.Source
	for _, fc := range cfg.Monitor.Facilities {
		profile, ok := cat.Load().Profile(fc.ID)
		if !ok {
			slog.Warn("facility not in threshold catalog, risks and capacity will degrade", "facility", fc.ID)
		}
		sources = append(sources, source.New(fc, client, profile.Aggregated))
		slog.Info("registered facility", "id", fc.ID, "aggregated", profile.Aggregated)
	}

	// Facility status store with background TTL eviction.
	st := store.New(cfg.Server.Snapshot.TTL)
	go st.Run(ctx)

	alertEngine := alerts.New(cfg.Server.Alerts)

	// WebSocket hub broadcasts the snapshot to UI clients every 5 seconds.
	hub := ws.New(st, 5*time.Second)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", auth.Middleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
		api.New(st, alertEngine),
	))
	httpMux.Handle("/ws/stream", hub)

	// Optional: serve the pre-built dashboard UI from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	// Poll loop: fetch, classify, validate, store, alert.
	go func() {
		origins := facilityOrigins(cfg.Monitor.Facilities)

		runAll := func() {
			for _, src := range sources {
				status := runCycle(ctx, src, cat.Load())
				st.Put(status)
				alertEngine.Evaluate(status.Facility, status.Risks)
			}
			if err := session.Save(origins...); err != nil {
				slog.Warn("failed to persist session cookies", "err", err)
			}
		}

		runAll()
		ticker := time.NewTicker(cfg.Monitor.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runAll()
			}
		}
	}()

	<-ctx.Done()
	slog.Info("flowcentral shutting down", "ws_clients", hub.Count())
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// runCycle fetches one facility's observations and turns them into a status:
// the CPT risk scan plus every capacity check the observations allow.
func runCycle(ctx context.Context, src *source.Source, cat *catalog.Catalog) *store.FacilityStatus {
	obs := src.Fetch(ctx)

	status := &store.FacilityStatus{
		Facility:  obs.Facility,
		FetchedAt: obs.FetchedAt,
		Errors:    obs.Errors,
	}

	loc := cat.Location()
	now := time.Now().In(loc)
	profile, inCatalog := cat.Profile(obs.Facility)

	if obs.Risks != nil {
		if !inCatalog {
			status.Errors = append(status.Errors,
				fmt.Sprintf("risk scan skipped: facility %s not in threshold catalog", obs.Facility))
		} else {
			if obs.Risks.Singles != nil {
				status.Risks = append(status.Risks,
					engine.Scan(obs.Facility, *obs.Risks.Singles, profile, engine.GroupSingles, loc, now)...)
			}
			if obs.Risks.Multis != nil {
				status.Risks = append(status.Risks,
					engine.Scan(obs.Facility, *obs.Risks.Multis, profile, engine.GroupMultis, loc, now)...)
			}
		}
	}

	plan, override := 0, 0
	if obs.Plan != nil {
		plan = *obs.Plan
	}
	if obs.Override != nil {
		override = *obs.Override
	}

	if obs.WIP != nil {
		status.Capacity = append(status.Capacity,
			engine.ValidateWIP(cat, obs.Facility, *obs.WIP, plan, override)...)
	}
	if obs.Processing != nil {
		status.Capacity = append(status.Capacity,
			engine.ValidateProcessing(obs.Processing.Rate,
				engine.RateReference{Name: engine.RefDefault, Value: float64(plan)},
				engine.RateReference{Name: engine.RefOverride, Value: float64(override)},
			)...)
	}
	if obs.Buffer != nil && inCatalog {
		status.Capacity = append(status.Capacity,
			engine.ValidateBuffer(*obs.Buffer, profile.Buffer))
	}

	slog.Info("facility cycle complete",
		"facility", obs.Facility,
		"risks", len(status.Risks),
		"active", status.ActiveRiskCount(),
		"checks", len(status.Capacity),
		"errors", len(status.Errors),
	)
	return status
}

// facilityOrigins collects the distinct scheme://host origins of every
// configured endpoint, used to persist session cookies per portal.
func facilityOrigins(facilities []config.Facility) []string {
	seen := make(map[string]bool)
	var origins []string
	for _, fc := range facilities {
		for _, raw := range []string{fc.MetricsURL, fc.CPTURL, fc.WIPURL, fc.ThroughputURL, fc.ProcessingURL, fc.BufferURL} {
			if raw == "" {
				continue
			}
			u, err := url.Parse(raw)
			if err != nil || u.Host == "" {
				continue
			}
			origin := u.Scheme + "://" + u.Host
			if !seen[origin] {
				seen[origin] = true
				origins = append(origins, origin)
			}
		}
	}
	return origins
}
