package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roster/internal/api"
	"roster/internal/config"
	"roster/internal/logging"
	"roster/internal/refresh"
)

// apiServer serves the daemon's HTTP endpoints: health, lookup, stats,
// refresh history, and the token-protected admin routes.
type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, errors.New("api server requires config and daemon")
	}

	srv := &apiServer{
		bind:   cfg.Server.Bind,
		token:  cfg.Server.APIToken,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/lookup", srv.handleLookup)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/refreshes", srv.handleRefreshes)
	mux.Handle("/admin/refresh", authMiddleware(srv.token, http.HandlerFunc(srv.handleRefresh)))
	mux.Handle("/admin/test-notification", authMiddleware(srv.token, http.HandlerFunc(srv.handleTestNotification)))

	// Lookups may wait on a full upstream download when the cache is cold,
	// so the write timeout must outlast the upstream timeout.
	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout() + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.bind, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server terminated", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.log().Info("api server listening", logging.String("addr", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log().Warn("api server shutdown failed", logging.Error(err))
	}
	s.listener = nil
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.Health{
		OK:     true,
		Uptime: api.FormatAge(s.daemon.Uptime()),
		Cache:  api.FromStore(s.daemon.store),
	})
}

func (s *apiServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	key := r.URL.Query().Get("key")
	if strings.TrimSpace(key) == "" {
		s.writeError(w, http.StatusBadRequest, "missing key parameter")
		return
	}

	store := s.daemon.store
	// A cache that has never been filled triggers a blocking lazy refresh;
	// a plain miss on a loaded cache is an ordinary not_found.
	if store.LastUpdate().IsZero() {
		result := s.daemon.Refresh(r.Context(), refresh.TriggerLazy)
		if result.Err != nil {
			s.writeError(w, http.StatusServiceUnavailable, "register cache unavailable: "+result.Err.Error())
			return
		}
		if !result.Started && result.SkipReason == refresh.SkipInFlight {
			s.writeError(w, http.StatusServiceUnavailable, "register cache is loading; retry shortly")
			return
		}
	}

	record, found := store.Lookup(key)
	s.writeJSON(w, http.StatusOK, api.FromLookup(key, record, found, time.Now(), store.Age()))
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats := api.StatsFromStore(s.daemon.store, s.daemon.cfg.CacheTTL())
	if last, err := s.daemon.LastRefresh(r.Context()); err != nil {
		s.log().Warn("journal read failed", logging.Error(err))
	} else if last != nil {
		record := api.FromJournalEntry(*last)
		stats.LastRefresh = &record
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleRefreshes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.daemon.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "journal read failed: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RefreshListResponse{Refreshes: api.FromJournalEntries(entries)})
}

func (s *apiServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	started, entries := s.daemon.ForceRefresh()
	s.writeJSON(w, http.StatusAccepted, api.RefreshResponse{
		OK:             true,
		RefreshStarted: started,
		Entries:        entries,
	})
}

func (s *apiServer) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sent, detail, err := s.daemon.TestNotification(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, detail+": "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.NotifyTestResponse{Sent: sent, Detail: detail})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Warn("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger
}
