package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"

	"schedscan/internal/config"
	"schedscan/internal/dom"
	"schedscan/internal/ics"
	appLog "schedscan/internal/log"
	"schedscan/internal/metrics"
	"schedscan/internal/model"
	"schedscan/internal/schedule"
)

// maxRequestBytes caps POST /api/extract bodies.
const maxRequestBytes = 4 << 20

// Server provides the HTTP API for ad-hoc extraction and stored source
// results.
type Server struct {
	cfg       *config.Config
	store     *schedule.Store
	refresher *schedule.Refresher
	metrics   *metrics.Metrics
	router    chi.Router
}

// NewServer constructs a new Server. refresher and m may be nil.
func NewServer(cfg *config.Config, store *schedule.Store, refresher *schedule.Refresher, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		refresher: refresher,
		metrics:   m,
		router:    chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
			r.Use(s.basicAuthMiddleware)
		}

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/refresh", s.handleRefresh)
		r.Get("/api/sources", s.handleSources)
		r.Get("/api/sources/{id}", s.handleSource)
		r.Post("/api/sources/{id}/refresh", s.handleRefreshSource)
		r.Get("/api/sources/{id}/calendar.ics", s.handleCalendar)
		r.Get("/api/sources/{id}/occurrences", s.handleOccurrences)
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedscan", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).String(),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// extractRequest is the JSON body accepted by POST /api/extract. Text, when
// set, replaces the visible text derived from HTML.
type extractRequest struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

// handleExtract runs the arbitrator on the posted document.
//
// POST /api/extract
//   - text/html:        the document itself
//   - text/plain:       visible text only (no element tree)
//   - application/json: {"html": "...", "text": "..."}
//
// The accepted strategy is reported in the X-Extraction-Strategy header.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	snap, err := snapshotFromRequest(r.Header.Get("Content-Type"), body)
	if err != nil {
		appLog.Debug("api extract: bad request", "error", err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strategy, res := schedule.Extract(snap, s.metrics)
	appLog.Info("api extract",
		"strategy", strategy.String(),
		"confidence", res.Confidence,
		"event_count", len(res.Events),
	)
	w.Header().Set("X-Extraction-Strategy", strategy.String())
	writeJSON(w, http.StatusOK, res)
}

func snapshotFromRequest(contentType string, body []byte) (dom.Snapshot, error) {
	mediaType := "text/html"
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return dom.Snapshot{}, eris.New("invalid content type")
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		var req extractRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return dom.Snapshot{}, eris.New("invalid JSON body")
		}
		if req.HTML == "" {
			return dom.FromText(req.Text), nil
		}
		if req.Text != "" {
			return dom.ParseWithText(strings.NewReader(req.HTML), req.Text)
		}
		return dom.ParseString(req.HTML)
	case "text/plain":
		return dom.FromText(string(body)), nil
	case "text/html", "application/xhtml+xml":
		return dom.ParseString(string(body))
	default:
		return dom.Snapshot{}, eris.Errorf("unsupported content type %s", mediaType)
	}
}

// handleRefresh re-extracts every configured source before responding.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}
	if err := s.refresher.RefreshAll(r.Context()); err != nil {
		if errors.Is(err, schedule.ErrRefreshInProgress) {
			writeError(w, http.StatusConflict, "refresh already in progress")
			return
		}
		appLog.Error("api refresh failed", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleRefreshSource(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}
	entry, err := s.refresher.RefreshOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown source")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleCalendar exports a source's stored events as weekly recurring
// iCalendar events within the configured term.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	term, err := ics.TermFromConfig(s.cfg)
	if err != nil {
		appLog.Error("api calendar: invalid export term", err)
		writeError(w, http.StatusInternalServerError, "invalid export term")
		return
	}

	name := entry.Source.Name
	if name == "" {
		name = entry.Source.ID
	}
	cal, skipped, err := ics.Export(entry.Result.Events, ics.ExportOptions{Term: term, Name: name})
	if err != nil {
		appLog.Error("api calendar: export failed", err, "id", entry.Source.ID)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+safeFilename(entry.Source.ID)+`.ics"`)
	w.Header().Set("X-Skipped-Events", strconv.Itoa(len(skipped)))
	w.WriteHeader(http.StatusOK)
	if err := ics.Write(w, cal); err != nil {
		appLog.Error("api calendar: write failed", err, "id", entry.Source.ID)
	}
}

// occurrencesResponse is the JSON response shape for
// /api/sources/{id}/occurrences.
type occurrencesResponse struct {
	Occurrences     []model.Occurrence `json:"occurrences"`
	Skipped         []ics.Skipped      `json:"skipped,omitempty"`
	TruncatedUIDs   []string           `json:"truncated_uids,omitempty"`
	RangeStart      time.Time          `json:"range_start"`
	RangeEnd        time.Time          `json:"range_end"`
	DisplayTimeZone string             `json:"display_timezone"`
}

// handleOccurrences returns a source's concrete meetings within a window.
//
// GET /api/sources/{id}/occurrences?days=7&backfill=1
//   - days:     how many days ahead to include (default 7)
//   - backfill: how many past days to include (default 1)
func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}

	term, err := ics.TermFromConfig(s.cfg)
	if err != nil {
		appLog.Error("api occurrences: invalid export term", err)
		writeError(w, http.StatusInternalServerError, "invalid export term")
		return
	}

	now := time.Now().In(term.Location)
	rangeStart := now.AddDate(0, 0, -backfill)
	rangeEnd := now.AddDate(0, 0, days)

	res, err := ics.Expand(entry.Result.Events, ics.ExpandOptions{
		Term:       term,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		appLog.Error("api occurrences: expand failed", err, "id", entry.Source.ID)
		writeError(w, http.StatusInternalServerError, "failed to expand events")
		return
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{
		Occurrences:     res.Occurrences,
		Skipped:         res.Skipped,
		TruncatedUIDs:   res.TruncatedEvents,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		DisplayTimeZone: term.Location.String(),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (schedule.Entry, bool) {
	id := chi.URLParam(r, "id")
	entry, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown source")
		return schedule.Entry{}, false
	}
	return entry, true
}

func safeFilename(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
