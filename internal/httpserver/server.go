// internal/httpserver/server.go
//
// HTTP server wiring for the local web board.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoint: "/health".
//   - Page + board API behind the launch token: "/", /api/*.
//   - Mapping of engine errors to HTTP status codes.
//
// Notes:
//   - The server binds to a loopback address and serves one session; every
//     mutation goes through the session so undo and persistence behave as in
//     the terminal UI.
//   - Every mutating endpoint answers with the full board view.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/OriginOfChaos/Bearathon5/assets"
	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/objectives"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
)

// Server bundles router, session and launch token.
type Server struct {
	r    *chi.Mux
	sess *session.Session
	auth *Launcher
}

// New builds the board server for sess, guarded by auth.
func New(sess *session.Session, auth *Launcher) *Server {
	s := &Server{r: chi.NewRouter(), sess: sess, auth: auth}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(requestLog)

	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.With(s.requireToken()).Get("/", s.handleIndex)

	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(s.requireToken())

		r.Get("/board", s.handleBoard)
		r.Post("/cells/{row}/{col}/toggle", s.handleToggle)
		r.Post("/cells/{row}/{col}/replace", s.handleReplace)
		r.Get("/featured", s.handleFeaturedList)
		r.Post("/featured", s.handleFeatured)
		r.Post("/shuffle", s.simple(s.sess.Shuffle))
		r.Post("/wipe", s.simple(s.sess.Wipe))
		r.Post("/reset", s.simple(s.sess.Reset))
		r.Post("/undo", s.simple(s.sess.Undo))
		r.Get("/objectives", s.handleObjectives)
		r.Post("/objectives", s.handleAddObjective)
		r.Post("/objectives/remove", s.handleRemoveObjective)
		r.Get("/objectives/export", s.handleExport)
	})

	// unknown paths answer with the API error shape
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	log.Info().Str("addr", addr).Msg("web board listening")
	fmt.Println("Open", s.auth.URL(addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router returns the board router; tests drive it with httptest.
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType marks API responses as JSON unless a handler overrides it.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

// ------------------------------ BOARD --------------------------------------

// replaceReq is the payload of POST /api/cells/{row}/{col}/replace and
// POST /api/featured. An empty body means a random draw.
type replaceReq struct {
	Random bool   `json:"random"`
	Label  string `json:"label"`
}

type labelReq struct {
	Label string `json:"label"`
}

type toggleRes struct {
	Status bingo.Status `json:"status"`
	Board  bingo.View   `json:"board"`
}

type objectiveRes struct {
	Changed    bool          `json:"changed"`
	Objectives []bingo.Entry `json:"objectives"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.IndexHTML()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "no_page", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.writeBoard(w)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	row, col, ok := cellParams(w, r)
	if !ok {
		return
	}
	st, err := s.sess.Toggle(r.Context(), row, col)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toggleRes{Status: st, Board: s.sess.View()})
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	row, col, ok := cellParams(w, r)
	if !ok {
		return
	}
	req, ok := decodeReplace(w, r)
	if !ok {
		return
	}
	if err := s.sess.Replace(r.Context(), row, col, req.Random, req.Label); err != nil {
		writeErr(w, err)
		return
	}
	s.writeBoard(w)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReplace(w, r)
	if !ok {
		return
	}
	if err := s.sess.ReplaceFeatured(r.Context(), req.Random, req.Label); err != nil {
		writeErr(w, err)
		return
	}
	s.writeBoard(w)
}

func (s *Server) handleFeaturedList(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string][]string{"featured": s.sess.Featured()})
}

// simple adapts a body-less session operation.
func (s *Server) simple(op func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		s.writeBoard(w)
	}
}

func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(objectiveRes{Objectives: s.sess.Objectives()})
}

func (s *Server) handleAddObjective(w http.ResponseWriter, r *http.Request) {
	var req labelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	added, err := s.sess.AddObjective(r.Context(), req.Label)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(objectiveRes{Changed: added, Objectives: s.sess.Objectives()})
}

func (s *Server) handleRemoveObjective(w http.ResponseWriter, r *http.Request) {
	var req labelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	removed, err := s.sess.RemoveObjective(r.Context(), req.Label)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(objectiveRes{Changed: removed, Objectives: s.sess.Objectives()})
}

// handleExport streams the catalog in objective-file format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	entries := s.sess.Objectives()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="objectives.txt"`)
	if err := objectives.Write(w, labels); err != nil {
		log.Warn().Err(err).Msg("export objectives")
	}
}

// ------------------------------ helpers ------------------------------------

func (s *Server) writeBoard(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(s.sess.View())
}

func cellParams(w http.ResponseWriter, r *http.Request) (row, col int, ok bool) {
	row, err1 := strconv.Atoi(chi.URLParam(r, "row"))
	col, err2 := strconv.Atoi(chi.URLParam(r, "col"))
	if err1 != nil || err2 != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_index", "row and col must be integers")
		return 0, 0, false
	}
	return row, col, true
}

// decodeReplace reads a replaceReq. An empty body selects a random draw.
func decodeReplace(w http.ResponseWriter, r *http.Request) (replaceReq, bool) {
	req := replaceReq{Random: true}
	if r.ContentLength == 0 {
		return req, true
	}
	req.Random = false
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", err.Error())
		return req, false
	}
	if req.Label == "" {
		req.Random = true
	}
	return req, true
}

// errorCode maps engine and session errors to a status and a short code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, bingo.ErrIndexOutOfRange):
		return http.StatusBadRequest, "index_out_of_range"
	case errors.Is(err, bingo.ErrInvalidLabel):
		return http.StatusBadRequest, "invalid_label"
	case errors.Is(err, bingo.ErrDuplicateLabel):
		return http.StatusBadRequest, "duplicate_label"
	case errors.Is(err, bingo.ErrUnknownFeatured):
		return http.StatusBadRequest, "unknown_featured"
	case errors.Is(err, bingo.ErrConfiguration):
		return http.StatusBadRequest, "configuration"
	case errors.Is(err, bingo.ErrEmptyCatalog):
		return http.StatusConflict, "empty_catalog"
	case errors.Is(err, bingo.ErrInsufficientObjectives):
		return http.StatusConflict, "insufficient_objectives"
	case errors.Is(err, bingo.ErrObjectiveInUse):
		return http.StatusConflict, "objective_in_use"
	case errors.Is(err, session.ErrNothingToUndo):
		return http.StatusConflict, "nothing_to_undo"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeErr(w http.ResponseWriter, err error) {
	code, name := errorCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("board operation")
	}
	writeJSONError(w, code, name, err.Error())
}

func writeJSONError(w http.ResponseWriter, code int, name, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": name, "message": msg})
}
