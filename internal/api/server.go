// Package api exposes a running watch session over a local HTTP control
// surface so scripts and the one-shot CLI commands can drive it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fernwright/trackcopy/internal/engine"
	"github.com/fernwright/trackcopy/internal/fileops"
	"github.com/fernwright/trackcopy/internal/logger"
)

// maxTrackingCount caps the tracked-listing window.
const maxTrackingCount = 1000

// Controller is the part of the watch session the API drives. Start and
// stop manage the watcher; Commit runs a full copy pass with a preset
// collision policy.
type Controller interface {
	StartTracking() error
	StopTracking() error
	Commit(ctx context.Context, policy engine.Policy, allowMissingTags bool) (*engine.Result, error)
}

// Server serves the control API for one session.
type Server struct {
	session    *engine.Session
	controller Controller
	log        logger.Logger
	httpServer *http.Server
}

// NewServer wires the API to a session and its controller. A nil log
// discards messages.
func NewServer(addr string, session *engine.Session, controller Controller, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{session: session, controller: controller, log: log}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route table. Exposed separately so tests can mount
// it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tracking/start", s.handleStartTracking)
	mux.HandleFunc("POST /api/tracking/stop", s.handleStopTracking)
	mux.HandleFunc("POST /api/copy_rename", s.handleCopyRename)
	mux.HandleFunc("GET /api/source_path", s.handleGetSourcePath)
	mux.HandleFunc("POST /api/source_path", s.handleSetSourcePath)
	mux.HandleFunc("GET /api/destination_path", s.handleGetDestPath)
	mux.HandleFunc("POST /api/destination_path", s.handleSetDestPath)
	mux.HandleFunc("GET /api/name_pattern", s.handleGetPattern)
	mux.HandleFunc("POST /api/name_pattern", s.handleSetPattern)
	mux.HandleFunc("GET /api/tracking", s.handleListTracked)
	mux.HandleFunc("DELETE /api/tracking", s.handleClearTracked)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

// ListenAndServe blocks serving the API until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.log.LogInfo(fmt.Sprintf("control API listening on http://%s", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStartTracking(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.StartTracking(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Tracking started"})
}

func (s *Server) handleStopTracking(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.StopTracking(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Tracking stopped"})
}

func (s *Server) handleCopyRename(w http.ResponseWriter, r *http.Request) {
	var req copyRenameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	policy, err := engine.ParsePolicy(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.controller.Commit(r.Context(), policy, req.AllowMissingTags)
	if err != nil {
		writeError(w, commitStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CopyResponse{
		Success:  true,
		Message:  "Copy and rename complete",
		Copied:   res.Copied,
		Ignored:  res.Ignored,
		Vanished: res.Vanished,
		LastFile: res.LastFinal,
	})
}

// commitStatus maps commit guard errors onto HTTP codes: bad preconditions
// are the caller's problem, contention and cancellation are conflicts.
func commitStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoTrackedFiles), errors.Is(err, engine.ErrNoDestination):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrCommitInFlight),
		errors.Is(err, engine.ErrBlockingConflicts),
		errors.Is(err, engine.ErrCommitCancelled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGetSourcePath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PathResponse{Success: true, Path: s.session.SourcePath()})
}

// handleSetSourcePath updates the source directory. An active watcher keeps
// watching the old directory until tracking is restarted.
func (s *Server) handleSetSourcePath(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == nil {
		writeError(w, http.StatusBadRequest, "Path parameter required")
		return
	}
	s.session.SetSourcePath(*req.Path)
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Source path updated"})
}

func (s *Server) handleGetDestPath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PathResponse{Success: true, Path: s.session.DestPath()})
}

func (s *Server) handleSetDestPath(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == nil {
		writeError(w, http.StatusBadRequest, "Path parameter required")
		return
	}
	s.session.SetDestPath(*req.Path)
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Destination path updated"})
}

func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PatternResponse{Success: true, Pattern: s.session.Pattern()})
}

func (s *Server) handleSetPattern(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pattern == nil {
		writeError(w, http.StatusBadRequest, "Pattern parameter required")
		return
	}
	s.session.SetPattern(*req.Pattern)
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Name pattern updated"})
}

func (s *Server) handleListTracked(w http.ResponseWriter, r *http.Request) {
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			count = n
		}
	}
	if count < 1 {
		count = 1
	}
	if count > maxTrackingCount {
		count = maxTrackingCount
	}

	// An unset or unreadable destination only suppresses "exists" states.
	destNames, err := fileops.ListNames(s.session.DestPath())
	if err != nil {
		destNames = nil
	}

	rows := s.session.TrackedListing(destNames, count)
	files := make([]TrackedFileInfo, 0, len(rows))
	for _, row := range rows {
		files = append(files, TrackedFileInfo{
			OriginalPath: row.Path,
			OriginalName: row.OriginalName,
			NewName:      row.NewName,
			State:        string(row.State),
		})
	}
	writeJSON(w, http.StatusOK, TrackingResponse{
		Success:       true,
		Files:         files,
		TotalCount:    s.session.TrackedCount(),
		ReturnedCount: len(files),
	})
}

func (s *Server) handleClearTracked(w http.ResponseWriter, r *http.Request) {
	s.session.ClearTracked()
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Tracked files cleared"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.session.Status()
	writeJSON(w, http.StatusOK, StatusResponse{
		Success:           true,
		IsTracking:        st.Tracking,
		TrackedFilesCount: st.TrackedCount,
		SourcePath:        st.SourcePath,
		DestinationPath:   st.DestPath,
		NamePattern:       st.Pattern,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
