// Package web serves Duality over HTTP: a JSON API for levels and rooms,
// and a websocket per participant that streams room snapshots and accepts
// keyboard, gamepad and touch input.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/games/duality"
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/storage"
)

const requestTimeout = 5 * time.Second

// Config holds the optional collaborators of a Server.
type Config struct {
	Store  *storage.Store // nil disables level saving and records
	Timing input.Timing   // rate limits for websocket gamepad and touch input
	Logger *log.Logger
}

// Server is the HTTP front end to a coordinator.
type Server struct {
	coordinator *coop.Coordinator
	store       *storage.Store
	timing      input.Timing
	log         *log.Logger
	router      *mux.Router
}

// NewServer creates a server routing into c.
func NewServer(c *coop.Coordinator, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		coordinator: c,
		store:       cfg.Store,
		timing:      cfg.Timing,
		log:         logger.WithPrefix("web"),
		router:      mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels", s.handleImportLevel).Methods("POST")
	api.HandleFunc("/levels/{id}", s.handleExportLevel).Methods("GET")

	api.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/rooms/{code}/join", s.handleJoinRoom).Methods("POST")
	api.HandleFunc("/rooms/{code}/commands", s.handleCommands).Methods("POST")

	// A socket without a code hosts a new room; with a code it joins one.
	s.router.HandleFunc("/ws", s.handleSocket)
	s.router.HandleFunc("/ws/{code}", s.handleSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps coordinator errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, coop.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, coop.ErrNotInRoom):
		return http.StatusForbidden
	case errors.Is(err, coop.ErrNotYourToken),
		errors.Is(err, coop.ErrRoomFull),
		errors.Is(err, coop.ErrAlreadyInRoom):
		return http.StatusConflict
	case errors.Is(err, coop.ErrTooManyRooms), errors.Is(err, coop.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"rooms":  s.coordinator.RoomCount(),
	})
}

// Level handlers

type levelSummary struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Order  int             `json:"order,omitempty"`
	Source registry.Source `json:"source"`
	Best   int             `json:"best,omitempty"`
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	infos := registry.List()
	out := make([]levelSummary, 0, len(infos))
	for _, info := range infos {
		sum := levelSummary{ID: info.ID, Title: info.Title, Order: info.Order, Source: info.Source}
		if s.store != nil {
			if best, ok, err := s.store.BestMoves(info.ID); err == nil && ok {
				sum.Best = best
			}
		}
		out = append(out, sum)
	}
	respondJSON(w, http.StatusOK, out)
}

// handleExportLevel writes a level in the exchange format, or as a YAML
// level file with ?format=yaml.
func (s *Server) handleExportLevel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	info, ok := registry.Info(id)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown level %q", id))
		return
	}
	data, err := registry.Level(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		body, err := levels.Encode(levels.Level{ID: info.ID, Name: info.Title, Order: info.Order, Data: data}, ".yaml")
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	body, err := core.MarshalLevel(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

type importRequest struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Level json.RawMessage `json:"level"`
}

// handleImportLevel validates an exchange-format level and adds it to the
// catalog, saving it to the database when one is configured.
func (s *Server) handleImportLevel(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if !validID(req.ID) {
		respondError(w, http.StatusBadRequest, "id must be lowercase letters, digits and dashes")
		return
	}
	if len(req.Level) == 0 {
		respondError(w, http.StatusBadRequest, "level is required")
		return
	}
	if info, ok := registry.Info(req.ID); ok && info.Source == registry.SourceCampaign {
		respondError(w, http.StatusConflict, fmt.Sprintf("level %q is built in", req.ID))
		return
	}

	data, err := core.UnmarshalLevel(req.Level)
	if err != nil {
		var ve core.ValidationError
		if errors.As(err, &ve) {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "code": ve.Code})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.store != nil {
		if err := s.store.SaveLevel(req.ID, req.Name, data); err != nil {
			s.log.Error("cannot save level", "level", req.ID, "error", err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	lvl := levels.Level{ID: req.ID, Name: req.Name, Data: data}
	if errs := duality.AddLevels(registry.SourceCustom, []levels.Level{lvl}); len(errs) > 0 {
		respondError(w, http.StatusConflict, errs[0].Error())
		return
	}

	s.log.Info("level imported", "level", req.ID)
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":       req.ID,
		"title":    lvl.Title(),
		"warnings": core.Lint(data),
	})
}

func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

// Room handlers
//
// Plain HTTP clients have no connection to hang a session on, so creating or
// joining a room hands back a session id that later commands must carry.

type roomRequest struct {
	Level string `json:"level"`
	Name  string `json:"name"`
	Solo  *bool  `json:"solo,omitempty"`
}

type roomResponse struct {
	Session coop.SessionID `json:"session"`
	Side    coop.Side      `json:"side"`
	Room    coop.RoomView  `json:"room"`
}

// decodeOptional reads a JSON body into v. An empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Level == "" {
		if all := registry.List(); len(all) > 0 {
			req.Level = all[0].ID
		}
	}
	if !registry.Exists(req.Level) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown level %q", req.Level))
		return
	}
	solo := req.Solo == nil || *req.Solo

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := coop.NewSessionID()
	view, err := s.coordinator.CreateRoom(ctx, id, req.Name, req.Level, solo)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, roomResponse{Session: id, Side: view.SideOf(id), Room: view})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := coop.NewSessionID()
	view, err := s.coordinator.JoinRoom(ctx, id, req.Name, mux.Vars(r)["code"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, roomResponse{Session: id, Side: view.SideOf(id), Room: view})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	view, ok := s.coordinator.Room(mux.Vars(r)["code"])
	if !ok {
		respondError(w, http.StatusNotFound, coop.ErrRoomNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type commandsRequest struct {
	Session  coop.SessionID `json:"session"`
	Commands []string       `json:"commands"`
}

type commandsResponse struct {
	Applied int           `json:"applied"`
	Cues    []string      `json:"cues"`
	Room    coop.RoomView `json:"room"`
}

// handleCommands applies a batch of commands in order and stops at the
// first one the room refuses.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	var req commandsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Session == "" {
		respondError(w, http.StatusBadRequest, "session is required")
		return
	}

	cmds := make([]input.Command, 0, len(req.Commands))
	for _, name := range req.Commands {
		cmd, ok := input.ParseCommand(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown command %q", name))
			return
		}
		cmds = append(cmds, cmd)
	}

	code := coop.NormalizeCode(mux.Vars(r)["code"])
	current, ok := s.coordinator.RoomOf(req.Session)
	if !ok || current.Code != code {
		respondError(w, http.StatusForbidden, coop.ErrNotInRoom.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp := commandsResponse{Cues: []string{}, Room: current}
	for _, cmd := range cmds {
		view, err := s.coordinator.Command(ctx, req.Session, cmd)
		if err != nil {
			respondJSON(w, statusFor(err), map[string]any{
				"error":   err.Error(),
				"applied": resp.Applied,
				"room":    resp.Room,
			})
			return
		}
		resp.Applied++
		resp.Cues = append(resp.Cues, view.Cues...)
		resp.Room = view
	}
	respondJSON(w, http.StatusOK, resp)
}
