package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ricochet1k/storymesh/internal/bridge"
	"github.com/ricochet1k/storymesh/internal/domain"
	"github.com/ricochet1k/storymesh/internal/metrics"
	"github.com/ricochet1k/storymesh/internal/queue"
)

// Handler routes transport requests to the bridge: websocket observers,
// input delivery, and run lifecycle control.
type Handler struct {
	runner *bridge.Runner
	hub    *bridge.Hub
	inputs *queue.InputQueue
	logger *slog.Logger
}

func NewHandler(runner *bridge.Runner, hub *bridge.Hub, inputs *queue.InputQueue, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runner: runner,
		hub:    hub,
		inputs: inputs,
		logger: logger,
	}
}

// Mount registers all routes on the provided router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/api/observe", h.observeWebSocket)
	r.Get("/api/run", h.getRun)
	r.Post("/api/run", h.startRun)
	r.Delete("/api/run", h.stopRun)
	r.Post("/api/input", h.postInput)
	r.Get("/api/status", h.getStatus)
	r.Handle("/metrics", promhttp.Handler())
}

type runResponse struct {
	State   string `json:"state"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	resp := runResponse{State: h.runner.State().String()}
	if outcome, err := h.runner.Outcome(); outcome != bridge.RunStateNotStarted {
		resp.Outcome = outcome.String()
		if err != nil {
			resp.Error = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	// The run must outlive this request.
	if err := h.runner.Start(context.WithoutCancel(r.Context())); err != nil {
		if errors.Is(err, bridge.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "engine is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Info("engine run started")
	writeJSON(w, http.StatusAccepted, runResponse{State: h.runner.State().String()})
}

func (h *Handler) stopRun(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Stop(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runResponse{State: h.runner.State().String()})
}

type inputRequest struct {
	Content string `json:"content"`
}

func (h *Handler) postInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.acceptInput(r, req.Content); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Status())
}

// acceptInput delivers one input line to the engine and echoes it to every
// observer on the next sweep.
func (h *Handler) acceptInput(r *http.Request, content string) error {
	if err := h.inputs.Send(r.Context(), content); err != nil {
		return err
	}
	metrics.InputReceived.Inc()
	h.hub.Enqueue(domain.NewUserInput(content))
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func generateID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
