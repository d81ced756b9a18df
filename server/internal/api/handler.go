package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/obsidianstack/alertbridge/pkg/types"
	"github.com/obsidianstack/alertbridge/server/internal/alerts"
	"github.com/obsidianstack/alertbridge/server/internal/cooldown"
	"github.com/obsidianstack/alertbridge/server/internal/metrics"
	"github.com/obsidianstack/alertbridge/server/internal/notify"
)

// maxBodyBytes bounds the size of an inbound alert payload.
const maxBodyBytes = 1 << 20

// Gate is the cooldown check consulted before a voice call.
type Gate interface {
	Allow(ctx context.Context, key string) cooldown.Decision
}

// Handler routes inbound alerts to the chat and call dispatchers.
type Handler struct {
	chat    notify.Chat
	caller  notify.Caller
	gate    Gate
	metrics *metrics.Metrics
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(chat notify.Chat, caller notify.Caller, gate Gate, m *metrics.Metrics) http.Handler {
	h := &Handler{
		chat:    chat,
		caller:  caller,
		gate:    gate,
		metrics: m,
		logger:  slog.Default().With("component", "api"),
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/alert", h.alert)
	h.mux.HandleFunc("/api/alert_handler", h.alert)
	h.mux.HandleFunc("/healthz", h.health)
	h.mux.Handle("/metrics", m.Handler())

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// alert handles POST /api/alert.
func (h *Handler) alert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		textResp(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	w.Header().Set("X-Request-Id", reqID)
	logger := h.logger.With("request_id", reqID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Warn("rejecting oversized body", "limit_bytes", tooLarge.Limit)
		textResp(w, http.StatusRequestEntityTooLarge, "Payload Too Large")
		return
	}
	if err != nil {
		logger.Warn("rejecting unreadable body", "err", err)
		textResp(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("rejecting invalid JSON", "err", err)
		textResp(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Deliveries outlive a caller that hangs up; each has its own timeout.
	h.route(context.WithoutCancel(r.Context()), logger, alerts.Normalize(payload))

	textResp(w, http.StatusOK, "ok")
}

// health handles GET /healthz.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- routing ----------------------------------------------------------------

// route posts a to chat and, for callable severities, places a call unless
// the key is cooling down. Failures are logged and counted only.
func (h *Handler) route(ctx context.Context, logger *slog.Logger, a types.Alert) {
	logger = logger.With("source", a.Source, "severity", a.Severity, "key", a.Key)
	h.metrics.AlertReceived(a.Source)
	logger.Info("alert received")

	err := h.chat.Send(ctx, a.Text)
	h.metrics.ChatResult(err)
	if err != nil {
		logger.Error("chat delivery failed", "err", err)
	}

	if !a.Severity.Callable() {
		logger.Debug("severity below call threshold")
		return
	}

	d := h.gate.Allow(ctx, a.Key)
	if d.LoadErr != nil {
		h.metrics.StateError(metrics.OpLoad)
		logger.Warn("cooldown state unreadable, treating as empty", "err", d.LoadErr)
	}
	if d.SaveErr != nil {
		h.metrics.StateError(metrics.OpSave)
		logger.Warn("cooldown state not saved", "err", d.SaveErr)
	}
	if !d.Granted {
		h.metrics.CallResult(metrics.CallSuppressed)
		logger.Info("cooldown active, skipping call", "last_call", humanize.Time(d.Last))
		return
	}

	if err := h.caller.Call(ctx, notify.ShortText(a.Text)); err != nil {
		h.metrics.CallResult(metrics.CallFailed)
		logger.Error("call failed", "err", err)
		return
	}
	h.metrics.CallResult(metrics.CallPlaced)
	logger.Info("call placed")
}

// --- helpers ----------------------------------------------------------------

func textResp(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, body) //nolint:errcheck
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
