package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/eugenenazirov/hpconf/internal/hyperparams"
	"github.com/eugenenazirov/hpconf/internal/macpo"
	"github.com/eugenenazirov/hpconf/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	maxDocumentBytes = 1 << 20
	documentSource   = "api"
	yamlContentType  = "application/yaml"
)

// Handler wires the document storage into HTTP handlers.
type Handler struct {
	storage storage.Storage

	defaultScenario string
	clock           func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDefaultScenario selects the scenario served when a request carries no
// scenario parameter. An explicit empty parameter still selects the defaults.
func WithDefaultScenario(name string) HandlerOption {
	return func(h *Handler) {
		h.defaultScenario = strings.TrimSpace(name)
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	_ = r

	resp := scenariosResponse{
		Scenarios:   snap.Document.Scenarios(),
		DefaultKeys: snap.Document.Defaults().Len(),
		Source:      snap.Source,
		LoadedAt:    snap.LoadedAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	scenario := h.requestedScenario(r)
	cfg := snap.Document.Resolve(scenario)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, newConfigResponse(scenario, cfg))
	case "yaml":
		out, err := hyperparams.Marshal(cfg)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		w.Header().Set("Content-Type", yamlContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	default:
		writeError(w, http.StatusBadRequest, "Invalid request", "format must be json or yaml")
	}
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	scenario := h.requestedScenario(r)
	cfg := snap.Document.Resolve(scenario)

	settings, err := macpo.Decode(cfg)
	if err != nil {
		var missing *macpo.MissingSettingError
		resp := errorResponse{Error: "Invalid settings", Details: err.Error()}
		if errors.As(err, &missing) {
			resp.Missing = missing.Keys
		}
		for _, e := range multierr.Errors(err) {
			var invalid *macpo.InvalidSettingError
			if errors.As(e, &invalid) {
				resp.Invalid = append(resp.Invalid, invalid.Key)
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp := settingsResponse{
		Scenario:    scenario,
		Applied:     cfg.Scenario() != "",
		UnknownKeys: macpo.UnknownKeys(cfg),
		Settings:    settings,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Invalid request", "document exceeds 1 MiB")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to read document: "+err.Error())
		return
	}

	doc, err := hyperparams.Parse(data)
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	if err := h.storage.Set(doc, documentSource); err != nil {
		writeInternalError(w, err)
		return
	}

	snap, err := h.storage.Get()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := scenariosResponse{
		Scenarios:   snap.Document.Scenarios(),
		DefaultKeys: snap.Document.Defaults().Len(),
		Source:      snap.Source,
		LoadedAt:    snap.LoadedAt,
		Message:     "Document updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if strings.TrimSpace(req.Document) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "document must not be empty")
		return
	}

	cfg, err := hyperparams.Resolve([]byte(req.Document), req.Scenario)
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newConfigResponse(req.Scenario, cfg))
}

func (h *Handler) requestedScenario(r *http.Request) string {
	query := r.URL.Query()
	if !query.Has("scenario") {
		return h.defaultScenario
	}
	return strings.TrimSpace(query.Get("scenario"))
}

func (h *Handler) snapshot(w http.ResponseWriter) (storage.Snapshot, bool) {
	snap, err := h.storage.Get()
	if err != nil {
		if errors.Is(err, storage.ErrNoDocument) {
			writeError(w, http.StatusServiceUnavailable, "No document", err.Error(), "Upload a document with PUT /api/document")
			return storage.Snapshot{}, false
		}
		writeInternalError(w, err)
		return storage.Snapshot{}, false
	}
	return snap, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func newConfigResponse(requested string, cfg hyperparams.ResolvedConfig) configResponse {
	return configResponse{
		Scenario: requested,
		Applied:  cfg.Scenario() != "",
		Settings: cfg,
	}
}

type resolveRequest struct {
	Document string `json:"document"`
	Scenario string `json:"scenario"`
}

type configResponse struct {
	Scenario string                     `json:"scenario"`
	Applied  bool                       `json:"applied"`
	Settings hyperparams.ResolvedConfig `json:"settings"`
}

type settingsResponse struct {
	Scenario    string         `json:"scenario"`
	Applied     bool           `json:"applied"`
	UnknownKeys []string       `json:"unknownKeys,omitempty"`
	Settings    macpo.Settings `json:"settings"`
}

type scenariosResponse struct {
	Scenarios   []string  `json:"scenarios"`
	DefaultKeys int       `json:"defaultKeys"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loadedAt"`
	Message     string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Details    string   `json:"details,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Invalid    []string `json:"invalid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

// writeDocumentError maps loader failures: syntax problems are the client's
// malformed request, layout problems are well-formed but unprocessable.
func writeDocumentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hyperparams.ErrParse):
		writeError(w, http.StatusBadRequest, "Malformed document", err.Error())
	case errors.Is(err, hyperparams.ErrSchema):
		writeError(w, http.StatusUnprocessableEntity, "Invalid document layout", err.Error(),
			"Scenario blocks must be flat mappings of scalar values")
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
