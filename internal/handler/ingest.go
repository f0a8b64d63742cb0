package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/flotech/flotech/internal/handler/dto"
	"github.com/flotech/flotech/internal/model"
	"github.com/flotech/flotech/internal/service"
)

// IngestHandler receives Fireflies transcript deliveries pushed by the
// automation layer. The endpoint is unauthenticated at the transport
// level; the payload's API key identifies the owning user.
type IngestHandler struct {
	ingest      *service.IngestService
	maxBodySize int64
	logger      *slog.Logger
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingest *service.IngestService, maxBodySize int64, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		ingest:      ingest,
		maxBodySize: maxBodySize,
		logger:      logger.With("handler", "ingest"),
	}
}

// setWebhookCORS applies the permissive cross-origin headers the
// automation layer expects. Every response carries them, success or
// failure.
func setWebhookCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// Receive handles POST /webhook/fireflies (and OPTIONS preflight).
func (h *IngestHandler) Receive(w http.ResponseWriter, r *http.Request) {
	setWebhookCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// The automation layer retries nothing, so any panic must still
	// produce a well-formed JSON error.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic while processing webhook", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, dto.WebhookError{
				Error:   "Internal server error",
				Message: fmt.Sprint(rec),
			})
		}
	}()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, dto.WebhookError{
			Error: "Method not allowed",
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error:   "Invalid JSON format",
			Message: err.Error(),
		})
		return
	}

	if strings.TrimSpace(string(body)) == "" {
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error: "Empty request body",
		})
		return
	}

	req, err := model.ParseIngestPayload(body)
	if err != nil {
		h.writeParseError(w, err)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), req)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookSuccess{
		Success:       true,
		Message:       "Webhook data processed and stored successfully",
		UserID:        result.UserID,
		MeetingsCount: len(result.Meetings),
		Meetings:      result.Meetings,
	})
}

func (h *IngestHandler) writeParseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyEnvelopeArray):
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error: "Empty webhook data array",
		})
	case errors.Is(err, model.ErrMissingAPIKey):
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error:   "Missing FireFlies_API_KEY in webhook data",
			Message: "The webhook must include the FireFlies_API_KEY to identify the user",
		})
	default:
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error:   "Invalid JSON format",
			Message: err.Error(),
		})
	}
}

func (h *IngestHandler) writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, dto.WebhookError{
			Error:   "User not found",
			Message: "No user found with the provided FireFlies_API_KEY",
		})
	case errors.Is(err, model.ErrMissingTranscripts):
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error: "Missing transcripts data in webhook payload",
		})
	case errors.Is(err, model.ErrTranscriptsNotList):
		writeJSON(w, http.StatusBadRequest, dto.WebhookError{
			Error: "Transcripts must be an array",
		})
	case errors.Is(err, service.ErrStoreFailed):
		writeJSON(w, http.StatusInternalServerError, dto.WebhookError{
			Error:   "Failed to store meetings",
			Message: "Could not save meetings to database",
		})
	default:
		h.logger.Error("unexpected ingestion failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.WebhookError{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
