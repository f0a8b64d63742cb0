package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flotech/flotech/internal/auth"
	"github.com/flotech/flotech/internal/handler/dto"
	"github.com/flotech/flotech/internal/repository"
)

const defaultIngestionListLimit = 50

// MeetingHandler serves the authenticated user's ingested meetings.
type MeetingHandler struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(repo *repository.Repository, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{
		repo:   repo,
		logger: logger.With("handler", "meeting"),
	}
}

// List handles GET /api/v1/meetings
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	meetings, err := h.repo.ListMeetingsByUser(r.Context(), authCtx.UserID)
	if err != nil {
		h.logger.Error("failed to list meetings", "user_id", authCtx.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to list meetings",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.MeetingListResponse{
		Data:  meetings,
		Count: len(meetings),
	})
}

// Get handles GET /api/v1/meetings/{id}
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	id := chi.URLParam(r, "id")
	meeting, err := h.repo.GetMeeting(r.Context(), authCtx.UserID, id)
	if err != nil {
		if errors.Is(err, repository.ErrMeetingNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{
				Error: "Meeting not found",
				Code:  "NOT_FOUND",
			})
			return
		}
		h.logger.Error("failed to get meeting", "user_id", authCtx.UserID, "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to get meeting",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// ListIngestions handles GET /api/v1/ingestions
func (h *MeetingHandler) ListIngestions(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	ingestions, err := h.repo.ListIngestionsByUser(r.Context(), authCtx.UserID, defaultIngestionListLimit)
	if err != nil {
		h.logger.Error("failed to list ingestions", "user_id", authCtx.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to list ingestions",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestionListResponse{
		Data:  ingestions,
		Count: len(ingestions),
	})
}
