package tier

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fwber/matchengine/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetTierStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, ok := matchIDFrom(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetTierStatus(r.Context(), matchID, userID)
	if err != nil {
		respondTierError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) RecordMessage(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, ok := matchIDFrom(w, r)
	if !ok {
		return
	}

	status, err := h.service.RecordMessageSent(r.Context(), matchID, userID)
	if err != nil {
		respondTierError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) ConfirmMeeting(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, ok := matchIDFrom(w, r)
	if !ok {
		return
	}

	status, err := h.service.RecordMeetingConfirmed(r.Context(), matchID, userID)
	if err != nil {
		respondTierError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

func matchIDFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	vars := mux.Vars(r)
	matchID, err := strconv.ParseInt(vars["matchId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return 0, false
	}
	return matchID, true
}

func respondTierError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Match not found")
	case errors.Is(err, ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, "Not a participant in this match")
	case errors.Is(err, ErrVersionConflict):
		utils.RespondWithError(w, http.StatusConflict, "Match was updated concurrently, retry")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process tier request")
	}
}
