package matching

import (
	"errors"
	"fmt"
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

// MatchQueryDTO mirrors the query string of a match request; validation
// runs on the parsed values.
type MatchQueryDTO struct {
	Limit       int     `validate:"omitempty,min=1,max=100"`
	MaxDistance float64 `validate:"omitempty,gt=0,lte=500"`
	MinAge      int     `validate:"omitempty,gte=18,lte=120"`
	MaxAge      int     `validate:"omitempty,gte=18,lte=120,gtefield=MinAge"`
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	dto, filters, err := parseFilters(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := dto.Limit
	if limit == 0 {
		limit = 20
	}

	results, err := h.service.GetMatches(r.Context(), userID, limit, filters)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"matches": results,
		"count":   len(results),
	})
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	candidateID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.service.GetCompatibility(r.Context(), userID, candidateID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute compatibility")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func parseFilters(r *http.Request) (MatchQueryDTO, FilterSet, error) {
	q := r.URL.Query()

	var dto MatchQueryDTO
	var err error
	if dto.Limit, err = intParam(q.Get("limit")); err != nil {
		return dto, FilterSet{}, fmt.Errorf("invalid limit")
	}
	if dto.MinAge, err = intParam(q.Get("min_age")); err != nil {
		return dto, FilterSet{}, fmt.Errorf("invalid min_age")
	}
	if dto.MaxAge, err = intParam(q.Get("max_age")); err != nil {
		return dto, FilterSet{}, fmt.Errorf("invalid max_age")
	}
	if v := q.Get("max_distance"); v != "" {
		if dto.MaxDistance, err = strconv.ParseFloat(v, 64); err != nil {
			return dto, FilterSet{}, fmt.Errorf("invalid max_distance")
		}
	}
	if err := utils.ValidateStruct(dto); err != nil {
		return dto, FilterSet{}, err
	}

	f := FilterSet{
		OnlineOnly:    q.Get("online_only") == "true",
		NewUsersOnly:  q.Get("new_users") == "true",
		ApplyMinScore: q.Get("min_score") == "true",
		ForceRefresh:  q.Get("refresh") == "true",
		MaxDistanceKm: dto.MaxDistance,
		MinAge:        dto.MinAge,
		MaxAge:        dto.MaxAge,
	}
	return dto, f, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
