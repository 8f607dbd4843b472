package tier

import (
	"github.com/gorilla/mux"

	"github.com/fwber/matchengine/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matches/{matchId}/tier").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetTierStatus).Methods("GET")
	api.HandleFunc("/messages", handler.RecordMessage).Methods("POST")
	api.HandleFunc("/meeting", handler.ConfirmMeeting).Methods("POST")
}
