package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/u1f408/accord/core/log"
)

// MessageCounter reports how many messages are currently cached.
type MessageCounter interface {
	Len() int
}

type HealthHandler struct {
	messageCounter MessageCounter
}

func NewHealthHandler(messageCounter MessageCounter) *HealthHandler {
	return &HealthHandler{messageCounter: messageCounter}
}

type healthResponse struct {
	Status         string `json:"status"`
	CachedMessages int    `json:"cached_messages"`
}

func (h *HealthHandler) SetupEndpoints(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
	log.Info("✅ GET /health endpoint registered")
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := healthResponse{Status: "ok", CachedMessages: h.messageCounter.Len()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("❌ Failed to write health check response: %v", err)
	}
}
