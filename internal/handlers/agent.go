package handlers

import (
	"net/http"

	"tapp-club-backend/internal/services"
)

// AgentHandler handles agent query HTTP requests
type AgentHandler struct {
	agentService *services.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentService *services.AgentService) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
	}
}

// Query handles GET /agent/. The prompt travels in the "request" query
// parameter and the answer comes back as plain text.
func (h *AgentHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	answer, err := h.agentService.Ask(ctx, r.URL.Query().Get("request"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(answer))
}
