package config

import (
	"net/http"

	"property_report/pkg/api/respond"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Manager is the slice of agent.Manager the config endpoints use.
type Manager interface {
	GetActiveProvider() string
	Available() []string
	SetGlobalProvider(name string) error
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr Manager
}

// NewHandler creates a new config handler
func NewHandler(agentMgr Manager) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.current())
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, h.current())
}

func (h *Handler) current() Response {
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
	}
}
