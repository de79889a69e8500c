package controllers

import (
	"net/http"

	"eventsphere/internal/delivery/http/helpers"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
}

type HealthController struct {
	Env string
}

func NewHealthController(env string) *HealthController {
	return &HealthController{Env: env}
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains status and env"
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Env: c.Env})
}
