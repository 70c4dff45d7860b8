package api

import (
	"net/http"

	"github.com/idbuilder/worker/internal/httpserver"
)

// healthResponse is the liveness probe payload.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// handleHealth handles GET /health: always 200 while the process is up.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpserver.Respond(w, http.StatusOK, healthResponse{Status: "healthy", Version: a.Version})
}

type readyComponents struct {
	Storage bool `json:"storage"`
}

type readyResponse struct {
	Ready      bool            `json:"ready"`
	Components readyComponents `json:"components"`
}

// handleReady handles GET /ready: checks storage write access.
func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	storageOK := a.Storage.HealthCheck(r.Context()) == nil

	status := http.StatusOK
	if !storageOK {
		status = http.StatusServiceUnavailable
	}
	httpserver.Respond(w, status, readyResponse{
		Ready:      storageOK,
		Components: readyComponents{Storage: storageOK},
	})
}
