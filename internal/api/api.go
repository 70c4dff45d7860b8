// Package api wires the HTTP surface onto the id generation, config, and
// auth services: route handlers, the admin/key-token authorization
// middleware, and the chi route table.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/idbuilder/worker/internal/authtoken"
	"github.com/idbuilder/worker/internal/idservice"
	"github.com/idbuilder/worker/internal/storage"
)

// API holds the services a handler needs and is the receiver for every
// handleXxx method in this package.
type API struct {
	Increment *idservice.IncrementService
	Snowflake *idservice.SnowflakeService
	Formatted *idservice.FormattedService
	Tokens    *authtoken.Service
	Storage   storage.Storage

	// Version is reported by the liveness probe.
	Version string

	// WorkerLeaseTTL is the lease duration granted by GET /v1/id/snowflake.
	WorkerLeaseTTL time.Duration
}

// Mount attaches every route to r, grouping by the authorization the route
// requires: none, admin, or key-or-admin.
func (a *API) Mount(r chi.Router) {
	r.Get("/health", a.handleHealth)
	r.Get("/ready", a.handleReady)

	r.Route("/v1/config", func(cr chi.Router) {
		cr.Use(RequireAdmin(a.Tokens))
		cr.Get("/list", a.handleListConfigs)
		cr.Post("/increment", a.handleCreateIncrementConfig)
		cr.Get("/increment", a.handleGetIncrementConfig)
		cr.Post("/snowflake", a.handleCreateSnowflakeConfig)
		cr.Get("/snowflake", a.handleGetSnowflakeConfig)
		cr.Post("/formatted", a.handleCreateFormattedConfig)
		cr.Get("/formatted", a.handleGetFormattedConfig)
	})

	r.Route("/v1/id", func(ir chi.Router) {
		ir.Use(RequireToken(a.Tokens))
		ir.Get("/increment", a.handleGenerateIncrement)
		ir.Get("/snowflake", a.handleGetSnowflake)
		ir.Get("/formatted", a.handleGenerateFormatted)
	})

	r.Route("/v1/auth", func(ar chi.Router) {
		ar.Use(RequireAdmin(a.Tokens))
		ar.Get("/token", a.handleGetToken)
		ar.Get("/tokenreset", a.handleResetToken)
		ar.Get("/verify", a.handleVerify)
	})
}
