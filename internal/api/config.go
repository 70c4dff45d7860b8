package api

import (
	"net/http"

	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/httpserver"
)

// handleCreateIncrementConfig handles POST /v1/config/increment.
func (a *API) handleCreateIncrementConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.IncrementConfig
	if !httpserver.DecodeAndValidate(w, r, &cfg) {
		return
	}
	if err := a.Increment.CreateConfig(r.Context(), cfg); err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusCreated, cfg)
}

// handleGetIncrementConfig handles GET /v1/config/increment?name=.
func (a *API) handleGetIncrementConfig(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpserver.RespondBadRequest(w, "name is required")
		return
	}
	cfg, err := a.Increment.GetConfig(r.Context(), name)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, cfg)
}

// handleCreateSnowflakeConfig handles POST /v1/config/snowflake.
func (a *API) handleCreateSnowflakeConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.SnowflakeConfig
	if !httpserver.DecodeAndValidate(w, r, &cfg) {
		return
	}
	if err := a.Snowflake.CreateConfig(r.Context(), cfg); err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusCreated, cfg)
}

// handleGetSnowflakeConfig handles GET /v1/config/snowflake?name=.
func (a *API) handleGetSnowflakeConfig(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpserver.RespondBadRequest(w, "name is required")
		return
	}
	cfg, err := a.Snowflake.GetConfig(r.Context(), name)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, cfg)
}

// handleCreateFormattedConfig handles POST /v1/config/formatted.
func (a *API) handleCreateFormattedConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.FormattedConfig
	if !httpserver.DecodeAndValidate(w, r, &cfg) {
		return
	}
	if err := a.Formatted.CreateConfig(r.Context(), cfg); err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusCreated, cfg)
}

// handleGetFormattedConfig handles GET /v1/config/formatted?name=.
func (a *API) handleGetFormattedConfig(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpserver.RespondBadRequest(w, "name is required")
		return
	}
	cfg, err := a.Formatted.GetConfig(r.Context(), name)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, cfg)
}

// configListResponse is the shape returned by GET /v1/config/list.
type configListResponse struct {
	Items      any     `json:"items"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// handleListConfigs handles GET /v1/config/list?key=&from=&size=, merging
// all three config kinds into one name-sorted, key-prefix-filtered page.
// key is matched as a prefix against the config name, not a kind filter: a
// client wanting only increment configs should prefix its names accordingly
// (e.g. "inc_").
func (a *API) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	params := httpserver.ParseListParams(r)

	incCfgs, err := a.Increment.ListConfigs(r.Context())
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	snowCfgs, err := a.Snowflake.ListConfigs(r.Context())
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	fmtCfgs, err := a.Formatted.ListConfigs(r.Context())
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}

	items := make([]namedConfig, 0, len(incCfgs)+len(snowCfgs)+len(fmtCfgs))
	for _, c := range incCfgs {
		items = append(items, namedConfig{Kind: "increment", Name: c.Name, Config: c})
	}
	for _, c := range snowCfgs {
		items = append(items, namedConfig{Kind: "snowflake", Name: c.Name, Config: c})
	}
	for _, c := range fmtCfgs {
		items = append(items, namedConfig{Kind: "formatted", Name: c.Name, Config: c})
	}

	page := httpserver.Paginate(items, params)
	httpserver.Respond(w, http.StatusOK, configListResponse{
		Items:      page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

// namedConfig wraps any of the three config kinds so the merged list can
// satisfy httpserver.NamedItem without the three concrete types needing to
// be compared across their distinct fields.
type namedConfig struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Config any    `json:"config"`
}

func (n namedConfig) ItemName() string { return n.Name }
