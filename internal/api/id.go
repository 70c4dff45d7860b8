package api

import (
	"net/http"
	"strconv"

	"github.com/idbuilder/worker/internal/httpserver"
)

const maxGenerateCount = 1000

// generateQuery parses and validates the name/count query parameters shared
// by all three ID generation routes.
type generateQuery struct {
	name  string
	count uint32
}

func parseGenerateQuery(r *http.Request) (generateQuery, string) {
	name := r.URL.Query().Get("name")
	if name == "" {
		return generateQuery{}, "name is required"
	}

	count := uint32(1)
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return generateQuery{}, "count must be a positive integer"
		}
		count = uint32(n)
	}
	if count == 0 {
		return generateQuery{}, "count must be at least 1"
	}
	if count > maxGenerateCount {
		return generateQuery{}, "count cannot exceed 1000"
	}
	return generateQuery{name: name, count: count}, ""
}

type idResponse[T any] struct {
	IDs []T `json:"ids"`
}

// handleGenerateIncrement handles GET /v1/id/increment?name=&count=.
func (a *API) handleGenerateIncrement(w http.ResponseWriter, r *http.Request) {
	q, reason := parseGenerateQuery(r)
	if reason != "" {
		httpserver.RespondBadRequest(w, reason)
		return
	}

	cfg, err := a.Increment.GetConfig(r.Context(), q.name)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	if err := authorizeConfig(r.Context(), q.name, cfg.KeyTokenEnable); err != nil {
		httpserver.RespondAppError(w, err)
		return
	}

	ids, err := a.Increment.Generate(r.Context(), q.name, q.count)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, idResponse[int64]{IDs: ids})
}

// handleGenerateFormatted handles GET /v1/id/formatted?name=&count=.
func (a *API) handleGenerateFormatted(w http.ResponseWriter, r *http.Request) {
	q, reason := parseGenerateQuery(r)
	if reason != "" {
		httpserver.RespondBadRequest(w, reason)
		return
	}

	cfg, err := a.Formatted.GetConfig(r.Context(), q.name)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	if err := authorizeConfig(r.Context(), q.name, cfg.KeyTokenEnable); err != nil {
		httpserver.RespondAppError(w, err)
		return
	}

	ids, err := a.Formatted.Generate(r.Context(), q.name, q.count)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, idResponse[string]{IDs: ids})
}

// snowflakeIDResponse carries the parameters a client needs to compose its
// own 64-bit snowflake ID; the server never assembles the ID itself.
type snowflakeIDResponse struct {
	WorkerID     uint32 `json:"worker_id"`
	Epoch        int64  `json:"epoch"`
	WorkerBits   uint8  `json:"worker_bits"`
	SequenceBits uint8  `json:"sequence_bits"`
}

// handleGetSnowflake handles GET /v1/id/snowflake?name=.
func (a *API) handleGetSnowflake(w http.ResponseWriter, r *http.Request) {
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
	if err := authorizeConfig(r.Context(), name, cfg.KeyTokenEnable); err != nil {
		httpserver.RespondAppError(w, err)
		return
	}

	holder := httpserver.RequestIDFromContext(r.Context())
	if holder == "" {
		holder = r.RemoteAddr
	}
	lease, err := a.Snowflake.LeaseWorkerID(r.Context(), name, holder, a.WorkerLeaseTTL)
	if err != nil {
		httpserver.RespondAppError(w, err)
		return
	}

	httpserver.Respond(w, http.StatusOK, snowflakeIDResponse{
		WorkerID:     lease.WorkerID,
		Epoch:        lease.Config.Epoch,
		WorkerBits:   lease.Config.WorkerBits,
		SequenceBits: lease.Config.SequenceBits,
	})
}
