package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/idbuilder/worker/internal/apperr"
)

// Envelope is the JSON shape every response body takes,:
// code=0 means success; a non-zero code is one of the apperr taxonomy
// codes, and data is null on error.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Respond writes a successful envelope with data as the payload.
func Respond(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Code: 0, Message: "ok", Data: data})
}

// RespondAppError translates an *apperr.Error into its envelope and status,
// the single place the HTTP layer needs to know about the taxonomy.
func RespondAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("%v", err)
	}
	writeEnvelope(w, appErr.Status(), Envelope{Code: appErr.Code(), Message: appErr.Message, Data: nil})
}

// RespondBadRequest writes a 3001 validation-kind error for a malformed
// request the handler catches before it ever reaches a service (missing
// query parameter, unparseable body, etc).
func RespondBadRequest(w http.ResponseWriter, reason string) {
	RespondAppError(w, apperr.BadRequest(reason))
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
