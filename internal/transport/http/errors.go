package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// Transport-level codes. Domain outcomes reuse the stable reason codes from
// the domain package so clients see one vocabulary.
const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a service error to its HTTP status and reason code.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrRegistrationNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrTeamNameRequired),
		errors.Is(err, domain.ErrTeamSizeOutOfBounds),
		errors.Is(err, domain.ErrMissingPaymentProof):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrEventNotOpen),
		errors.Is(err, domain.ErrDeadlinePassed),
		errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrTransitionNotAllowed),
		errors.Is(err, domain.ErrTransitionConflict),
		errors.Is(err, domain.ErrCancellationNotAllowed):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, domain.ErrAllocationUnavailable),
		errors.Is(err, domain.ErrLedgerUnavailable):
		status = http.StatusServiceUnavailable
		msg = err.Error()
	}

	code := domain.Reason(err)
	if status == http.StatusInternalServerError {
		code = codeInternalError
	}
	writeError(w, status, code, msg)
}
