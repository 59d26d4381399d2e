package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// RegistrationReviewer is the minimal interface needed to move a
// registration through review.
type RegistrationReviewer interface {
	Transition(ctx context.Context, number string, target domain.Status, actor domain.Actor, notes string) (domain.Registration, error)
}

// HandleReviewTransition applies a reviewer status transition.
func HandleReviewTransition(svc RegistrationReviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		var req reviewTransitionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		target, ok := reviewTarget(req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "unknown target status")
			return
		}

		reg, err := svc.Transition(r.Context(), chi.URLParam(r, "number"), target, actor, req.Notes)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toRegistrationView(reg))
	}
}

type reviewTransitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// reviewTarget accepts only the statuses a reviewer may set. Cancellation
// belongs to the registrant and has its own route.
func reviewTarget(s string) (domain.Status, bool) {
	switch domain.Status(strings.ToLower(strings.TrimSpace(s))) {
	case domain.StatusUnderReview:
		return domain.StatusUnderReview, true
	case domain.StatusApproved:
		return domain.StatusApproved, true
	case domain.StatusRejected:
		return domain.StatusRejected, true
	default:
		return "", false
	}
}
