package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// Identity headers set by the authenticating gateway. The service trusts
// them; authentication itself happens upstream.
const (
	headerSubjectID = "X-Subject-ID"
	headerRole      = "X-Role"
)

type actorContextKey struct{}

func actorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// RequireActor parses the identity headers into an Actor and rejects
// requests that carry no subject. Unknown roles fall back to student.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subjectID := strings.TrimSpace(r.Header.Get(headerSubjectID))
		if subjectID == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		role := domain.RoleStudent
		if domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(headerRole)))) == domain.RoleAdmin {
			role = domain.RoleAdmin
		}

		actor := domain.Actor{SubjectID: subjectID, Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorContextKey{}, actor)))
	})
}

// RequireAdmin guards reviewer-only routes. It assumes RequireActor ran
// earlier in the chain.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok || !actor.CanReview() {
			writeError(w, http.StatusForbidden, codeForbidden, "reviewer role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
