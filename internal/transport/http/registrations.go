package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lokeshloki65/college-event/internal/app"
	"github.com/lokeshloki65/college-event/internal/domain"
)

// RegistrationSubmitter is the minimal interface needed to submit a
// registration.
type RegistrationSubmitter interface {
	Submit(ctx context.Context, in app.SubmitInput) (domain.Registration, error)
}

// RegistrationLifecycle covers the owner-facing lifecycle operations.
type RegistrationLifecycle interface {
	Get(ctx context.Context, number string, actor domain.Actor) (domain.Registration, error)
	ListOwn(ctx context.Context, actor domain.Actor) ([]domain.Registration, error)
	UpdateOwn(ctx context.Context, number string, actor domain.Actor, upd domain.DetailsUpdate) (domain.Registration, error)
	Cancel(ctx context.Context, number string, actor domain.Actor) (domain.Registration, error)
}

// HandleSubmitRegistration returns an HTTP handler for submitting a
// registration to an event.
func HandleSubmitRegistration(svc RegistrationSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		var req submitRegistrationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		members := make([]domain.TeamMember, 0, len(req.TeamMembers))
		for _, m := range req.TeamMembers {
			members = append(members, domain.TeamMember{
				Name:       m.Name,
				Email:      m.Email,
				Phone:      m.Phone,
				College:    m.College,
				Department: m.Department,
				Year:       m.Year,
			})
		}

		reg, err := svc.Submit(r.Context(), app.SubmitInput{
			EventID:             chi.URLParam(r, "eventID"),
			SubjectID:           actor.SubjectID,
			Kind:                domain.RegistrationKind(strings.ToLower(req.Kind)),
			TeamName:            req.TeamName,
			TeamMembers:         members,
			ContactEmail:        req.ContactEmail,
			ContactPhone:        req.ContactPhone,
			SpecialRequirements: req.SpecialRequirements,
			PaymentAmount:       req.Payment.Amount,
			PaymentReference:    req.Payment.Reference,
			PaymentScreenshot:   req.Payment.ScreenshotRef,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toRegistrationView(reg))
	}
}

// HandleListRegistrations returns the caller's registrations, newest first.
func HandleListRegistrations(svc RegistrationLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		regs, err := svc.ListOwn(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		views := make([]registrationView, 0, len(regs))
		for _, reg := range regs {
			views = append(views, toRegistrationView(reg))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listRegistrationsResponse{Registrations: views})
	}
}

// HandleGetRegistration returns one registration, scoped to its owner or a
// reviewer.
func HandleGetRegistration(svc RegistrationLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		reg, err := svc.Get(r.Context(), chi.URLParam(r, "number"), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toRegistrationView(reg))
	}
}

// HandleUpdateRegistration applies a self-edit while the registration is
// still in submitted status.
func HandleUpdateRegistration(svc RegistrationLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		var req updateRegistrationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		reg, err := svc.UpdateOwn(r.Context(), chi.URLParam(r, "number"), actor, domain.DetailsUpdate{
			ContactEmail:        req.ContactEmail,
			ContactPhone:        req.ContactPhone,
			SpecialRequirements: req.SpecialRequirements,
			PaymentScreenshot:   req.PaymentScreenshotRef,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toRegistrationView(reg))
	}
}

// HandleCancelRegistration self-cancels an approved registration before the
// event starts.
func HandleCancelRegistration(svc RegistrationLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		reg, err := svc.Cancel(r.Context(), chi.URLParam(r, "number"), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toRegistrationView(reg))
	}
}

type teamMemberPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	College    string `json:"college,omitempty"`
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
}

type paymentPayload struct {
	Amount        int    `json:"amount"`
	Reference     string `json:"reference"`
	ScreenshotRef string `json:"screenshotRef"`
}

type submitRegistrationRequest struct {
	Kind                string              `json:"kind"`
	TeamName            string              `json:"teamName"`
	TeamMembers         []teamMemberPayload `json:"teamMembers"`
	ContactEmail        string              `json:"contactEmail"`
	ContactPhone        string              `json:"contactPhone"`
	SpecialRequirements string              `json:"specialRequirements"`
	Payment             paymentPayload      `json:"payment"`
}

type updateRegistrationRequest struct {
	ContactEmail         *string `json:"contactEmail"`
	ContactPhone         *string `json:"contactPhone"`
	SpecialRequirements  *string `json:"specialRequirements"`
	PaymentScreenshotRef *string `json:"paymentScreenshotRef"`
}

type registrationView struct {
	Number              string              `json:"number"`
	EventID             string              `json:"eventId"`
	SubjectID           string              `json:"subjectId"`
	Kind                string              `json:"kind"`
	TeamName            string              `json:"teamName,omitempty"`
	TeamMembers         []teamMemberPayload `json:"teamMembers,omitempty"`
	Status              string              `json:"status"`
	ContactEmail        string              `json:"contactEmail"`
	ContactPhone        string              `json:"contactPhone"`
	SpecialRequirements string              `json:"specialRequirements,omitempty"`
	Payment             paymentView         `json:"payment"`
	AdminNotes          string              `json:"adminNotes,omitempty"`
	ReviewedBy          string              `json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time          `json:"reviewedAt,omitempty"`
	SubmittedAt         time.Time           `json:"submittedAt"`
	Version             int                 `json:"version"`
}

type paymentView struct {
	Amount        int    `json:"amount"`
	Reference     string `json:"reference"`
	ScreenshotRef string `json:"screenshotRef"`
	Status        string `json:"status"`
}

type listRegistrationsResponse struct {
	Registrations []registrationView `json:"registrations"`
}

func toRegistrationView(reg domain.Registration) registrationView {
	var members []teamMemberPayload
	for _, m := range reg.TeamMembers {
		members = append(members, teamMemberPayload{
			Name:       m.Name,
			Email:      m.Email,
			Phone:      m.Phone,
			College:    m.College,
			Department: m.Department,
			Year:       m.Year,
		})
	}
	return registrationView{
		Number:              reg.Number,
		EventID:             reg.EventID,
		SubjectID:           reg.SubjectID,
		Kind:                string(reg.Kind),
		TeamName:            reg.TeamName,
		TeamMembers:         members,
		Status:              string(reg.Status),
		ContactEmail:        reg.ContactEmail,
		ContactPhone:        reg.ContactPhone,
		SpecialRequirements: reg.SpecialRequirements,
		Payment: paymentView{
			Amount:        reg.Payment.Amount,
			Reference:     reg.Payment.Reference,
			ScreenshotRef: reg.Payment.ScreenshotRef,
			Status:        string(reg.Payment.Status),
		},
		AdminNotes:  reg.AdminNotes,
		ReviewedBy:  reg.ReviewedBy,
		ReviewedAt:  reg.ReviewedAt,
		SubmittedAt: reg.SubmittedAt,
		Version:     reg.Version,
	}
}
