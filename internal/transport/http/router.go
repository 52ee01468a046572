// Package http wires the chi router. Handlers are thin: decode, call the
// service, encode. All authorization lives behind the service boundary.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docket/pkg/platform/middleware/auth"
	"docket/pkg/platform/middleware/requestid"
	"docket/pkg/platform/middleware/requesttime"

	dErrors "docket/pkg/domain-errors"
)

// Handlers groups the services the router exposes.
type Handlers struct {
	Cases         CaseService
	Evidence      EvidenceService
	Corrections   CorrectionService
	Defense       DefenseService
	Objections    ObjectionService
	Notifications NotificationService
	Registry      RegistryService

	Logger    *slog.Logger
	Validator auth.Validator
}

// NewRouter builds the full route table.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.Validator, h.Logger))

		r.Route("/cases", func(r chi.Router) {
			r.Post("/", h.createCase)
			r.Route("/{caseID}", func(r chi.Router) {
				r.Get("/", h.getCase)
				r.Patch("/", h.updateCase)
				r.Delete("/", h.deleteCase)
				r.Post("/transitions", h.advanceCase)
				r.Get("/timeline", h.getTimeline)
				r.Get("/evidence", h.listEvidence)
				r.Post("/evidence", h.createEvidence)
				r.Get("/corrections", h.listCorrections)
				r.Post("/corrections", h.createCorrection)
				r.Get("/defense-materials", h.listDefenseMaterials)
				r.Post("/defense-materials", h.createDefenseMaterial)
				r.Get("/objections", h.listObjections)
				r.Post("/objections", h.createObjection)
			})
		})

		r.Route("/evidence/{evidenceID}", func(r chi.Router) {
			r.Get("/", h.getEvidence)
			r.Patch("/", h.updateEvidence)
			r.Delete("/", h.deleteEvidence)
		})

		r.Route("/corrections/{correctionID}", func(r chi.Router) {
			r.Get("/", h.getCorrection)
			r.Patch("/", h.updateCorrection)
			r.Delete("/", h.deleteCorrection)
		})

		r.Route("/defense-materials/{materialID}", func(r chi.Router) {
			r.Get("/", h.getDefenseMaterial)
			r.Patch("/", h.updateDefenseMaterial)
			r.Delete("/", h.deleteDefenseMaterial)
		})

		r.Route("/objections/{objectionID}", func(r chi.Router) {
			r.Get("/", h.getObjection)
			r.Patch("/", h.updateObjection)
			r.Delete("/", h.deleteObjection)
			r.Post("/ruling", h.handleObjection)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Post("/", h.createNotification)
			r.Post("/{notificationID}/read", h.markNotificationRead)
		})

		r.Route("/roles", func(r chi.Router) {
			r.Post("/", h.grantRole)
			r.Delete("/", h.revokeRole)
			r.Get("/{address}", h.listRoleAssignments)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := dErrors.GetCode(err)
	writeJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":             string(code),
		"error_description": dErrors.Message(err),
	})
}

func decode(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "malformed request body")
	}
	return nil
}
