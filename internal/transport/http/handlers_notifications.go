package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docket/internal/notification"
	id "docket/pkg/domain"
	"docket/pkg/requestcontext"
)

func (h Handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.Notifications.List(r.Context(), requestcontext.Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createNotificationRequest struct {
	RecipientID string `json:"recipient_id"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	CaseID      string `json:"case_id"`
}

func (h Handlers) createNotification(w http.ResponseWriter, r *http.Request) {
	var body createNotificationRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	recipient, err := id.ParseActorID(body.RecipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	event := notification.Event{
		Type:     notification.Type(body.Type),
		Priority: notification.Priority(body.Priority),
		Title:    body.Title,
		Message:  body.Message,
	}
	if body.CaseID != "" {
		caseID, err := id.ParseCaseID(body.CaseID)
		if err != nil {
			writeError(w, err)
			return
		}
		event.CaseID = caseID
	}
	n, err := h.Notifications.CreateDirect(r.Context(), requestcontext.Actor(r.Context()), recipient, event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h Handlers) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	notifID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), requestcontext.Actor(r.Context()), notifID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
