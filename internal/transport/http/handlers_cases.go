package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	casemodels "docket/internal/cases/models"
	caseservice "docket/internal/cases/service"
	id "docket/pkg/domain"
	"docket/pkg/requestcontext"
)

type createCaseRequest struct {
	Number             string   `json:"number"`
	Title              string   `json:"title"`
	Type               string   `json:"type"`
	ProsecutorIDs      []string `json:"prosecutor_ids"`
	PlaintiffLawyerIDs []string `json:"plaintiff_lawyer_ids"`
	DefendantLawyerIDs []string `json:"defendant_lawyer_ids"`
	JudgeID            string   `json:"judge_id"`
}

func (h Handlers) createCase(w http.ResponseWriter, r *http.Request) {
	var body createCaseRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}

	req := caseservice.CreateCaseRequest{
		Number: body.Number,
		Title:  body.Title,
		Type:   casemodels.CaseType(body.Type),
	}
	var err error
	if req.ProsecutorIDs, err = parseActorIDs(body.ProsecutorIDs); err != nil {
		writeError(w, err)
		return
	}
	if req.PlaintiffLawyerIDs, err = parseActorIDs(body.PlaintiffLawyerIDs); err != nil {
		writeError(w, err)
		return
	}
	if req.DefendantLawyerIDs, err = parseActorIDs(body.DefendantLawyerIDs); err != nil {
		writeError(w, err)
		return
	}
	if body.JudgeID != "" {
		judgeID, err := id.ParseActorID(body.JudgeID)
		if err != nil {
			writeError(w, err)
			return
		}
		req.JudgeID = &judgeID
	}

	c, err := h.Cases.CreateCase(r.Context(), requestcontext.Actor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h Handlers) getCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Cases.GetCase(r.Context(), requestcontext.Actor(r.Context()), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type advanceCaseRequest struct {
	TargetStage string `json:"target_stage"`
	Comment     string `json:"comment"`
}

func (h Handlers) advanceCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body advanceCaseRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Cases.AdvanceCase(r.Context(), requestcontext.Actor(r.Context()), caseID, casemodels.Stage(body.TargetStage), body.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h Handlers) getTimeline(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.Cases.GetTimeline(r.Context(), requestcontext.Actor(r.Context()), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type updateCaseRequest struct {
	Title   *string `json:"title"`
	JudgeID *string `json:"judge_id"`
}

func (h Handlers) updateCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body updateCaseRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	req := caseservice.UpdateCaseRequest{Title: body.Title}
	if body.JudgeID != nil {
		judgeID, err := id.ParseActorID(*body.JudgeID)
		if err != nil {
			writeError(w, err)
			return
		}
		req.JudgeID = &judgeID
	}
	c, err := h.Cases.UpdateCase(r.Context(), requestcontext.Actor(r.Context()), caseID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h Handlers) deleteCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Cases.DeleteCase(r.Context(), requestcontext.Actor(r.Context()), caseID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseActorIDs(raw []string) ([]id.ActorID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.ActorID, 0, len(raw))
	for _, s := range raw {
		actorID, err := id.ParseActorID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, actorID)
	}
	return out, nil
}
