package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docket/internal/correction"
	"docket/internal/defense"
	"docket/internal/evidence"
	"docket/internal/objection"
	id "docket/pkg/domain"
	"docket/pkg/requestcontext"
)

type createEvidenceRequest struct {
	Fingerprint string `json:"fingerprint"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	Category    string `json:"category"`
}

func (h Handlers) createEvidence(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body createEvidenceRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	e, err := h.Evidence.Create(r.Context(), requestcontext.Actor(r.Context()), evidence.CreateRequest{
		CaseID:      caseID,
		Fingerprint: body.Fingerprint,
		FileName:    body.FileName,
		FileType:    body.FileType,
		FileSize:    body.FileSize,
		Category:    evidence.Category(body.Category),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h Handlers) listEvidence(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Evidence.ListByCase(r.Context(), requestcontext.Actor(r.Context()), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h Handlers) getEvidence(w http.ResponseWriter, r *http.Request) {
	evidenceID, err := id.ParseEvidenceID(chi.URLParam(r, "evidenceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := h.Evidence.Get(r.Context(), requestcontext.Actor(r.Context()), evidenceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type updateEvidenceRequest struct {
	FileName *string `json:"file_name"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
}

func (h Handlers) updateEvidence(w http.ResponseWriter, r *http.Request) {
	evidenceID, err := id.ParseEvidenceID(chi.URLParam(r, "evidenceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body updateEvidenceRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	req := evidence.UpdateRequest{FileName: body.FileName}
	if body.Category != nil {
		category := evidence.Category(*body.Category)
		req.Category = &category
	}
	if body.Status != nil {
		status := evidence.Status(*body.Status)
		req.Status = &status
	}
	e, err := h.Evidence.Update(r.Context(), requestcontext.Actor(r.Context()), evidenceID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h Handlers) deleteEvidence(w http.ResponseWriter, r *http.Request) {
	evidenceID, err := id.ParseEvidenceID(chi.URLParam(r, "evidenceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Evidence.Delete(r.Context(), requestcontext.Actor(r.Context()), evidenceID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createCorrectionRequest struct {
	OriginalEvidenceID string `json:"original_evidence_id"`
	Reason             string `json:"reason"`
	NewFingerprint     string `json:"new_fingerprint"`
}

func (h Handlers) createCorrection(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body createCorrectionRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	originalID, err := id.ParseEvidenceID(body.OriginalEvidenceID)
	if err != nil {
		writeError(w, err)
		return
	}
	corr, err := h.Corrections.Create(r.Context(), requestcontext.Actor(r.Context()), correction.CreateRequest{
		CaseID:             caseID,
		OriginalEvidenceID: originalID,
		Reason:             body.Reason,
		NewFingerprint:     body.NewFingerprint,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, corr)
}

func (h Handlers) listCorrections(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Corrections.ListByCase(r.Context(), requestcontext.Actor(r.Context()), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h Handlers) getCorrection(w http.ResponseWriter, r *http.Request) {
	correctionID, err := id.ParseCorrectionID(chi.URLParam(r, "correctionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	corr, err := h.Corrections.Get(r.Context(), requestcontext.Actor(r.Context()), correctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, corr)
}

type updateCorrectionRequest struct {
	Reason *string `json:"reason"`
	Status *string `json:"status"`
}

func (h Handlers) updateCorrection(w http.ResponseWriter, r *http.Request) {
	correctionID, err := id.ParseCorrectionID(chi.URLParam(r, "correctionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body updateCorrectionRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	req := correction.UpdateRequest{Reason: body.Reason}
	if body.Status != nil {
		status := correction.Status(*body.Status)
		req.Status = &status
	}
	corr, err := h.Corrections.Update(r.Context(), requestcontext.Actor(r.Context()), correctionID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, corr)
}

func (h Handlers) deleteCorrection(w http.ResponseWriter, r *http.Request) {
	correctionID, err := id.ParseCorrectionID(chi.URLParam(r, "correctionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Corrections.Delete(r.Context(), requestcontext.Actor(r.Context()), correctionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createDefenseMaterialRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Fingerprint string `json:"fingerprint"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
}

func (h Handlers) createDefenseMaterial(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body createDefenseMaterialRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.Defense.Create(r.Context(), requestcontext.Actor(r.Context()), defense.CreateRequest{
		CaseID:      caseID,
		Title:       body.Title,
		Description: body.Description,
		Fingerprint: body.Fingerprint,
		FileName:    body.FileName,
		FileType:    body.FileType,
		FileSize:    body.FileSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h Handlers) listDefenseMaterials(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Defense.ListByCase(r.Context(), requestcontext.Actor(r.Context()), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h Handlers) getDefenseMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := id.ParseDefenseMaterialID(chi.URLParam(r, "materialID"))
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.Defense.Get(r.Context(), requestcontext.Actor(r.Context()), materialID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type updateDefenseMaterialRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h Handlers) updateDefenseMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := id.ParseDefenseMaterialID(chi.URLParam(r, "materialID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body updateDefenseMaterialRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.Defense.Update(r.Context(), requestcontext.Actor(r.Context()), materialID, defense.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h Handlers) deleteDefenseMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := id.ParseDefenseMaterialID(chi.URLParam(r, "materialID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Defense.Delete(r.Context(), requestcontext.Actor(r.Context()), materialID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createObjectionRequest struct {
	EvidenceID string `json:"evidence_id"`
	Content    string `json:"content"`
}

func (h Handlers) createObjection(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body createObjectionRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	evidenceID, err := id.ParseEvidenceID(body.EvidenceID)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Objections.Create(r.Context(), requestcontext.Actor(r.Context()), objection.CreateRequest{
		CaseID:     caseID,
		EvidenceID: evidenceID,
		Content:    body.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h Handlers) listObjections(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Objections.ListByCase(r.Context(), requestcontext.Actor(r.Context()), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h Handlers) getObjection(w http.ResponseWriter, r *http.Request) {
	objectionID, err := id.ParseObjectionID(chi.URLParam(r, "objectionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Objections.Get(r.Context(), requestcontext.Actor(r.Context()), objectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateObjectionRequest struct {
	Content *string `json:"content"`
}

func (h Handlers) updateObjection(w http.ResponseWriter, r *http.Request) {
	objectionID, err := id.ParseObjectionID(chi.URLParam(r, "objectionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body updateObjectionRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Objections.Update(r.Context(), requestcontext.Actor(r.Context()), objectionID, objection.UpdateRequest{Content: body.Content})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h Handlers) deleteObjection(w http.ResponseWriter, r *http.Request) {
	objectionID, err := id.ParseObjectionID(chi.URLParam(r, "objectionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Objections.Delete(r.Context(), requestcontext.Actor(r.Context()), objectionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type handleObjectionRequest struct {
	Outcome bool   `json:"outcome"`
	Result  string `json:"result"`
}

func (h Handlers) handleObjection(w http.ResponseWriter, r *http.Request) {
	objectionID, err := id.ParseObjectionID(chi.URLParam(r, "objectionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body handleObjectionRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Objections.Handle(r.Context(), requestcontext.Actor(r.Context()), objectionID, objection.HandleRequest{
		Outcome: body.Outcome,
		Result:  body.Result,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
