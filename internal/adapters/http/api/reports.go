package api

import (
	"net/http"
)

// ReportsHandler serves report submission, listing, deletion and feedback.
type ReportsHandler struct {
	deps ReportDependencies
	fail failFunc
}

// HandleSubmit handles POST /players/{id}/reports.
func (h *ReportsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_report"
	var req reportRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	rep, err := req.report(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	sub, err := h.deps.SubmitReport(r.Context(), rep)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionResponse{
		Report:           toReport(sub.Report),
		State:            sub.Outcome.State,
		Promoted:         sub.Outcome.Promoted,
		PendingScouts:    nonNil(sub.Outcome.Pending),
		PromotionPending: sub.PromotionPending,
	})
}

// HandleList handles GET /players/{id}/reports, most recent first.
func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_reports"
	reports, err := h.deps.ListReports(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toReports(reports))
}

// HandleReevaluate handles POST /players/{id}/reevaluate, retrying a
// promotion that failed after its report was stored.
func (h *ReportsHandler) HandleReevaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.reevaluate"
	out, err := h.deps.Reevaluate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	out.Pending = nonNil(out.Pending)
	writeJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /reports/{id}.
func (h *ReportsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_report"
	if err := h.deps.DeleteReport(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFeedback handles POST /reports/{id}/feedback.
func (h *ReportsHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.attach_feedback"
	var req feedbackRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	rep, err := h.deps.AttachDirectorFeedback(r.Context(), r.PathValue("id"), req.Name, req.Feedback)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toReport(rep))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
