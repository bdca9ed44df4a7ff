package api

import (
	"net/http"
	"strings"

	"github.com/okian/scoutbook/internal/domain/taxonomy"
)

// ViewsHandler serves the aggregate read views.
type ViewsHandler struct {
	deps ViewDependencies
	fail failFunc
}

// HandleSummary handles GET /players/{id}/summary.
func (h *ViewsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_summary"
	sum, err := h.deps.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleDashboard handles GET /dashboard.
func (h *ViewsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	stats, err := h.deps.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboard(stats))
}

// HandleSuggest handles GET /taxonomy/suggest?q=&kind=strengths|weaknesses.
func (h *ViewsHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggest_terms"
	q := r.URL.Query()
	var kind taxonomy.Kind
	switch k := strings.ToLower(q.Get("kind")); k {
	case "":
		kind = taxonomy.Any
	case string(taxonomy.Strengths), string(taxonomy.Weaknesses):
		kind = taxonomy.Kind(k)
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, NewKind(op, ErrBadRequest))
		return
	}
	suggestions := h.deps.SuggestTerms(q.Get("q"), kind)
	if suggestions == nil {
		suggestions = []taxonomy.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}
