package api

import (
	"net/http"
	"strings"

	"github.com/okian/scoutbook/internal/domain/model"
)

// PlayersHandler serves the roster endpoints.
type PlayersHandler struct {
	deps PlayerDependencies
	fail failFunc
}

// HandleCreate handles POST /players. A bundled report is optional.
func (h *PlayersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_player"
	var req playerRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	var bundled *model.Report
	if req.Report != nil {
		// player id is assigned by the service
		rep, err := req.Report.report("")
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		bundled = &rep
	}
	p, err := h.deps.CreatePlayer(r.Context(), req.player(), bundled)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayer(p))
}

// HandleCheck handles POST /players/check: the creation gate without a write.
func (h *PlayersHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	const op = "api.check_player"
	var req playerRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.deps.CheckDuplicates(r.Context(), req.player()); err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Duplicate: false})
}

// HandleList handles GET /players?state=bookmark|scouted.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	state := model.LifecycleState(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("state"))))
	players, err := h.deps.ListPlayers(r.Context(), state)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayers(players))
}

// HandleSimilar handles GET /players/similar?name=.
func (h *PlayersHandler) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	const op = "api.similar_players"
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, NewKind(op, ErrBadRequest))
		return
	}
	matches, err := h.deps.SimilarPlayers(r.Context(), name)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatches(matches))
}

// HandleGet handles GET /players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	p, err := h.deps.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayer(p))
}
