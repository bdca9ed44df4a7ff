package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/scoutbook/internal/adapters/http/api"
	"github.com/okian/scoutbook/internal/adapters/http/idempotency"
	"github.com/okian/scoutbook/internal/adapters/repository"
	service "github.com/okian/scoutbook/internal/app"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

func newMux() *http.ServeMux {
	svc := service.New(repository.NewMemoryStore(), model.NewRoster("Alessio", "Roberto"))
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	return mux
}

func do(mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func decodeList(w *httptest.ResponseRecorder) []map[string]any {
	var out []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

var marco = map[string]any{
	"name":         "Marco Rossi",
	"nationality":  "Italy",
	"birth_year":   2005,
	"external_ref": "https://www.transfermarkt.it/marco-rossi/profil/spieler/123456",
	"team":         "Primavera",
}

func reportBody(scout string) map[string]any {
	return map[string]any{
		"scout_name":      scout,
		"check_type":      "Video",
		"match_name":      "Primavera vs Juniores",
		"match_date":      "2026-04-12",
		"final_rating":    "b",
		"current_value":   3,
		"potential_value": 4,
		"strengths":       "Heading, Vision",
		"weaknesses":      "Poor first touch",
		"notes":           "Good in the air",
	}
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux()

		Convey("Then /healthz reports ok", func() {
			w := do(mux, http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("Then /metrics serves the custom registry", func() {
			_ = do(mux, http.MethodGet, "/healthz", nil)
			w := do(mux, http.MethodGet, "/metrics", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "scoutbook_roster_http_requests_total")
		})

		Convey("Then unknown methods are rejected by the mux", func() {
			w := do(mux, http.MethodPut, "/players", nil)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestPlayersEndpoints(t *testing.T) {
	Convey("Given an empty roster", t, func() {
		mux := newMux()

		Convey("When a player is created", func() {
			w := do(mux, http.MethodPost, "/players", marco)
			So(w.Code, ShouldEqual, http.StatusCreated)
			created := decode(w)
			id, _ := created["id"].(string)

			Convey("Then it starts as a bookmark and can be read back", func() {
				So(created["state"], ShouldEqual, "bookmark")
				So(id, ShouldNotBeEmpty)

				got := do(mux, http.MethodGet, "/players/"+id, nil)
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decode(got)["name"], ShouldEqual, "Marco Rossi")
			})

			Convey("Then a second creation of the same identity is blocked", func() {
				again := map[string]any{"name": "marco  ROSSI", "nationality": "italy", "birth_year": 2005}
				dup := do(mux, http.MethodPost, "/players", again)
				So(dup.Code, ShouldEqual, http.StatusConflict)

				body := decode(dup)
				So(body["code"], ShouldEqual, "duplicate_player")
				So(body["reason"], ShouldEqual, service.ReasonIdentityKey)
				So(body["suggested_action"], ShouldEqual, service.SuggestedAction)
				So(body["message"], ShouldStartWith, "Player already exists: Marco Rossi (Primavera, ")
				existing, _ := body["existing"].(map[string]any)
				So(existing["id"], ShouldEqual, id)
			})

			Convey("Then the profile link alone is enough to block", func() {
				other := map[string]any{
					"name":         "M. Rossi",
					"external_ref": "transfermarkt.com/m-rossi/profil/spieler/123456",
				}
				dup := do(mux, http.MethodPost, "/players", other)
				So(dup.Code, ShouldEqual, http.StatusConflict)
				So(decode(dup)["reason"], ShouldEqual, service.ReasonExternalRef)
			})

			Convey("Then the pre-flight check reports both outcomes without writing", func() {
				So(do(mux, http.MethodPost, "/players/check", marco).Code, ShouldEqual, http.StatusConflict)

				fresh := do(mux, http.MethodPost, "/players/check", map[string]any{"name": "Luca Bianchi", "birth_year": 2006})
				So(fresh.Code, ShouldEqual, http.StatusOK)
				So(decode(fresh)["duplicate"], ShouldEqual, false)
				So(len(decodeList(do(mux, http.MethodGet, "/players", nil))), ShouldEqual, 1)
			})

			Convey("Then similar names are suggested", func() {
				w := do(mux, http.MethodGet, "/players/similar?name=Marco+Rosi", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				matches := decodeList(w)
				So(len(matches), ShouldEqual, 1)
				So(matches[0]["distance"], ShouldEqual, float64(1))
			})

			Convey("Then the list can be filtered by state", func() {
				So(len(decodeList(do(mux, http.MethodGet, "/players?state=bookmark", nil))), ShouldEqual, 1)
				So(len(decodeList(do(mux, http.MethodGet, "/players?state=scouted", nil))), ShouldEqual, 0)
				So(do(mux, http.MethodGet, "/players?state=archived", nil).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a player is created with a bundled report", func() {
			body := map[string]any{"name": "Luca Bianchi", "birth_year": 2006, "report": reportBody("Alessio")}
			w := do(mux, http.MethodPost, "/players", body)

			Convey("Then it is created directly as scouted", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode(w)["state"], ShouldEqual, "scouted")
			})
		})

		Convey("When the bundled report is invalid", func() {
			rep := reportBody("Alessio")
			rep["notes"] = ""
			w := do(mux, http.MethodPost, "/players", map[string]any{"name": "Luca Bianchi", "report": rep})

			Convey("Then nothing is created", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "validation_failed")
				So(len(decodeList(do(mux, http.MethodGet, "/players", nil))), ShouldEqual, 0)
			})
		})

		Convey("When the request is malformed", func() {
			So(do(mux, http.MethodPost, "/players", `{"name":`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/players", `{"nickname":"x"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/players", map[string]any{"name": "  "}).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/players/similar", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When an unknown player is requested", func() {
			w := do(mux, http.MethodGet, "/players/missing", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "not_found")
		})
	})
}

func TestReportsEndpoints(t *testing.T) {
	Convey("Given a bookmarked player", t, func() {
		mux := newMux()
		id, _ := decode(do(mux, http.MethodPost, "/players", marco))["id"].(string)
		base := "/players/" + id

		Convey("When the first scout reports", func() {
			w := do(mux, http.MethodPost, base+"/reports", reportBody("Alessio"))
			So(w.Code, ShouldEqual, http.StatusCreated)
			first := decode(w)

			Convey("Then the player waits for the rest of the roster", func() {
				So(first["state"], ShouldEqual, "bookmark")
				So(first["promoted"], ShouldEqual, false)
				So(first["pending_scouts"], ShouldResemble, []any{"Roberto"})
				rep, _ := first["report"].(map[string]any)
				So(rep["final_rating"], ShouldEqual, "B")
				So(rep["match_date"], ShouldEqual, "2026-04-12")
			})

			Convey("And the second scout reports", func() {
				second := decode(do(mux, http.MethodPost, base+"/reports", reportBody("Roberto")))

				Convey("Then the player is promoted", func() {
					So(second["state"], ShouldEqual, "scouted")
					So(second["promoted"], ShouldEqual, true)
					So(decode(do(mux, http.MethodGet, base, nil))["state"], ShouldEqual, "scouted")
				})

				Convey("Then reports, summary and dashboard reflect both", func() {
					So(len(decodeList(do(mux, http.MethodGet, base+"/reports", nil))), ShouldEqual, 2)

					sum := decode(do(mux, http.MethodGet, base+"/summary", nil))
					So(sum["report_count"], ShouldEqual, float64(2))
					So(sum["strengths"], ShouldHaveLength, 4)
					So(sum["strengths"], ShouldContain, "Heading (Roberto)")
					So(sum["pending_scouts"], ShouldBeEmpty)

					dash := decode(do(mux, http.MethodGet, "/dashboard", nil))
					So(dash["total_scouted"], ShouldEqual, float64(1))
					So(dash["avg_potential"], ShouldEqual, float64(4))
				})
			})

			Convey("Then director feedback is attached once", func() {
				rep, _ := first["report"].(map[string]any)
				path := "/reports/" + rep["id"].(string) + "/feedback"
				fb := map[string]any{"name": "Director", "feedback": "Follow up in May"}

				ok := do(mux, http.MethodPost, path, fb)
				So(ok.Code, ShouldEqual, http.StatusOK)
				So(decode(ok)["director_feedback"], ShouldNotBeNil)

				again := do(mux, http.MethodPost, path, fb)
				So(again.Code, ShouldEqual, http.StatusConflict)
				So(decode(again)["code"], ShouldEqual, "feedback_already_attached")

				blank := do(mux, http.MethodPost, path, map[string]any{"name": "Director"})
				So(blank.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then the report can be deleted once", func() {
				rep, _ := first["report"].(map[string]any)
				path := "/reports/" + rep["id"].(string)

				So(do(mux, http.MethodDelete, path, nil).Code, ShouldEqual, http.StatusNoContent)
				So(do(mux, http.MethodDelete, path, nil).Code, ShouldEqual, http.StatusNotFound)
				So(len(decodeList(do(mux, http.MethodGet, base+"/reports", nil))), ShouldEqual, 0)
			})

			Convey("Then reevaluation keeps the bookmark", func() {
				w := do(mux, http.MethodPost, base+"/reevaluate", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["state"], ShouldEqual, "bookmark")
			})
		})

		Convey("When a report is invalid", func() {
			outsider := do(mux, http.MethodPost, base+"/reports", reportBody("Giorgio"))
			So(outsider.Code, ShouldEqual, http.StatusBadRequest)
			So(outsider.Body.String(), ShouldContainSubstring, "scout_name")

			rep := reportBody("Alessio")
			rep["check_type"] = "Dati"
			noLight := do(mux, http.MethodPost, base+"/reports", rep)
			So(noLight.Code, ShouldEqual, http.StatusBadRequest)
			So(noLight.Body.String(), ShouldContainSubstring, "athletic_data_rating")

			rep = reportBody("Alessio")
			rep["match_date"] = "12/04/2026"
			So(do(mux, http.MethodPost, base+"/reports", rep).Code, ShouldEqual, http.StatusBadRequest)

			So(len(decodeList(do(mux, http.MethodGet, base+"/reports", nil))), ShouldEqual, 0)
		})

		Convey("When reporting on an unknown player", func() {
			w := do(mux, http.MethodPost, "/players/missing/reports", reportBody("Alessio"))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTaxonomySuggest(t *testing.T) {
	Convey("Given the default vocabulary", t, func() {
		mux := newMux()

		Convey("Then suggestions come back with their category", func() {
			w := do(mux, http.MethodGet, "/taxonomy/suggest?q=heading&kind=strengths", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			list := decodeList(w)
			So(len(list), ShouldBeGreaterThan, 0)
			So(list[0]["term"], ShouldEqual, "Heading")
			So(list[0]["category"], ShouldEqual, "technical")
		})

		Convey("Then a one-letter query gives an empty list", func() {
			w := do(mux, http.MethodGet, "/taxonomy/suggest?q=h", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldStartWith, "[]")
		})

		Convey("Then an unknown kind is rejected", func() {
			So(do(mux, http.MethodGet, "/taxonomy/suggest?q=head&kind=skills", nil).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func doWithKey(mux http.Handler, path, key string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(idempotency.Header, key)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestIdempotentSubmissions(t *testing.T) {
	Convey("Given a bookmarked player", t, func() {
		mux := newMux()
		id, _ := decode(do(mux, http.MethodPost, "/players", marco))["id"].(string)
		reports := "/players/" + id + "/reports"

		Convey("When a report is resent with the same key", func() {
			So(doWithKey(mux, reports, "k1", reportBody("Alessio")).Code, ShouldEqual, http.StatusCreated)
			w := doWithKey(mux, reports, "k1", reportBody("Alessio"))

			Convey("Then the replay is rejected and only one report is stored", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode(w)["code"], ShouldEqual, "duplicate_submission")
				So(len(decodeList(do(mux, http.MethodGet, reports, nil))), ShouldEqual, 1)
			})
		})

		Convey("When different keys are used", func() {
			So(doWithKey(mux, reports, "k1", reportBody("Alessio")).Code, ShouldEqual, http.StatusCreated)
			So(doWithKey(mux, reports, "k2", reportBody("Alessio")).Code, ShouldEqual, http.StatusCreated)

			Convey("Then both reports are stored", func() {
				So(len(decodeList(do(mux, http.MethodGet, reports, nil))), ShouldEqual, 2)
			})
		})

		Convey("When a keyed submission fails", func() {
			So(doWithKey(mux, reports, "k3", reportBody("Giorgio")).Code, ShouldEqual, http.StatusBadRequest)

			Convey("Then the key can be reused for the corrected report", func() {
				So(doWithKey(mux, reports, "k3", reportBody("Alessio")).Code, ShouldEqual, http.StatusCreated)
			})
		})
	})
}
