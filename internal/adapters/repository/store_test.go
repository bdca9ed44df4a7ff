package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/scoutbook/internal/adapters/repository"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/report"
	"github.com/okian/scoutbook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func player(id, name string, year int, ref string) model.Player {
	return model.Player{
		ID:             id,
		Name:           name,
		Nationality:    "Italy",
		BirthYear:      year,
		ExternalRef:    ref,
		LifecycleState: model.Bookmark,
		CreatedAt:      base,
	}
}

func scoutReport(id, playerID, scout string, at time.Time) model.Report {
	return model.Report{
		ID:             id,
		PlayerID:       playerID,
		ScoutName:      scout,
		CheckType:      model.CheckVideo,
		FinalRating:    model.FinalRating("B"),
		CurrentValue:   3,
		PotentialValue: 4,
		Strengths:      "Vision",
		Weaknesses:     "Poor heading",
		Notes:          "ok",
		ReportDate:     at,
	}
}

// storeContract exercises the behaviour every Store must share.
func storeContract(t *testing.T, name string, open func() repository.Store) {
	ctx := context.Background()

	Convey("Given an empty "+name, t, func() {
		s := open()
		Reset(func() { _ = s.Close() })

		Convey("When a player is created", func() {
			p := player("p1", "Marco Rossi", 2005, "https://www.transfermarkt.com/marco-rossi/profil/spieler/1234")
			So(s.CreatePlayer(ctx, p, nil), ShouldBeNil)

			Convey("Then it can be read back by id, key and external id", func() {
				got, err := s.GetPlayer(ctx, "p1")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Marco Rossi")
				So(got.LifecycleState, ShouldEqual, model.Bookmark)
				So(got.LegacyRating, ShouldBeNil)

				got, err = s.FindByIdentityKey(ctx, "marco rossi_italy_2005")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "p1")

				got, err = s.FindByExternalID(ctx, "1234")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "p1")
			})

			Convey("Then a second player with the same identity key conflicts", func() {
				dup := player("p2", "  MARCO   Rossì ", 2005, "")
				err := s.CreatePlayer(ctx, dup, nil)
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)

				_, err = s.GetPlayer(ctx, "p2")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then a second player with the same external id conflicts", func() {
				dup := player("p2", "Someone Else", 2001, "https://www.transfermarkt.it/other-slug/profil/spieler/1234")
				So(errors.Is(s.CreatePlayer(ctx, dup, nil), repository.ErrConflict), ShouldBeTrue)
			})

			Convey("Then players without a birth year or link do not collide", func() {
				So(s.CreatePlayer(ctx, player("p2", "Marco Rossi", 0, ""), nil), ShouldBeNil)
				So(s.CreatePlayer(ctx, player("p3", "Marco Rossi", 0, ""), nil), ShouldBeNil)
			})
		})

		Convey("When a player is created with a bundled report", func() {
			p := player("p1", "Luca Bianchi", 2004, "")
			p.LifecycleState = model.Scouted
			p.LegacyRating = &model.Rating{Current: 3, Potential: 4}
			r := scoutReport("r1", "", "Alessio", base)
			So(s.CreatePlayer(ctx, p, &r), ShouldBeNil)

			Convey("Then both records are stored", func() {
				got, err := s.GetPlayer(ctx, "p1")
				So(err, ShouldBeNil)
				So(got.IsScouted(), ShouldBeTrue)
				So(got.LegacyRating, ShouldResemble, &model.Rating{Current: 3, Potential: 4})

				reports, err := s.ListReports(ctx, "p1")
				So(err, ShouldBeNil)
				So(len(reports), ShouldEqual, 1)
				So(reports[0].PlayerID, ShouldEqual, "p1")
			})
		})

		Convey("When a player has no name", func() {
			err := s.CreatePlayer(ctx, player("p1", " ", 2004, ""), nil)
			So(err, ShouldNotBeNil)
		})

		Convey("When players are listed", func() {
			a := player("a", "Anna", 2003, "")
			b := player("b", "Bruno", 2003, "")
			b.CreatedAt = base.Add(time.Hour)
			b.LifecycleState = model.Scouted
			So(s.CreatePlayer(ctx, a, nil), ShouldBeNil)
			So(s.CreatePlayer(ctx, b, nil), ShouldBeNil)

			all, err := s.ListPlayers(ctx, "")
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 2)
			So(all[0].ID, ShouldEqual, "b")

			bookmarks, err := s.ListPlayers(ctx, model.Bookmark)
			So(err, ShouldBeNil)
			So(len(bookmarks), ShouldEqual, 1)
			So(bookmarks[0].ID, ShouldEqual, "a")
		})

		Convey("When a bookmark is promoted", func() {
			So(s.CreatePlayer(ctx, player("p1", "Dario", 2006, ""), nil), ShouldBeNil)

			ok, err := s.PromoteIfBookmark(ctx, "p1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			Convey("Then promoting again is a no-op", func() {
				ok, err := s.PromoteIfBookmark(ctx, "p1")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)

				got, _ := s.GetPlayer(ctx, "p1")
				So(got.LifecycleState, ShouldEqual, model.Scouted)
			})

			Convey("Then an unknown player is not found", func() {
				_, err := s.PromoteIfBookmark(ctx, "nope")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When promotions race", func() {
			So(s.CreatePlayer(ctx, player("p1", "Elia", 2006, ""), nil), ShouldBeNil)

			var wg sync.WaitGroup
			var mu sync.Mutex
			wins := 0
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := s.PromoteIfBookmark(ctx, "p1")
					if err == nil && ok {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			So(wins, ShouldEqual, 1)
		})

		Convey("When reports are added", func() {
			So(s.CreatePlayer(ctx, player("p1", "Fabio", 2002, ""), nil), ShouldBeNil)
			So(s.AddReport(ctx, scoutReport("r1", "p1", "Alessio", base)), ShouldBeNil)
			So(s.AddReport(ctx, scoutReport("r2", "p1", "Roberto", base.Add(time.Minute))), ShouldBeNil)
			So(s.AddReport(ctx, scoutReport("r3", "p1", "Roberto", base.Add(time.Minute))), ShouldBeNil)

			Convey("Then they list most recent first", func() {
				reports, err := s.ListReports(ctx, "p1")
				So(err, ShouldBeNil)
				ids := make([]string, 0, len(reports))
				for _, r := range reports {
					ids = append(ids, r.ID)
				}
				So(ids, ShouldResemble, []string{"r3", "r2", "r1"})
			})

			Convey("Then a report for an unknown player is rejected", func() {
				err := s.AddReport(ctx, scoutReport("r9", "ghost", "Alessio", base))
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then an unknown player has no reports", func() {
				reports, err := s.ListReports(ctx, "ghost")
				So(err, ShouldBeNil)
				So(reports, ShouldBeEmpty)
			})

			Convey("Then deleting returns the removed report", func() {
				r, err := s.DeleteReport(ctx, "r2")
				So(err, ShouldBeNil)
				So(r.ScoutName, ShouldEqual, "Roberto")

				_, err = s.DeleteReport(ctx, "r2")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				reports, _ := s.ListReports(ctx, "p1")
				So(len(reports), ShouldEqual, 2)
			})

			Convey("Then feedback attaches exactly once", func() {
				fb := model.DirectorFeedback{Name: "Director", Feedback: "Follow up", Date: base.Add(time.Hour)}
				r, err := s.AttachFeedback(ctx, "r1", fb)
				So(err, ShouldBeNil)
				So(r.Director, ShouldNotBeNil)
				So(r.Director.Feedback, ShouldEqual, "Follow up")

				_, err = s.AttachFeedback(ctx, "r1", fb)
				So(errors.Is(err, report.ErrAlreadyAttached), ShouldBeTrue)

				_, err = s.AttachFeedback(ctx, "missing", fb)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				got, err := s.GetReport(ctx, "r1")
				So(err, ShouldBeNil)
				So(got.HasFeedback(), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, "memory store", func() repository.Store {
		return repository.NewMemoryStore()
	})
}

func TestGormStoreSQLite(t *testing.T) {
	storeContract(t, "sqlite store", func() repository.Store {
		s, err := repository.Open(repository.DriverSQLite, ":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return s
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	Convey("Given an unsupported driver name", t, func() {
		_, err := repository.Open("oracle", "dsn")
		So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
	})
}
