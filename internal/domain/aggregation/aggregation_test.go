package aggregation_test

import (
	"testing"
	"time"

	"github.com/okian/scoutbook/internal/domain/aggregation"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func rep(scout string, cur, pot int, strengths string) model.Report {
	return model.Report{ScoutName: scout, CurrentValue: cur, PotentialValue: pot, Strengths: strengths}
}

func TestConsolidatedRating(t *testing.T) {
	Convey("Given a set of reports", t, func() {
		Convey("When current values are 3 and 4", func() {
			r := aggregation.ConsolidatedRating([]model.Report{rep("A", 3, 4, ""), rep("B", 4, 4, "")}, nil)
			So(r.Current, ShouldEqual, 3.5)
			So(r.Potential, ShouldEqual, 4)
		})

		Convey("When current values are 3, 3 and 4", func() {
			r := aggregation.ConsolidatedRating([]model.Report{rep("A", 3, 2, ""), rep("B", 3, 2, ""), rep("C", 4, 3, "")}, nil)
			So(r.Current, ShouldEqual, 3.5)
			So(r.Potential, ShouldEqual, 2.5)
		})

		Convey("When the mean sits exactly on a quarter it rounds up", func() {
			r := aggregation.ConsolidatedRating([]model.Report{rep("A", 3, 1, ""), rep("B", 3, 1, ""), rep("C", 3, 1, ""), rep("D", 4, 2, "")}, nil)
			So(r.Current, ShouldEqual, 3.5)
			So(r.Potential, ShouldEqual, 1.5)
		})

		Convey("When some reports lack a value they are ignored for that value", func() {
			r := aggregation.ConsolidatedRating([]model.Report{rep("A", 0, 5, ""), rep("B", 2, 0, "")}, nil)
			So(r.Current, ShouldEqual, 2)
			So(r.Potential, ShouldEqual, 5)
		})

		Convey("When no report carries a value the legacy rating is used", func() {
			r := aggregation.ConsolidatedRating(nil, &model.Rating{Current: 3, Potential: 4})
			So(r, ShouldResemble, model.Rating{Current: 3, Potential: 4})

			r = aggregation.ConsolidatedRating([]model.Report{rep("A", 0, 2, "")}, &model.Rating{Current: 3, Potential: 4})
			So(r, ShouldResemble, model.Rating{Current: 3, Potential: 2})
		})

		Convey("When nothing is known the rating is zero", func() {
			So(aggregation.ConsolidatedRating(nil, nil), ShouldResemble, model.Rating{})
		})
	})
}

func TestRoundHalf(t *testing.T) {
	Convey("Given values to round", t, func() {
		So(aggregation.RoundHalf(3.24), ShouldEqual, 3.0)
		So(aggregation.RoundHalf(3.25), ShouldEqual, 3.5)
		So(aggregation.RoundHalf(3.74), ShouldEqual, 3.5)
		So(aggregation.RoundHalf(3.75), ShouldEqual, 4.0)
		So(aggregation.RoundHalf(10.0/3.0), ShouldEqual, 3.5)
	})
}

func TestAggregateField(t *testing.T) {
	Convey("Given reports from two scouts", t, func() {
		reports := []model.Report{
			rep("Alessio", 3, 4, "Pace, Shooting"),
			rep("Roberto", 4, 4, " Shooting ,, Passing "),
		}
		reports[0].Weaknesses = "Heading"

		Convey("Then each term is tagged with its scout and repeats are kept", func() {
			So(aggregation.AggregateField(reports, model.FieldStrengths), ShouldResemble,
				[]string{"Pace (Alessio)", "Shooting (Alessio)", "Shooting (Roberto)", "Passing (Roberto)"})
		})

		Convey("Then weaknesses are read from their own field", func() {
			So(aggregation.AggregateField(reports, model.FieldWeaknesses), ShouldResemble, []string{"Heading (Alessio)"})
		})

		Convey("Then no reports give an empty list", func() {
			So(aggregation.AggregateField(nil, model.FieldStrengths), ShouldBeEmpty)
		})
	})
}

func TestCategorize(t *testing.T) {
	Convey("Given tagged terms", t, func() {
		tx := taxonomy.Default()
		tagged := []string{"Acceleration (Alessio)", "Leadership (Roberto)", "Bicycle kicks (Roberto)", "Vision(Alessio)"}

		out := aggregation.Categorize(tagged, tx)

		Convey("Then known terms land in their category with the tag preserved", func() {
			So(out[model.Physical], ShouldResemble, []string{"Acceleration (Alessio)"})
			So(out[model.Mental], ShouldResemble, []string{"Leadership (Roberto)"})
			So(out[model.Technical], ShouldResemble, []string{"Vision(Alessio)"})
		})

		Convey("Then an unrecognised custom term goes to other with its tag", func() {
			So(out[model.Other], ShouldResemble, []string{"Bicycle kicks (Roberto)"})
		})

		Convey("Then empty categories are present", func() {
			So(out[model.Tactical], ShouldNotBeNil)
			So(out[model.Tactical], ShouldBeEmpty)
		})
	})

	Convey("Given a term with parentheses of its own", t, func() {
		So(aggregation.StripAttribution("Transitions (positive) (Alessio)"), ShouldEqual, "Transitions (positive)")
		So(aggregation.StripAttribution("Acceleration"), ShouldEqual, "Acceleration")
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a player with two reports listed newest first", t, func() {
		base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		r1 := rep("Alessio", 3, 4, "Pace, Shooting")
		r1.ReportDate = base
		r1.Weaknesses = "Dives into tackles"
		r2 := rep("Roberto", 4, 4, "Shooting, Passing")
		r2.ReportDate = base.Add(time.Hour)
		r2.Weaknesses = "Slow acceleration"
		p := model.Player{ID: "p", LifecycleState: model.Scouted}

		s := aggregation.Summarize(p, []model.Report{r2, r1}, taxonomy.Default(), model.NewRoster("Alessio", "Roberto"))

		Convey("Then attributions follow submission order", func() {
			So(s.Strengths, ShouldResemble, []string{"Pace (Alessio)", "Shooting (Alessio)", "Shooting (Roberto)", "Passing (Roberto)"})
			So(s.Rating, ShouldResemble, model.Rating{Current: 3.5, Potential: 4})
			So(s.Scouts, ShouldResemble, []string{"Alessio", "Roberto"})
			So(s.Pending, ShouldBeEmpty)
			So(s.ReportCount, ShouldEqual, 2)
			So(s.WeaknessesByCategory[model.Physical], ShouldResemble, []string{"Slow acceleration (Roberto)"})
			So(s.WeaknessesByCategory[model.Other], ShouldResemble, []string{"Dives into tackles (Alessio)"})
		})
	})
}

func TestDashboard(t *testing.T) {
	Convey("Given a roster of rated players", t, func() {
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		var players []aggregation.PlayerRating
		for i := 0; i < 4; i++ {
			players = append(players, aggregation.PlayerRating{
				Player: model.Player{ID: "s" + string(rune('0'+i)), LifecycleState: model.Scouted, CreatedAt: base.Add(time.Duration(i) * time.Hour)},
				Rating: model.Rating{Current: 3, Potential: float64(2 + i)},
			})
		}
		for i := 0; i < 6; i++ {
			players = append(players, aggregation.PlayerRating{
				Player: model.Player{ID: "b" + string(rune('0'+i)), LifecycleState: model.Bookmark, CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			})
		}

		st := aggregation.Dashboard(players)

		Convey("Then totals and averages cover the right subsets", func() {
			So(st.TotalScouted, ShouldEqual, 4)
			So(st.TotalBookmarks, ShouldEqual, 6)
			So(st.AvgPotential, ShouldEqual, 3.5)
			So(st.HighPotential, ShouldEqual, 2)
		})

		Convey("Then recent lists are newest first and bounded", func() {
			So(len(st.RecentScouted), ShouldEqual, 3)
			So(st.RecentScouted[0].Player.ID, ShouldEqual, "s3")
			So(len(st.RecentBookmarks), ShouldEqual, 5)
			So(st.RecentBookmarks[0].Player.ID, ShouldEqual, "b5")
		})
	})

	Convey("Given no players", t, func() {
		st := aggregation.Dashboard(nil)
		So(st.TotalScouted, ShouldEqual, 0)
		So(st.AvgPotential, ShouldEqual, 0)
		So(st.RecentScouted, ShouldBeEmpty)
	})
}
