package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/okian/scoutbook/internal/adapters/notify"
	"github.com/okian/scoutbook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestRecorder(t *testing.T) {
	Convey("Given a recorder", t, func() {
		r := notify.NewRecorder(nil)
		ctx := context.Background()

		So(r.Publish(ctx, notify.Event{Kind: notify.PlayerCreated, PlayerID: "p"}), ShouldBeNil)
		So(r.Publish(ctx, notify.Event{Kind: notify.ReportSubmitted, PlayerID: "p", ReportID: "r"}), ShouldBeNil)

		Convey("Then events are kept in order", func() {
			So(r.Kinds(), ShouldResemble, []notify.Kind{notify.PlayerCreated, notify.ReportSubmitted})
			So(r.Events()[1].ReportID, ShouldEqual, "r")
		})
	})

	Convey("Given a failing recorder", t, func() {
		boom := errors.New("boom")
		r := notify.NewRecorder(boom)

		So(r.Publish(context.Background(), notify.Event{Kind: notify.PlayerCreated}), ShouldEqual, boom)
		So(r.Events(), ShouldBeEmpty)
	})
}

func TestNoop(t *testing.T) {
	Convey("Given the no-op publisher", t, func() {
		var p notify.Publisher = notify.Noop{}
		So(p.Publish(context.Background(), notify.Event{Kind: notify.PlayerPromoted}), ShouldBeNil)
		So(p.Close(), ShouldBeNil)
	})
}

func TestRedis(t *testing.T) {
	Convey("Given a redis publisher without a reachable server", t, func() {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		p := notify.NewRedis(rdb, "")
		Reset(func() { _ = p.Close() })

		Convey("Then the default channel is used", func() {
			So(p.Channel(), ShouldEqual, notify.DefaultChannel)
		})

		Convey("Then publishing fails with ErrPublish", func() {
			err := p.Publish(context.Background(), notify.Event{Kind: notify.ReportDeleted, PlayerID: "p"})
			So(errors.Is(err, notify.ErrPublish), ShouldBeTrue)
		})

		Convey("Then dialing fails the ping", func() {
			_, err := notify.DialRedis(context.Background(), "127.0.0.1:1", "x")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a nil publisher", t, func() {
		var p *notify.Redis
		So(errors.Is(p.Publish(context.Background(), notify.Event{}), notify.ErrNoClient), ShouldBeTrue)
		So(p.Close(), ShouldBeNil)
	})
}
