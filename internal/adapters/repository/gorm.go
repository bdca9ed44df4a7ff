package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/report"
	"github.com/okian/scoutbook/pkg/logger"
	"github.com/okian/scoutbook/pkg/metrics"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// GormStore is a Store backed by a SQL database through gorm.
type GormStore struct {
	db      *gorm.DB
	log     logger.Logger
	migrate bool
}

var _ Store = (*GormStore)(nil)

// Open connects to driver/dsn and returns a migrated store.
func Open(driver, dsn string, opts ...Option) (*GormStore, error) {
	var dial gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverPostgres:
		dial = postgres.Open(dsn)
	case DriverSQLite:
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if strings.EqualFold(driver, DriverSQLite) && strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewGormStore(db, opts...)
}

// NewGormStore wraps an open gorm handle. The handle should be opened with
// TranslateError so unique violations surface as ErrConflict.
func NewGormStore(db *gorm.DB, opts ...Option) (*GormStore, error) {
	s := &GormStore{db: db, migrate: true}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("repository")
	}
	if s.migrate {
		if err := db.AutoMigrate(&playerRow{}, &reportRow{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		s.log.Debug(context.Background(), "schema migrated", logger.String("dialect", db.Dialector.Name()))
	}
	return s, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *GormStore) CreatePlayer(ctx context.Context, p model.Player, bundled *model.Report) error {
	defer observe("create_player", time.Now())

	key, ext, err := uniqueKeys(p)
	if err != nil {
		return err
	}
	row := newPlayerRow(p, key, ext)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if bundled != nil {
			r := newReportRow(*bundled)
			r.PlayerID = p.ID
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate("create player", err)
}

func (s *GormStore) findPlayer(ctx context.Context, op, query string, arg any) (model.Player, error) {
	defer observe(op, time.Now())

	var row playerRow
	if err := s.db.WithContext(ctx).Where(query, arg).Take(&row).Error; err != nil {
		return model.Player{}, translate(strings.ReplaceAll(op, "_", " "), err)
	}
	return row.model(), nil
}

func (s *GormStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	return s.findPlayer(ctx, "get_player", "id = ?", id)
}

func (s *GormStore) FindByIdentityKey(ctx context.Context, key string) (model.Player, error) {
	return s.findPlayer(ctx, "find_by_identity_key", "identity_key = ?", key)
}

func (s *GormStore) FindByExternalID(ctx context.Context, externalID string) (model.Player, error) {
	return s.findPlayer(ctx, "find_by_external_id", "external_id = ?", externalID)
}

func (s *GormStore) ListPlayers(ctx context.Context, state model.LifecycleState) ([]model.Player, error) {
	defer observe("list_players", time.Now())

	q := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if state != "" {
		q = q.Where("is_scouted = ?", state == model.Scouted)
	}
	var rows []playerRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, translate("list players", err)
	}
	out := make([]model.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// PromoteIfBookmark is a compare-and-swap on is_scouted.
func (s *GormStore) PromoteIfBookmark(ctx context.Context, playerID string) (bool, error) {
	defer observe("promote", time.Now())

	res := s.db.WithContext(ctx).Model(&playerRow{}).
		Where("id = ? AND is_scouted = ?", playerID, false).
		Update("is_scouted", true)
	if res.Error != nil {
		return false, translate("promote", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&playerRow{}).Where("id = ?", playerID).Count(&n).Error; err != nil {
		return false, translate("promote", err)
	}
	if n == 0 {
		return false, fmt.Errorf("promote %s: %w", playerID, ErrNotFound)
	}
	return false, nil
}

func (s *GormStore) AddReport(ctx context.Context, r model.Report) error {
	defer observe("add_report", time.Now())

	row := newReportRow(r)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&playerRow{}).Where("id = ?", r.PlayerID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("player %s: %w", r.PlayerID, gorm.ErrRecordNotFound)
		}
		return tx.Create(&row).Error
	})
	return translate("add report", err)
}

func (s *GormStore) GetReport(ctx context.Context, id string) (model.Report, error) {
	defer observe("get_report", time.Now())

	var row reportRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return model.Report{}, translate("get report", err)
	}
	return row.model(), nil
}

func (s *GormStore) ListReports(ctx context.Context, playerID string) ([]model.Report, error) {
	defer observe("list_reports", time.Now())

	var rows []reportRow
	err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("report_date DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list reports", err)
	}
	out := make([]model.Report, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *GormStore) DeleteReport(ctx context.Context, id string) (model.Report, error) {
	defer observe("delete_report", time.Now())

	var row reportRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&reportRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return model.Report{}, translate("delete report", err)
	}
	return row.model(), nil
}

// AttachFeedback only writes when no feedback is present yet.
func (s *GormStore) AttachFeedback(ctx context.Context, reportID string, fb model.DirectorFeedback) (model.Report, error) {
	defer observe("attach_feedback", time.Now())

	var row reportRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&reportRow{}).
			Where("id = ? AND (director_feedback IS NULL OR director_feedback = ?)", reportID, "").
			Updates(map[string]any{
				"director_name":          fb.Name,
				"director_feedback":      fb.Feedback,
				"director_feedback_date": fb.Date,
			})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("id = ?", reportID).Take(&row).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return report.ErrAlreadyAttached
		}
		return nil
	})
	if err != nil {
		return model.Report{}, translate("attach feedback", err)
	}
	return row.model(), nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
