// Package storage keeps a durable record of users, their actions and the
// files delivered to them. It never holds conversation state.
package storage

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pavelc4/aether-media-bot/internal/engine"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

type Store struct {
	db *gorm.DB
}

var _ engine.Recorder = (*Store)(nil)

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := configureConnectionPool(db); err != nil {
		return nil, errors.Wrap(err, "configure pool")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}
	logger.Info("Database ready")
	return &Store{db: db}, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// upsertUser keeps FirstSeen from the first insert and refreshes the rest.
func upsertUser(tx *gorm.DB, u *User) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "last_seen"}),
	}).Create(u)
}

func (s *Store) SaveUser(ctx context.Context, userID int64, username string) error {
	now := time.Now()
	err := upsertUser(s.db.WithContext(ctx), &User{ID: userID, Username: username, FirstSeen: now, LastSeen: now}).Error
	return errors.Wrap(err, "save user")
}

func (s *Store) LogAction(ctx context.Context, userID int64, action, url string) error {
	err := s.db.WithContext(ctx).Create(&ActionLog{UserID: userID, Action: action, URL: url}).Error
	return errors.Wrap(err, "log action")
}

func (s *Store) SaveDownload(ctx context.Context, userID int64, url, title string, size int64) error {
	err := s.db.WithContext(ctx).Create(&Download{UserID: userID, URL: url, Title: title, Size: size}).Error
	return errors.Wrap(err, "save download")
}

type Totals struct {
	Users     int64
	Downloads int64
	Bytes     int64
}

// Totals aggregates the lifetime figures shown by /stats.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	db := s.db.WithContext(ctx)
	if err := db.Model(&User{}).Count(&t.Users).Error; err != nil {
		return t, errors.Wrap(err, "count users")
	}
	if err := db.Model(&Download{}).Count(&t.Downloads).Error; err != nil {
		return t, errors.Wrap(err, "count downloads")
	}
	if err := db.Model(&Download{}).Select("COALESCE(SUM(size), 0)").Scan(&t.Bytes).Error; err != nil {
		return t, errors.Wrap(err, "sum sizes")
	}
	return t, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
