package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Row is the seller_sessions table. Migrations create it; the store never
// runs AutoMigrate.
type Row struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	Username  string    `gorm:"type:varchar(150);not null;index:ix_seller_sessions_username"`
	Token     string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"type:datetime(3);not null;index:ix_seller_sessions_expires_at"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Row) TableName() string { return "seller_sessions" }

type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// MySQLDSN forces the options the store relies on: DATETIME columns scan
// into time.Time and are stored in UTC.
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// OpenMySQL connects gorm to the session database.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	dsn, err := MySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Create(ctx context.Context, sess *Session) error {
	row := Row{
		ID:        sess.ID,
		Username:  sess.Username,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*Session, error) {
	var row Row
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, s.now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &Session{
		ID:        row.ID,
		Token:     row.Token,
		Username:  row.Username,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&Row{}, "id = ?", id).Error
}

// PurgeExpired removes sessions past their expiry and returns how many.
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&Row{})
	return res.RowsAffected, res.Error
}
