// Package sqlitedriver implements webstore.Driver as a GORM table on the
// pure-Go SQLite driver.
package sqlitedriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"code.byted.org/khicago/webstore"
)

// DefaultTable is the table entries live in unless Config.Table says otherwise.
const DefaultTable = "webstore_entries"

// Entry is one stored envelope.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

// Driver persists envelopes in a single key/value table.
type Driver struct {
	db    *gorm.DB
	table string
	owned bool
}

// Open opens (creating if needed) the database described by cfg.
func Open(cfg Config) (*Driver, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sqlite config: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.dsn()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	d, err := New(db, cfg.Table, *cfg.AutoMigrate)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	d.owned = true
	return d, nil
}

// New wraps an existing connection. When migrate is true the entries table
// is created if missing. Close does not close db.
func New(db *gorm.DB, table string, migrate bool) (*Driver, error) {
	if table == "" {
		table = DefaultTable
	}
	d := &Driver{db: db, table: table}
	if migrate {
		if err := d.query(context.Background()).AutoMigrate(&Entry{}); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return d, nil
}

func (d *Driver) query(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Table(d.table)
}

func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := d.query(ctx).Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, webstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return e.Value, nil
}

func (d *Driver) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value}
	err := d.query(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (d *Driver) Delete(ctx context.Context, key string) error {
	if err := d.query(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

// Clear deletes every entry of the table.
func (d *Driver) Clear(ctx context.Context) error {
	if err := d.query(ctx).Where("1 = 1").Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

// Keys returns all keys in ascending order.
func (d *Driver) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := d.query(ctx).Order("entry_key").Pluck("entry_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("sqlite keys: %w", err)
	}
	return keys, nil
}

// Len returns the number of stored entries, expired ones included.
func (d *Driver) Len(ctx context.Context) (int64, error) {
	var n int64
	err := d.query(ctx).Count(&n).Error
	return n, err
}

// Close closes the connection if Open created it.
func (d *Driver) Close() error {
	if d == nil || !d.owned {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ webstore.Driver = (*Driver)(nil)
