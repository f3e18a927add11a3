package bookstore

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"gorm.io/gorm"
)

const schemaLockName = "bookstore-schema"

// schemaLocker serializes schema changes and seeding between server
// replicas that share one database.
type schemaLocker interface {
	withLock(ctx context.Context, fn func() error) error
}

// newSchemaLocker picks a lock for the database dialect. PostgreSQL uses an
// advisory lock; SQLite and MySQL use a single row in a lock table.
func newSchemaLocker(db *gorm.DB) (schemaLocker, error) {
	if db.Dialector.Name() == "postgres" {
		return &advisoryLock{
			db:         db,
			key:        int64(crc32.ChecksumIEEE([]byte(schemaLockName))),
			acquire:    pgAdvisoryLock,
			release:    pgAdvisoryUnlock,
		}, nil
	}
	// The table has to exist before the first caller races for the row.
	if err := db.AutoMigrate(&schemaLockRow{}); err != nil {
		return nil, fmt.Errorf("create schema lock table: %w", err)
	}
	holder, _ := os.Hostname()
	if holder == "" {
		holder = "unknown"
	}
	return &rowLock{
		db:         db,
		holder:     holder,
		attempts:   30,
		interval:   time.Second,
		staleAfter: 5 * time.Minute,
	}, nil
}

type advisoryLock struct {
	db      *gorm.DB
	key     int64
	acquire func(conn *gorm.DB, key int64) error
	release func(conn *gorm.DB, key int64) error
}

func pgAdvisoryLock(conn *gorm.DB, key int64) error {
	return conn.Exec("SELECT pg_advisory_lock(?)", key).Error
}

func pgAdvisoryUnlock(conn *gorm.DB, key int64) error {
	return conn.Exec("SELECT pg_advisory_unlock(?)", key).Error
}

// withLock pins one pooled connection for the whole block. Advisory locks
// belong to a session, so the unlock has to run where the lock was taken.
func (l *advisoryLock) withLock(ctx context.Context, fn func() error) error {
	return l.db.WithContext(ctx).Connection(func(conn *gorm.DB) (err error) {
		if acquireErr := l.acquire(conn, l.key); acquireErr != nil {
			return fmt.Errorf("acquire schema advisory lock: %w", acquireErr)
		}
		defer func() {
			if releaseErr := l.release(conn, l.key); releaseErr != nil && err == nil {
				err = fmt.Errorf("release schema advisory lock: %w", releaseErr)
			}
		}()
		return fn()
	})
}

type schemaLockRow struct {
	Name     string    `gorm:"primaryKey;column:name;type:varchar(64)"`
	Holder   string    `gorm:"column:holder"`
	LockedAt time.Time `gorm:"column:locked_at"`
}

func (schemaLockRow) TableName() string { return "bookstore_schema_lock" }

// rowLock holds the lock while its row exists. Rows older than staleAfter
// belong to a replica that died mid-migration and are removed.
type rowLock struct {
	db         *gorm.DB
	holder     string
	attempts   int
	interval   time.Duration
	staleAfter time.Duration
}

func (l *rowLock) withLock(ctx context.Context, fn func() error) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.db.Where("name = ?", schemaLockName).Delete(&schemaLockRow{})
	return fn()
}

func (l *rowLock) acquire(ctx context.Context) error {
	var lastErr error
	for i := 0; i < l.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		db := l.db.WithContext(ctx)
		db.Where("name = ? AND locked_at < ?", schemaLockName, time.Now().Add(-l.staleAfter)).Delete(&schemaLockRow{})

		row := schemaLockRow{Name: schemaLockName, Holder: l.holder, LockedAt: time.Now()}
		if lastErr = db.Create(&row).Error; lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.interval):
		}
	}
	return fmt.Errorf("acquire schema lock after %d attempts: %w", l.attempts, lastErr)
}

// Migrate creates or updates the books table and, when seed is set, loads
// the starter catalog into an empty table. Concurrent callers against the
// same database run one at a time. It returns the number of seeded books.
func (s *BookStore) Migrate(ctx context.Context, seed bool) (int, error) {
	locker, err := newSchemaLocker(s.db)
	if err != nil {
		return 0, err
	}

	var seeded int
	err = locker.withLock(ctx, func() error {
		if err := s.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate books table: %w", err)
		}
		if !seed {
			return nil
		}
		seeded, err = s.Seed(ctx)
		return err
	})
	return seeded, err
}
