// Package store is the persistence and transaction layer. Every multi-row
// write runs inside a single transaction so readers never observe a
// formulation or batch with a partial child list.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store wraps a gorm handle. A Store obtained inside Transaction is bound to
// that transaction.
type Store struct {
	db   *gorm.DB
	now  func() time.Time
	inTx bool
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{
		db: db,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Store) WithClock(now func() time.Time) *Store {
	clone := *s
	clone.now = now
	return &clone
}

// DB exposes the underlying handle for callers that need raw queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to one database transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calls on
// a Store that is already transactional reuse the open transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return gorm.ErrInvalidDB
	}
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&Store{db: gtx, now: s.now, inTx: true})
	})
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, id asc")
}

func wrapNotFound(err error, format string, args ...any) error {
	if notFound(err) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
