package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/google/uuid"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

// Store implements repository.Store on top of a SQLite *sql.DB.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the database described by cfg and verifies the connection.
// Call Migrate before serving requests against a fresh database.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	if cfg.inMemory() {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return ApplyMigrations(ctx, s.db)
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Open starts a new session.
func (s *Store) Open(ctx context.Context) (repository.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{store: s, id: uuid.NewString()}, nil
}

type session struct {
	repository.ChangeSet
	store  *Store
	id     string
	closed bool
}

func (s *session) Restaurants() repository.RestaurantSet {
	return restaurantSet{s}
}

func (s *session) Products() repository.ProductSet {
	return productSet{s}
}

func (s *session) Close() error {
	s.closed = true
	s.Reset()
	return nil
}

func (s *session) SaveChanges(ctx context.Context) (err error) {
	if s.closed {
		return repository.ErrSessionClosed
	}
	if s.Len() == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rb := tx.Rollback(); rb != nil {
				s.store.logger.Warn("sqlite: rollback failed", "session", s.id, "error", rb)
			}
		}
	}()

	var assign []func()
	ids := repository.PendingIDs{}
	for _, ch := range s.Pending() {
		var a func()
		switch {
		case ch.Restaurant != nil:
			a, err = applyRestaurant(ctx, tx, ids, ch.Op, ch.Restaurant)
		case ch.Product != nil:
			a, err = applyProduct(ctx, tx, ids, ch.Op, ch.Product)
		}
		if err != nil {
			return err
		}
		if a != nil {
			assign = append(assign, a)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	for _, a := range assign {
		a()
	}

	added, updated, removed := s.Counts()
	s.store.logger.Debug("changes saved",
		"store", "sqlite",
		"session", s.id,
		"added", added,
		"updated", updated,
		"removed", removed,
	)
	s.Reset()
	return nil
}

// lastInsertID reads the identifier assigned by an INSERT.
func lastInsertID(res sql.Result, what string) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: last insert id (%s): %w", what, err)
	}
	return id, nil
}

// expectOneRow turns a zero-row UPDATE or DELETE into notFound.
func expectOneRow(res sql.Result, what string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected (%s): %w", what, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
