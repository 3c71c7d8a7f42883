// Package repository содержит реализации хранилища снимков леджера.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/restobill-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore хранит снимок леджера одной точки в PostgreSQL: одна строка
// JSONB на филиал, перезаписываемая при каждом сохранении.
type PostgresStore struct {
	pool     *pgxpool.Pool
	branchID string
}

// NewPostgresStore создаёт хранилище снимков и инициализирует схему БД через миграции.
func NewPostgresStore(dsn, branchID string) (*PostgresStore, error) {
	if branchID == "" {
		return nil, errors.New("branch id must not be empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, branchID: branchID}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Load читает снимок филиала. Отсутствие строки означает отсутствие снимка (nil, nil).
func (s *PostgresStore) Load(ctx context.Context) (*model.Snapshot, error) {
	var data []byte

	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`SELECT data FROM ledger_snapshots WHERE branch_id = $1`,
			s.branchID,
		).Scan(&data)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return &snap, nil
}

// Save перезаписывает снимок филиала.
func (s *PostgresStore) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	err = s.withRetry(ctx, func() error {
		_, execErr := s.pool.Exec(ctx,
			`INSERT INTO ledger_snapshots (branch_id, data, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (branch_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			s.branchID, data,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return nil
}
