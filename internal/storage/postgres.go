package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trademe-app/trademe-api/internal/db"
)

// querier объединяет пул соединений и транзакцию pgx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres реализует Store поверх pgx
type Postgres struct {
	q    querier
	pool *pgxpool.Pool
}

// NewPostgres создает хранилище поверх пула соединений
func NewPostgres(database *db.DB) *Postgres {
	return &Postgres{q: database.Pool, pool: database.Pool}
}

// WithinTx выполняет fn в одной транзакции. Ошибка fn откатывает транзакцию.
// Вложенный вызов внутри уже открытой транзакции продолжает ее.
func (s *Postgres) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}
