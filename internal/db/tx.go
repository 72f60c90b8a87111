package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Beginner abre transações; *pgxpool.Pool e *pgx.Conn satisfazem.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// ReadCommitted é o nível das escritas em lote, que não leem antes de gravar.
var ReadCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

// WithTx roda fn numa transação aberta com opts. Erro ou pânico em fn
// desfazem tudo; o commit só acontece quando fn devolve nil.
func WithTx(ctx context.Context, b Beginner, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, b, opts, fn)
}
