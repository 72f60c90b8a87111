package nota

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela notas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List devolve as anotações, editadas mais recentemente primeiro.
func (r *Repository) List(ctx context.Context) ([]Nota, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, conteudo, created_at, updated_at
        FROM notas
        ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Nota{}
	for rows.Next() {
		n, err := scanNota(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Nota, error) {
	return scanNota(r.pool.QueryRow(ctx, `
        SELECT id, conteudo, created_at, updated_at
        FROM notas
        WHERE id = $1`, id))
}

// Create insere uma anotação vazia.
func (r *Repository) Create(ctx context.Context) (*Nota, error) {
	return scanNota(r.pool.QueryRow(ctx, `
        INSERT INTO notas (conteudo)
        VALUES ('')
        RETURNING id, conteudo, created_at, updated_at`))
}

// Save regrava o conteúdo inteiro.
func (r *Repository) Save(ctx context.Context, id uuid.UUID, conteudo string) (*Nota, error) {
	return scanNota(r.pool.QueryRow(ctx, `
        UPDATE notas
        SET conteudo = $1, updated_at = now()
        WHERE id = $2
        RETURNING id, conteudo, created_at, updated_at`, conteudo, id))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNota(row pgx.Row) (*Nota, error) {
	var n Nota
	if err := row.Scan(&n.ID, &n.Conteudo, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
