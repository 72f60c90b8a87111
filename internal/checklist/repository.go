package checklist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela checklist.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List ordena por data decrescente e, no mesmo dia, por criação.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, titulo, data, concluido, created_at
        FROM checklist
        ORDER BY data DESC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *Repository) Create(ctx context.Context, titulo string, data time.Time) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
        INSERT INTO checklist (titulo, data)
        VALUES ($1, $2)
        RETURNING id, titulo, data, concluido, created_at`, titulo, data))
}

// Toggle inverte o campo concluido no próprio banco.
func (r *Repository) Toggle(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
        UPDATE checklist
        SET concluido = NOT concluido
        WHERE id = $1
        RETURNING id, titulo, data, concluido, created_at`, id))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM checklist WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.Titulo, &it.Data, &it.Concluido, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}
