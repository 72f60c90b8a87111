package demanda

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/demandas/internal/db"
)

const demandaColumns = `id, numero_glpi, titulo, descricao, prioridade, status, prazo, anotacoes, situacao, demanda_pai_id, created_at, updated_at`

// Repository provê acesso à tabela demandas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List devolve a tabela inteira, mais recentes primeiro.
func (r *Repository) List(ctx context.Context) ([]Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Demanda{}
	for rows.Next() {
		d, err := scanDemanda(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// Get busca uma demanda específica.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas WHERE id = $1`
	return scanDemanda(r.pool.QueryRow(ctx, query, id))
}

// Create insere uma nova demanda.
func (r *Repository) Create(ctx context.Context, in Input) (*Demanda, error) {
	query := `
        INSERT INTO demandas (numero_glpi, titulo, descricao, prioridade, status, prazo, anotacoes, situacao, demanda_pai_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + demandaColumns

	row := r.pool.QueryRow(ctx, query,
		in.NumeroGLPI,
		in.Titulo,
		in.Descricao,
		in.Prioridade,
		in.Status,
		in.Prazo,
		in.Anotacoes,
		in.Situacao,
		in.DemandaPaiID,
	)
	return scanDemanda(row)
}

// Update regrava os campos do formulário completo. A referência ao pai não muda.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Demanda, error) {
	query := `
        UPDATE demandas
        SET numero_glpi = $1, titulo = $2, descricao = $3, prioridade = $4, status = $5,
            prazo = $6, anotacoes = $7, situacao = $8, updated_at = now()
        WHERE id = $9
        RETURNING ` + demandaColumns

	row := r.pool.QueryRow(ctx, query,
		in.NumeroGLPI,
		in.Titulo,
		in.Descricao,
		in.Prioridade,
		in.Status,
		in.Prazo,
		in.Anotacoes,
		in.Situacao,
		id,
	)
	return scanDemanda(row)
}

var updatableColumns = map[string]string{
	CampoStatus:     "status",
	CampoPrioridade: "prioridade",
	CampoSituacao:   "situacao",
	"anotacoes":     "anotacoes",
}

// UpdateField altera uma única coluna. value nil grava NULL.
func (r *Repository) UpdateField(ctx context.Context, id uuid.UUID, field string, value *string) (*Demanda, error) {
	column, ok := updatableColumns[field]
	if !ok {
		return nil, ErrInvalidField
	}

	query := fmt.Sprintf(`
        UPDATE demandas
        SET %s = $1, updated_at = now()
        WHERE id = $2
        RETURNING %s`, column, demandaColumns)

	return scanDemanda(r.pool.QueryRow(ctx, query, value, id))
}

// UpdateStatusMany aplica status a todas as ids numa única transação.
// Se alguma id não existir nada é gravado.
func (r *Repository) UpdateStatusMany(ctx context.Context, ids []uuid.UUID, status string) error {
	return db.WithTx(ctx, r.pool, db.ReadCommitted, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE demandas
            SET status = $1, updated_at = now()
            WHERE id = ANY($2::uuid[])`, status, uuidStrings(ids))
		if err != nil {
			return err
		}
		if tag.RowsAffected() != int64(len(ids)) {
			return ErrPartialBulkUpdate
		}
		return nil
	})
}

// Delete remove a demanda; variações passam a ser principais.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM demandas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func scanDemanda(row pgx.Row) (*Demanda, error) {
	var d Demanda
	if err := row.Scan(
		&d.ID,
		&d.NumeroGLPI,
		&d.Titulo,
		&d.Descricao,
		&d.Prioridade,
		&d.Status,
		&d.Prazo,
		&d.Anotacoes,
		&d.Situacao,
		&d.DemandaPaiID,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.NumeroGLPI = strings.TrimSpace(d.NumeroGLPI)
	return &d, nil
}
