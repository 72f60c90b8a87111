package nota

import (
	"context"

	"github.com/google/uuid"
)

// Store é o gateway de persistência das anotações.
type Store interface {
	List(ctx context.Context) ([]Nota, error)
	Get(ctx context.Context, id uuid.UUID) (*Nota, error)
	Create(ctx context.Context) (*Nota, error)
	Save(ctx context.Context, id uuid.UUID, conteudo string) (*Nota, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service expõe as operações de anotações.
type Service struct {
	store Store
}

// NewService cria o serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Nota, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Nota, error) {
	return s.store.Get(ctx, id)
}

// Create abre uma anotação vazia.
func (s *Service) Create(ctx context.Context) (*Nota, error) {
	return s.store.Create(ctx)
}

// Save grava o conteúdo como está; texto vazio é permitido.
func (s *Service) Save(ctx context.Context, id uuid.UUID, conteudo string) (*Nota, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	return s.store.Save(ctx, id, conteudo)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
