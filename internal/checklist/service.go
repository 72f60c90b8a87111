package checklist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store é o gateway de persistência do checklist.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, titulo string, data time.Time) (*Item, error)
	Toggle(ctx context.Context, id uuid.UUID) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service reúne as regras do checklist diário.
type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewService cria o serviço; "hoje" é calculado em loc.
func NewService(store Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.store.List(ctx)
}

// Dias devolve as tarefas agrupadas por data.
func (s *Service) Dias(ctx context.Context) ([]Dia, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Group(items), nil
}

// Create adiciona uma tarefa para hoje.
func (s *Service) Create(ctx context.Context, titulo string) (*Item, error) {
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return nil, ErrTituloVazio
	}
	return s.store.Create(ctx, titulo, s.Today())
}

// Today devolve a data corrente no fuso configurado, à meia-noite UTC.
func (s *Service) Today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.store.Toggle(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
