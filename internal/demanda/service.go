package demanda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/demandas/internal/util"
)

// Store é o gateway de persistência usado pelo serviço.
type Store interface {
	List(ctx context.Context) ([]Demanda, error)
	Get(ctx context.Context, id uuid.UUID) (*Demanda, error)
	Create(ctx context.Context, in Input) (*Demanda, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Demanda, error)
	UpdateField(ctx context.Context, id uuid.UUID, field string, value *string) (*Demanda, error)
	UpdateStatusMany(ctx context.Context, ids []uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// View é a demanda com os campos derivados para exibição.
type View struct {
	Demanda
	SituacaoAtual  string     `json:"situacao_atual"`
	PrazoInfo      *PrazoInfo `json:"prazo_info,omitempty"`
	TotalVariacoes int        `json:"total_variacoes"`
	Variacoes      []View     `json:"variacoes,omitempty"`
}

// Listagem é o resultado de uma consulta filtrada.
type Listagem struct {
	Demandas   []View     `json:"demandas"`
	Contadores Contadores `json:"contadores"`
}

// Service reúne as regras de negócio das demandas.
type Service struct {
	store Store
	cache ListCache
	loc   *time.Location
	now   func() time.Time
}

// NewService cria o serviço; cache pode ser nil.
func NewService(store Store, cache ListCache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, cache: cache, loc: loc, now: time.Now}
}

// Location devolve o fuso usado para datas de calendário.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now devolve o instante usado nas derivações.
func (s *Service) Now() time.Time {
	return s.now()
}

// All devolve a tabela inteira, usando o cache quando disponível.
// A versão é lida antes do banco: se uma escrita acontecer no meio,
// a lista gravada fica com versão vencida e não é servida.
func (s *Service) All(ctx context.Context) ([]Demanda, error) {
	var (
		versao    int64
		cacheable bool
	)
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx); ok {
			return items, nil
		}
		versao, cacheable = s.cache.Version(ctx)
	}
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Set(ctx, versao, items)
	}
	return items, nil
}

// List aplica o filtro sobre as demandas principais e calcula os contadores.
func (s *Service) List(ctx context.Context, filtro Filtro) (*Listagem, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return s.Build(items, filtro), nil
}

// Build monta a listagem a partir de uma coleção já carregada.
func (s *Service) Build(items []Demanda, filtro Filtro) *Listagem {
	now := s.now()
	filtro.SomentePrincipais = true

	idx := IndexVariacoes(items)
	filtered := Apply(items, filtro, now, s.loc)

	views := make([]View, 0, len(filtered))
	for _, d := range filtered {
		views = append(views, s.view(d, idx, now))
	}

	return &Listagem{Demandas: views, Contadores: Count(items, now)}
}

// Get devolve a demanda com suas variações.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range items {
		if d.ID == id {
			v := s.view(d, IndexVariacoes(items), s.now())
			return &v, nil
		}
	}
	// o cache pode estar atrás de outra instância
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*d, nil, s.now())
	return &v, nil
}

// Create valida e insere uma demanda.
func (s *Service) Create(ctx context.Context, in Input) (*Demanda, error) {
	if err := normalizeInput(&in); err != nil {
		return nil, err
	}
	d, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// Update regrava o formulário completo.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Demanda, error) {
	if err := normalizeInput(&in); err != nil {
		return nil, err
	}
	d, err := s.store.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// UpdateField altera status, prioridade ou situação. Situação vazia remove a definição manual.
func (s *Service) UpdateField(ctx context.Context, id uuid.UUID, field, value string) (*Demanda, error) {
	value = strings.TrimSpace(value)

	var stored *string
	switch field {
	case CampoStatus:
		if !IsValidStatus(value) {
			return nil, ErrInvalidStatus
		}
		stored = &value
	case CampoPrioridade:
		if !IsValidPrioridade(value) {
			return nil, ErrInvalidPriority
		}
		stored = &value
	case CampoSituacao:
		if value != "" {
			if !IsValidSituacao(value) {
				return nil, ErrInvalidSituacao
			}
			stored = &value
		}
	default:
		return nil, ErrInvalidField
	}

	d, err := s.store.UpdateField(ctx, id, field, stored)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// SaveAnotacoes grava o texto livre de anotações.
func (s *Service) SaveAnotacoes(ctx context.Context, id uuid.UUID, anotacoes string) (*Demanda, error) {
	d, err := s.store.UpdateField(ctx, id, "anotacoes", &anotacoes)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// CreateVariacao cria uma cópia vinculada à demanda de origem.
func (s *Service) CreateVariacao(ctx context.Context, sourceID uuid.UUID) (*Demanda, error) {
	source, err := s.store.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	d, err := s.store.Create(ctx, NewVariacao(*source))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// BulkUpdateStatus aplica o status a todas as demandas selecionadas, tudo ou
// nada, e devolve quantas demandas distintas foram atualizadas.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string) (int, error) {
	status = strings.TrimSpace(status)
	if !IsValidStatus(status) {
		return 0, ErrInvalidStatus
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return 0, ErrEmptySelection
	}

	if err := s.store.UpdateStatusMany(ctx, unique, status); err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return len(unique), nil
}

// Delete remove a demanda.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Atrasadas devolve todas as demandas, variações incluídas, cuja situação
// derivada é Atrasado.
func (s *Service) Atrasadas(ctx context.Context) ([]View, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	atrasadas := Apply(items, Filtro{Situacao: SituacaoAtrasado}, now, s.loc)

	views := make([]View, 0, len(atrasadas))
	for _, d := range atrasadas {
		views = append(views, s.view(d, nil, now))
	}
	return views, nil
}

func (s *Service) view(d Demanda, idx Variacoes, now time.Time) View {
	v := View{
		Demanda:       d,
		SituacaoAtual: DeriveSituacao(d, now),
		PrazoInfo:     DescribePrazo(d.Prazo, now, s.loc),
	}
	if idx != nil {
		children := idx.Of(d.ID)
		v.TotalVariacoes = len(children)
		for _, c := range children {
			v.Variacoes = append(v.Variacoes, View{
				Demanda:       c,
				SituacaoAtual: DeriveSituacao(c, now),
				PrazoInfo:     DescribePrazo(c.Prazo, now, s.loc),
			})
		}
	}
	return v
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func normalizeInput(in *Input) error {
	in.NumeroGLPI = strings.TrimSpace(in.NumeroGLPI)
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descricao = strings.TrimSpace(in.Descricao)
	in.Prioridade = NormalizePrioridade(in.Prioridade)
	in.Status = NormalizeStatus(in.Status)

	missing := util.MissingFields(
		util.Field{Label: "número GLPI", Value: in.NumeroGLPI},
		util.Field{Label: "título", Value: in.Titulo},
		util.Field{Label: "descrição", Value: in.Descricao},
	)
	if len(missing) > 0 {
		return fmt.Errorf("%w: preencha todos os campos obrigatórios (%s)", ErrValidation, strings.Join(missing, ", "))
	}

	if !IsValidStatus(in.Status) {
		return ErrInvalidStatus
	}
	if !IsValidPrioridade(in.Prioridade) {
		return ErrInvalidPriority
	}
	if in.Situacao != nil {
		sit := strings.TrimSpace(*in.Situacao)
		if sit == "" {
			in.Situacao = nil
		} else if !IsValidSituacao(sit) {
			return ErrInvalidSituacao
		} else {
			in.Situacao = &sit
		}
	}
	return nil
}

// IsValidationError indica erros que devem ser devolvidos como 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidSituacao) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrEmptySelection)
}
