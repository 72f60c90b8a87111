package demanda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubStore struct {
	items     map[uuid.UUID]Demanda
	listCalls int
	bulkIDs   []uuid.UUID
	bulkErr   error
	lastField string
	lastValue *string
}

func newStubStore(items ...Demanda) *stubStore {
	s := &stubStore{items: map[uuid.UUID]Demanda{}}
	for _, d := range items {
		s.items[d.ID] = d
	}
	return s
}

func (s *stubStore) List(context.Context) ([]Demanda, error) {
	s.listCalls++
	out := make([]Demanda, 0, len(s.items))
	for _, d := range s.items {
		out = append(out, d)
	}
	SortRecentes(out)
	return out, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (*Demanda, error) {
	d, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *stubStore) Create(_ context.Context, in Input) (*Demanda, error) {
	d := Demanda{
		ID:           uuid.New(),
		NumeroGLPI:   in.NumeroGLPI,
		Titulo:       in.Titulo,
		Descricao:    in.Descricao,
		Prioridade:   in.Prioridade,
		Status:       in.Status,
		Prazo:        in.Prazo,
		Anotacoes:    in.Anotacoes,
		Situacao:     in.Situacao,
		DemandaPaiID: in.DemandaPaiID,
		CreatedAt:    time.Now(),
	}
	s.items[d.ID] = d
	return &d, nil
}

func (s *stubStore) Update(_ context.Context, id uuid.UUID, in Input) (*Demanda, error) {
	d, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.NumeroGLPI, d.Titulo, d.Descricao = in.NumeroGLPI, in.Titulo, in.Descricao
	d.Prioridade, d.Status, d.Prazo, d.Situacao = in.Prioridade, in.Status, in.Prazo, in.Situacao
	s.items[id] = d
	return &d, nil
}

func (s *stubStore) UpdateField(_ context.Context, id uuid.UUID, field string, value *string) (*Demanda, error) {
	d, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.lastField, s.lastValue = field, value
	switch field {
	case CampoStatus:
		d.Status = *value
	case CampoPrioridade:
		d.Prioridade = *value
	case CampoSituacao:
		d.Situacao = value
	case "anotacoes":
		d.Anotacoes = *value
	}
	s.items[id] = d
	return &d, nil
}

func (s *stubStore) UpdateStatusMany(_ context.Context, ids []uuid.UUID, status string) error {
	s.bulkIDs = ids
	if s.bulkErr != nil {
		return s.bulkErr
	}
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			return ErrPartialBulkUpdate
		}
	}
	for _, id := range ids {
		d := s.items[id]
		d.Status = status
		s.items[id] = d
	}
	return nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for cid, d := range s.items {
		if d.DemandaPaiID != nil && *d.DemandaPaiID == id {
			d.DemandaPaiID = nil
			s.items[cid] = d
		}
	}
	return nil
}

type memoryCache struct {
	items       []Demanda
	ok          bool
	versao      int64
	itemsVersao int64
	invalidated int
}

func (c *memoryCache) Get(context.Context) ([]Demanda, bool) {
	if !c.ok || c.itemsVersao != c.versao {
		return nil, false
	}
	return c.items, true
}
func (c *memoryCache) Version(context.Context) (int64, bool) { return c.versao, true }
func (c *memoryCache) Set(_ context.Context, versao int64, items []Demanda) {
	c.items, c.itemsVersao, c.ok = items, versao, true
}
func (c *memoryCache) Invalidate(context.Context) {
	c.items, c.ok = nil, false
	c.versao++
	c.invalidated++
}

func newTestService(store Store, cache ListCache) *Service {
	svc := NewService(store, cache, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc
}

func validInput() Input {
	return Input{NumeroGLPI: " GLPI-1 ", Titulo: "Fix login", Descricao: "Erro no SSO"}
}

func TestCreateAppliesDefaults(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil)

	d, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != StatusPendente || d.Prioridade != PrioridadeMedium {
		t.Fatalf("expected defaults, got %q/%q", d.Status, d.Prioridade)
	}
	if d.NumeroGLPI != "GLPI-1" {
		t.Fatalf("expected trimmed GLPI, got %q", d.NumeroGLPI)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		err  error
	}{
		{"sem glpi", Input{Titulo: "a", Descricao: "b"}, ErrValidation},
		{"sem título", Input{NumeroGLPI: "1", Descricao: "b"}, ErrValidation},
		{"descrição em branco", Input{NumeroGLPI: "1", Titulo: "a", Descricao: "   "}, ErrValidation},
		{"status desconhecido", Input{NumeroGLPI: "1", Titulo: "a", Descricao: "b", Status: "pendente"}, ErrInvalidStatus},
		{"prioridade desconhecida", Input{NumeroGLPI: "1", Titulo: "a", Descricao: "b", Prioridade: "Low"}, ErrInvalidPriority},
		{"situação desconhecida", Input{NumeroGLPI: "1", Titulo: "a", Descricao: "b", Situacao: strPtr("Parado")}, ErrInvalidSituacao},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubStore()
			svc := newTestService(store, nil)
			_, err := svc.Create(context.Background(), tc.in)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v got %v", tc.err, err)
			}
			if !IsValidationError(err) {
				t.Fatalf("expected validation error classification")
			}
			if len(store.items) != 0 {
				t.Fatalf("nothing should be stored")
			}
		})
	}
}

func TestCreateBlankSituacaoClearsOverride(t *testing.T) {
	svc := newTestService(newStubStore(), nil)
	in := validInput()
	in.Situacao = strPtr("  ")

	d, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Situacao != nil {
		t.Fatalf("expected no override, got %q", *d.Situacao)
	}
}

func TestListUsesCacheAndInvalidatesOnWrite(t *testing.T) {
	store := newStubStore(sampleDemandas()...)
	cache := &memoryCache{}
	svc := newTestService(store, cache)
	ctx := context.Background()

	if _, err := svc.List(ctx, Filtro{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(ctx, Filtro{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected a single store read, got %d", store.listCalls)
	}

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected cache invalidation")
	}

	listagem, err := svc.List(ctx, Filtro{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("expected store read after invalidation, got %d", store.listCalls)
	}
	if len(listagem.Demandas) != 6 {
		t.Fatalf("expected 6 top-level demandas, got %d", len(listagem.Demandas))
	}
}

func TestListAttachesVariacoesAndDerivedFields(t *testing.T) {
	items := sampleDemandas()
	svc := newTestService(newStubStore(items...), nil)

	listagem, err := svc.List(context.Background(), Filtro{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listagem.Demandas) != 5 {
		t.Fatalf("expected 5 top-level, got %d", len(listagem.Demandas))
	}
	if listagem.Contadores.Total != 5 || listagem.Contadores.Atrasadas != 1 {
		t.Fatalf("unexpected counters %+v", listagem.Contadores)
	}

	var found bool
	for _, v := range listagem.Demandas {
		if v.ID != items[0].ID {
			continue
		}
		found = true
		if v.SituacaoAtual != SituacaoAtrasado {
			t.Fatalf("expected Atrasado got %q", v.SituacaoAtual)
		}
		if v.PrazoInfo == nil || v.PrazoInfo.Dias != -5 {
			t.Fatalf("unexpected prazo info %+v", v.PrazoInfo)
		}
		if v.TotalVariacoes != 1 || len(v.Variacoes) != 1 || v.Variacoes[0].Titulo != "Fix login (variação)" {
			t.Fatalf("variation not attached: %+v", v.Variacoes)
		}
	}
	if !found {
		t.Fatalf("parent missing from listing")
	}
}

func TestUpdateField(t *testing.T) {
	d := Demanda{ID: uuid.New(), Status: StatusPendente, Prioridade: PrioridadeMedium, Situacao: strPtr(SituacaoAtrasado)}
	store := newStubStore(d)
	svc := newTestService(store, nil)
	ctx := context.Background()

	got, err := svc.UpdateField(ctx, d.ID, CampoStatus, StatusDesenvolvendo)
	if err != nil || got.Status != StatusDesenvolvendo {
		t.Fatalf("status update failed: %v %+v", err, got)
	}

	if _, err := svc.UpdateField(ctx, d.ID, CampoPrioridade, "Urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority got %v", err)
	}
	if _, err := svc.UpdateField(ctx, d.ID, "titulo", "x"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField got %v", err)
	}

	got, err = svc.UpdateField(ctx, d.ID, CampoSituacao, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastValue != nil || got.Situacao != nil {
		t.Fatalf("empty situação should clear the override")
	}
	if DeriveSituacao(*got, testNow) != SituacaoEmAndamento {
		t.Fatalf("expected derived situação after clearing override")
	}
}

func TestCreateVariacaoScenario(t *testing.T) {
	pai := Demanda{ID: uuid.New(), NumeroGLPI: "GLPI-9", Titulo: "Fix login", Descricao: "d", Prioridade: PrioridadeHigh, Status: StatusAprovadoEntregue, Anotacoes: "notas"}
	store := newStubStore(pai)
	svc := newTestService(store, nil)
	ctx := context.Background()

	v, err := svc.CreateVariacao(ctx, pai.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Titulo != "Fix login (variação)" || v.Status != StatusEmCorrecao || v.Anotacoes != "" {
		t.Fatalf("unexpected variation %+v", v)
	}

	view, err := svc.Get(ctx, pai.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.TotalVariacoes != 1 {
		t.Fatalf("expected parent to show 1 variation, got %d", view.TotalVariacoes)
	}

	if _, err := svc.CreateVariacao(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestBulkUpdateStatus(t *testing.T) {
	a := Demanda{ID: uuid.New(), Status: StatusPendente}
	b := Demanda{ID: uuid.New(), Status: StatusPendente}
	c := Demanda{ID: uuid.New(), Status: StatusDesenvolvendo}
	store := newStubStore(a, b, c)
	svc := newTestService(store, nil)
	ctx := context.Background()

	n, err := svc.BulkUpdateStatus(ctx, []uuid.UUID{a.ID, b.ID, a.ID, uuid.Nil}, StatusAprovado)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 updated got %d", n)
	}
	if len(store.bulkIDs) != 2 {
		t.Fatalf("expected deduplicated ids, got %v", store.bulkIDs)
	}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if store.items[id].Status != StatusAprovado {
			t.Fatalf("selected demanda not updated")
		}
	}
	if store.items[c.ID].Status != StatusDesenvolvendo {
		t.Fatalf("unselected demanda changed")
	}
}

func TestBulkUpdateStatusErrors(t *testing.T) {
	a := Demanda{ID: uuid.New(), Status: StatusPendente}
	store := newStubStore(a)
	cache := &memoryCache{}
	svc := newTestService(store, cache)
	ctx := context.Background()

	if _, err := svc.BulkUpdateStatus(ctx, nil, StatusAprovado); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection got %v", err)
	}
	if _, err := svc.BulkUpdateStatus(ctx, []uuid.UUID{a.ID}, "Cancelado"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus got %v", err)
	}
	if _, err := svc.BulkUpdateStatus(ctx, []uuid.UUID{a.ID, uuid.New()}, StatusAprovado); !errors.Is(err, ErrPartialBulkUpdate) {
		t.Fatalf("expected ErrPartialBulkUpdate got %v", err)
	}
	if store.items[a.ID].Status != StatusPendente {
		t.Fatalf("partial bulk update must not write")
	}
	if cache.invalidated != 0 {
		t.Fatalf("failed writes should not invalidate the cache")
	}
}

func TestDeletePromotesVariacoes(t *testing.T) {
	pai := Demanda{ID: uuid.New(), Titulo: "pai", CreatedAt: testNow.Add(-time.Hour)}
	filho := Demanda{ID: uuid.New(), Titulo: "filho", DemandaPaiID: &pai.ID, CreatedAt: testNow}
	store := newStubStore(pai, filho)
	svc := newTestService(store, &memoryCache{})
	ctx := context.Background()

	if err := svc.Delete(ctx, pai.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listagem, err := svc.List(ctx, Filtro{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listagem.Demandas) != 1 || listagem.Demandas[0].ID != filho.ID {
		t.Fatalf("expected orphan variation to become top-level")
	}
	if err := svc.Delete(ctx, pai.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestAtrasadas(t *testing.T) {
	svc := newTestService(newStubStore(sampleDemandas()...), nil)

	views, err := svc.Atrasadas(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Titulo != "Fix login" {
		t.Fatalf("unexpected overdue list %+v", views)
	}
}

func TestAtrasadasIncludesVariacoes(t *testing.T) {
	items := sampleDemandas()
	for i := range items {
		if items[i].IsVariacao() {
			items[i].Prazo = date(2024, 1, 12)
		}
	}
	svc := newTestService(newStubStore(items...), nil)

	views, err := svc.Atrasadas(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected parent and variation, got %d", len(views))
	}
	if views[0].Titulo != "Fix login (variação)" || views[0].PrazoInfo == nil {
		t.Fatalf("overdue variation missing or without deadline text: %+v", views[0])
	}
}
