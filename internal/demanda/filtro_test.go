package demanda

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func sampleDemandas() []Demanda {
	pai := uuid.New()
	return []Demanda{
		{ID: pai, NumeroGLPI: "GLPI-100", Titulo: "Fix login", Descricao: "Erro no SSO", Prioridade: PrioridadeHigh, Status: StatusDesenvolvendo, Prazo: date(2024, 1, 10), CreatedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), NumeroGLPI: "GLPI-101", Titulo: "Relatório mensal", Descricao: "Exportar CSV", Prioridade: PrioridadeMedium, Status: StatusPendente, CreatedAt: time.Date(2023, 12, 20, 9, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), NumeroGLPI: "glpi-102", Titulo: "Portal", Descricao: "Nova página de login", Prioridade: PrioridadeHighst, Status: StatusAprovacao, CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), NumeroGLPI: "GLPI-103", Titulo: "Backup", Descricao: "Rotina noturna", Prioridade: PrioridadeHigh, Status: StatusAprovadoEntregue, Prazo: date(2024, 1, 1), CreatedAt: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), NumeroGLPI: "GLPI-100", Titulo: "Fix login (variação)", Descricao: "Erro no SSO", Prioridade: PrioridadeHigh, Status: StatusEmCorrecao, DemandaPaiID: &pai, CreatedAt: time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), NumeroGLPI: "GLPI-104", Titulo: "VPN", Descricao: "Acesso remoto", Prioridade: PrioridadeMedium, Status: StatusEmCorrecao, CreatedAt: time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)},
	}
}

func ids(items []Demanda) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, d := range items {
		out[i] = d.ID
	}
	return out
}

func sameIDs(a, b []Demanda) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func TestApplyOrdersByCreatedDesc(t *testing.T) {
	out := Apply(sampleDemandas(), Filtro{}, testNow, time.UTC)
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.After(out[i-1].CreatedAt) {
			t.Fatalf("items out of order at %d", i)
		}
	}
	if len(out) != 6 {
		t.Fatalf("expected 6 got %d", len(out))
	}
}

func TestApplyFilters(t *testing.T) {
	items := sampleDemandas()
	jan1 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filtro Filtro
		want   int
	}{
		{"busca título", Filtro{Busca: "LOGIN"}, 3},
		{"busca glpi", Filtro{Busca: "glpi-101"}, 1},
		{"glpi", Filtro{GLPI: "100"}, 2},
		{"status", Filtro{Status: StatusEmCorrecao}, 2},
		{"prioridade", Filtro{Prioridade: PrioridadeHigh}, 3},
		{"situação atrasado", Filtro{Situacao: SituacaoAtrasado}, 1},
		{"situação aguardando", Filtro{Situacao: SituacaoAguardandoAprovacao}, 1},
		{"mês inativo ignora", Filtro{Mes: time.December, Ano: 2023}, 6},
		{"mês ativo", Filtro{MesAtivo: true, Mes: time.December, Ano: 2023}, 1},
		{"intervalo inclusivo", Filtro{CriadoDe: &jan1, CriadoAte: &jan10}, 2},
		{"somente principais", Filtro{SomentePrincipais: true}, 5},
		{"combinado", Filtro{Prioridade: PrioridadeHigh, Status: StatusDesenvolvendo, SomentePrincipais: true}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(items, tc.filtro, testNow, time.UTC)
			if len(got) != tc.want {
				t.Fatalf("expected %d got %d (%v)", tc.want, len(got), ids(got))
			}
		})
	}
}

func TestApplyMonthUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	items := []Demanda{{ID: uuid.New(), CreatedAt: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)}}

	got := Apply(items, Filtro{MesAtivo: true, Mes: time.January, Ano: 2024}, testNow, loc)
	if len(got) != 1 {
		t.Fatalf("expected creation to fall in January local time")
	}
}

func TestApplyIsOrderIndependent(t *testing.T) {
	items := sampleDemandas()

	statusFirst := Apply(Apply(items, Filtro{Status: StatusEmCorrecao}, testNow, time.UTC), Filtro{Prioridade: PrioridadeMedium}, testNow, time.UTC)
	priorityFirst := Apply(Apply(items, Filtro{Prioridade: PrioridadeMedium}, testNow, time.UTC), Filtro{Status: StatusEmCorrecao}, testNow, time.UTC)
	combined := Apply(items, Filtro{Status: StatusEmCorrecao, Prioridade: PrioridadeMedium}, testNow, time.UTC)

	if !sameIDs(statusFirst, priorityFirst) || !sameIDs(statusFirst, combined) {
		t.Fatalf("filters should commute: %v / %v / %v", ids(statusFirst), ids(priorityFirst), ids(combined))
	}
}

func TestApplyBuscaIsIdempotent(t *testing.T) {
	items := sampleDemandas()
	once := Apply(items, Filtro{Busca: "login"}, testNow, time.UTC)
	twice := Apply(once, Filtro{Busca: "login"}, testNow, time.UTC)
	if !sameIDs(once, twice) {
		t.Fatalf("text filter should be idempotent")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := sampleDemandas()
	before := ids(items)
	_ = Apply(items, Filtro{}, testNow, time.UTC)
	for i, id := range ids(items) {
		if before[i] != id {
			t.Fatalf("input slice was reordered")
		}
	}
}

func TestCount(t *testing.T) {
	c := Count(sampleDemandas(), testNow)

	want := Contadores{Total: 5, Pendentes: 1, Desenvolvendo: 1, Aguardando: 1, Entregues: 1, EmCorrecao: 1, Atrasadas: 1}
	if c != want {
		t.Fatalf("expected %+v got %+v", want, c)
	}
}
