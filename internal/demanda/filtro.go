package demanda

import (
	"sort"
	"strings"
	"time"
)

// Filtro reúne os critérios opcionais da listagem; todos combinados com E.
type Filtro struct {
	Busca      string
	GLPI       string
	Status     string
	Prioridade string
	Situacao   string

	// Mes/Ano só são aplicados com MesAtivo.
	MesAtivo bool
	Mes      time.Month
	Ano      int

	// CriadoDe e CriadoAte são dias de calendário inclusivos.
	CriadoDe  *time.Time
	CriadoAte *time.Time

	SomentePrincipais bool
}

// Contadores alimentam os cartões do painel.
type Contadores struct {
	Total         int `json:"total"`
	Pendentes     int `json:"pendentes"`
	Desenvolvendo int `json:"desenvolvendo"`
	Aguardando    int `json:"aguardando"`
	Entregues     int `json:"entregues"`
	EmCorrecao    int `json:"em_correcao"`
	Atrasadas     int `json:"atrasadas"`
}

// Apply filtra a coleção completa e ordena por criação decrescente.
// É uma função pura de (itens, filtro, now, loc).
func Apply(items []Demanda, f Filtro, now time.Time, loc *time.Location) []Demanda {
	if loc == nil {
		loc = time.UTC
	}

	busca := strings.ToLower(strings.TrimSpace(f.Busca))
	glpi := strings.ToLower(strings.TrimSpace(f.GLPI))

	var (
		inicio, fim       time.Time
		hasInicio, hasFim bool
	)
	if f.CriadoDe != nil {
		inicio = startOfDay(*f.CriadoDe, loc)
		hasInicio = true
	}
	if f.CriadoAte != nil {
		fim = startOfDay(*f.CriadoAte, loc).AddDate(0, 0, 1)
		hasFim = true
	}

	out := make([]Demanda, 0, len(items))
	for _, d := range items {
		if f.SomentePrincipais && d.IsVariacao() {
			continue
		}
		if busca != "" && !matchesBusca(d, busca) {
			continue
		}
		if glpi != "" && !strings.Contains(strings.ToLower(d.NumeroGLPI), glpi) {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Prioridade != "" && d.Prioridade != f.Prioridade {
			continue
		}
		if f.Situacao != "" && DeriveSituacao(d, now) != f.Situacao {
			continue
		}
		if f.MesAtivo {
			created := d.CreatedAt.In(loc)
			if created.Month() != f.Mes || created.Year() != f.Ano {
				continue
			}
		}
		if hasInicio && d.CreatedAt.Before(inicio) {
			continue
		}
		if hasFim && !d.CreatedAt.Before(fim) {
			continue
		}
		out = append(out, d)
	}

	SortRecentes(out)
	return out
}

// SortRecentes ordena por created_at decrescente mantendo a ordem original nos empates.
func SortRecentes(items []Demanda) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Count calcula os contadores sobre as demandas principais, ignorando filtros.
func Count(items []Demanda, now time.Time) Contadores {
	var c Contadores
	for _, d := range items {
		if d.IsVariacao() {
			continue
		}
		c.Total++
		switch d.Status {
		case StatusPendente:
			c.Pendentes++
		case StatusDesenvolvendo:
			c.Desenvolvendo++
		case StatusAguardandoAprovacao, StatusAprovacao:
			c.Aguardando++
		case StatusAprovadoEntregue:
			c.Entregues++
		case StatusEmCorrecao:
			c.EmCorrecao++
		}
		if DeriveSituacao(d, now) == SituacaoAtrasado {
			c.Atrasadas++
		}
	}
	return c
}

func matchesBusca(d Demanda, busca string) bool {
	return strings.Contains(strings.ToLower(d.Titulo), busca) ||
		strings.Contains(strings.ToLower(d.Descricao), busca) ||
		strings.Contains(strings.ToLower(d.NumeroGLPI), busca)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
