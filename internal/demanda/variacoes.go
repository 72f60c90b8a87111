package demanda

import "github.com/google/uuid"

// Variacoes indexa as variações pelo id da demanda pai.
// Apenas um nível é modelado: filhos de variações ficam sob o pai direto.
type Variacoes map[uuid.UUID][]Demanda

// IndexVariacoes monta o índice preservando a ordem da coleção.
func IndexVariacoes(items []Demanda) Variacoes {
	idx := make(Variacoes)
	for _, d := range items {
		if d.DemandaPaiID == nil {
			continue
		}
		idx[*d.DemandaPaiID] = append(idx[*d.DemandaPaiID], d)
	}
	return idx
}

// Of devolve as variações diretas de id.
func (v Variacoes) Of(id uuid.UUID) []Demanda {
	return v[id]
}

// Count devolve quantas variações diretas id possui.
func (v Variacoes) Count(id uuid.UUID) int {
	return len(v[id])
}

// TopLevel devolve apenas as demandas sem pai, na ordem recebida.
func TopLevel(items []Demanda) []Demanda {
	out := make([]Demanda, 0, len(items))
	for _, d := range items {
		if !d.IsVariacao() {
			out = append(out, d)
		}
	}
	return out
}

// NewVariacao monta a cópia usada ao criar uma variação de source.
// Variações de variações são anexadas ao pai original.
func NewVariacao(source Demanda) Input {
	paiID := source.ID
	if source.DemandaPaiID != nil {
		paiID = *source.DemandaPaiID
	}
	return Input{
		NumeroGLPI:   source.NumeroGLPI,
		Titulo:       source.Titulo + SufixoVariacao,
		Descricao:    source.Descricao,
		Prioridade:   source.Prioridade,
		Status:       StatusEmCorrecao,
		Prazo:        source.Prazo,
		Anotacoes:    "",
		DemandaPaiID: &paiID,
	}
}
