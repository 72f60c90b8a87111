package checklist

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("tarefa não encontrada")
	ErrTituloVazio = errors.New("título da tarefa obrigatório")
)

// Item é uma tarefa do dia.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Titulo    string    `json:"titulo"`
	Data      time.Time `json:"data"`
	Concluido bool      `json:"concluido"`
	CreatedAt time.Time `json:"created_at"`
}

// Dia agrupa as tarefas de uma mesma data.
type Dia struct {
	Data       string `json:"data"`
	Itens      []Item `json:"itens"`
	Concluidos int    `json:"concluidos"`
	Total      int    `json:"total"`
}

// DateLayout é o formato das datas de calendário.
const DateLayout = "2006-01-02"

// Group agrupa itens já ordenados por data, mantendo a ordem recebida.
func Group(items []Item) []Dia {
	dias := []Dia{}
	index := map[string]int{}
	for _, it := range items {
		key := it.Data.Format(DateLayout)
		i, ok := index[key]
		if !ok {
			dias = append(dias, Dia{Data: key})
			i = len(dias) - 1
			index[key] = i
		}
		dias[i].Itens = append(dias[i].Itens, it)
		dias[i].Total++
		if it.Concluido {
			dias[i].Concluidos++
		}
	}
	return dias
}
