package nota

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/demandas/internal/util"
)

var (
	ErrNotFound   = errors.New("anotação não encontrada")
	ErrSemSelecao = errors.New("nenhuma anotação selecionada")
)

// Nota é um bloco de texto livre, sem título.
type Nota struct {
	ID        uuid.UUID `json:"id"`
	Conteudo  string    `json:"conteudo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preview devolve a primeira linha não vazia, usada na lista lateral.
func (n Nota) Preview(max int) string {
	line := ""
	for _, l := range strings.Split(n.Conteudo, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	return util.Truncate(line, max)
}
