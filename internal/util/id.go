package util

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID indica identificador ausente ou malformado.
var ErrInvalidID = errors.New("id inválido")

// ParseID lê um UUID vindo da URL ou do corpo; o UUID zero é rejeitado.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// ParseIDs converte uma lista inteira; falha no primeiro inválido.
func ParseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := ParseID(r)
		if err != nil {
			return nil, errors.New("id inválido: " + r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
