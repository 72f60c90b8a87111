package util

import "strings"

// Field é um campo obrigatório de formulário com seu rótulo.
type Field struct {
	Label string
	Value string
}

// MissingFields devolve os rótulos dos campos em branco, na ordem recebida.
func MissingFields(fields ...Field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// Truncate corta em max runas, acrescentando reticências.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
