package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError replica o envelope do pacote http, que não pode ser importado daqui.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
		"aviso": map[string]any{
			"tipo":     "error",
			"mensagem": message,
		},
	})
}
