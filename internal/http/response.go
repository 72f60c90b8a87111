package http

import (
	"encoding/json"
	"net/http"
)

// Envelope padroniza todas as respostas.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
	Aviso *Aviso     `json:"aviso,omitempty"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Aviso é a notificação curta exibida na interface.
type Aviso struct {
	Tipo     string `json:"tipo"`
	Mensagem string `json:"mensagem"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data})
}

// WriteJSONAviso escreve sucesso com aviso para a interface.
func WriteJSONAviso(w http.ResponseWriter, status int, data any, mensagem string) {
	writeEnvelope(w, status, Envelope{Data: data, Aviso: &Aviso{Tipo: "success", Mensagem: mensagem}})
}

// WriteError escreve envelope de erro; a mensagem também vira aviso.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	writeEnvelope(w, status, Envelope{
		Error: &ErrorBody{Code: code, Message: message, Details: details},
		Aviso: &Aviso{Tipo: "error", Mensagem: message},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
