package demanda

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("demanda não encontrada")
	ErrValidation        = errors.New("dados inválidos")
	ErrInvalidStatus     = errors.New("status inválido")
	ErrInvalidPriority   = errors.New("prioridade inválida")
	ErrInvalidSituacao   = errors.New("situação inválida")
	ErrInvalidField      = errors.New("campo não editável")
	ErrEmptySelection    = errors.New("nenhuma demanda selecionada")
	ErrPartialBulkUpdate = errors.New("nem todas as demandas selecionadas foram encontradas")
)

const (
	StatusPendente            = "Pendente"
	StatusAprovacao           = "Aprovação"
	StatusAguardandoAprovacao = "Aguardando aprovação"
	StatusAprovado            = "Aprovado"
	StatusDesenvolvendo       = "Desenvolvendo"
	StatusAprovadoEntregue    = "Aprovado e entregue"
	StatusEmCorrecao          = "Em correção"

	PrioridadeMedium = "Medium"
	PrioridadeHigh   = "High"
	PrioridadeHighst = "Highst"

	SituacaoEmAndamento         = "Em andamento"
	SituacaoEntregue            = "Entregue"
	SituacaoAtrasado            = "Atrasado"
	SituacaoAguardandoAprovacao = "Aguardando aprovação"

	// SufixoVariacao é anexado ao título de uma variação.
	SufixoVariacao = " (variação)"
)

// Statuses lista os status na ordem exibida nos formulários.
var Statuses = []string{
	StatusPendente,
	StatusAprovacao,
	StatusAguardandoAprovacao,
	StatusAprovado,
	StatusDesenvolvendo,
	StatusAprovadoEntregue,
	StatusEmCorrecao,
}

// Prioridades lista as prioridades aceitas.
var Prioridades = []string{PrioridadeMedium, PrioridadeHigh, PrioridadeHighst}

// Situacoes lista os rótulos de situação, derivados ou definidos manualmente.
var Situacoes = []string{
	SituacaoEmAndamento,
	SituacaoEntregue,
	SituacaoAtrasado,
	SituacaoAguardandoAprovacao,
}

// Demanda representa um chamado acompanhado pela equipe.
type Demanda struct {
	ID           uuid.UUID  `json:"id"`
	NumeroGLPI   string     `json:"numero_glpi"`
	Titulo       string     `json:"titulo"`
	Descricao    string     `json:"descricao"`
	Prioridade   string     `json:"prioridade"`
	Status       string     `json:"status"`
	Prazo        *time.Time `json:"prazo,omitempty"`
	Anotacoes    string     `json:"anotacoes"`
	Situacao     *string    `json:"situacao,omitempty"`
	DemandaPaiID *uuid.UUID `json:"demanda_pai_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsVariacao indica se a demanda pertence a outra.
func (d Demanda) IsVariacao() bool {
	return d.DemandaPaiID != nil
}

// Input agrupa os campos do formulário de criação e edição.
type Input struct {
	NumeroGLPI   string
	Titulo       string
	Descricao    string
	Prioridade   string
	Status       string
	Prazo        *time.Time
	Anotacoes    string
	Situacao     *string
	DemandaPaiID *uuid.UUID
}

// Campos editáveis individualmente (edição inline).
const (
	CampoStatus     = "status"
	CampoPrioridade = "prioridade"
	CampoSituacao   = "situacao"
)

// NormalizeStatus remove espaços e aplica o padrão quando vazio.
func NormalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return StatusPendente
	}
	return status
}

// NormalizePrioridade remove espaços e aplica o padrão quando vazio.
func NormalizePrioridade(prioridade string) string {
	prioridade = strings.TrimSpace(prioridade)
	if prioridade == "" {
		return PrioridadeMedium
	}
	return prioridade
}

// IsValidStatus compara com os valores aceitos (sensível a acentos e maiúsculas).
func IsValidStatus(status string) bool {
	return contains(Statuses, status)
}

// IsValidPrioridade indica se prioridade é aceita.
func IsValidPrioridade(prioridade string) bool {
	return contains(Prioridades, prioridade)
}

// IsValidSituacao indica se o rótulo de situação é aceito.
func IsValidSituacao(situacao string) bool {
	return contains(Situacoes, situacao)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
