package demanda

import (
	"fmt"
	"time"
)

// DeriveSituacao calcula o rótulo de situação exibido para a demanda.
// A situação definida manualmente sempre prevalece; caso contrário o valor
// depende do status e do prazo no instante now, e nunca é persistido.
func DeriveSituacao(d Demanda, now time.Time) string {
	if d.Situacao != nil && *d.Situacao != "" {
		return *d.Situacao
	}
	switch d.Status {
	case StatusAprovadoEntregue:
		return SituacaoEntregue
	case StatusAguardandoAprovacao, StatusAprovacao:
		return SituacaoAguardandoAprovacao
	}
	if d.Prazo != nil && d.Prazo.Before(now) {
		return SituacaoAtrasado
	}
	return SituacaoEmAndamento
}

// Urgência do prazo.
const (
	UrgenciaAtrasado = "atrasado"
	UrgenciaAlerta   = "alerta"
	UrgenciaOK       = "ok"
)

// PrazoInfo descreve quanto falta para o prazo.
type PrazoInfo struct {
	Dias     int    `json:"dias"`
	Texto    string `json:"texto"`
	Urgencia string `json:"urgencia"`
}

// DaysRemaining devolve ceil((prazo - hoje) / 1 dia) considerando apenas as datas.
// Negativo significa atraso.
func DaysRemaining(prazo, today time.Time) int {
	p := civilDate(prazo)
	t := civilDate(today)
	return int(p.Sub(t).Hours() / 24)
}

// DescribePrazo monta o texto de dias restantes; nil quando não há prazo.
// O prazo é uma data de calendário; "hoje" é a data de now em loc.
func DescribePrazo(prazo *time.Time, now time.Time, loc *time.Location) *PrazoInfo {
	if prazo == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	dias := DaysRemaining(*prazo, now.In(loc))

	info := &PrazoInfo{Dias: dias}
	switch {
	case dias < 0:
		info.Texto = fmt.Sprintf("%d dia(s) atrasado", -dias)
		info.Urgencia = UrgenciaAtrasado
	case dias == 0:
		info.Texto = "Vence hoje"
		info.Urgencia = UrgenciaAlerta
	case dias <= 3:
		info.Texto = fmt.Sprintf("%d dia(s) restante(s)", dias)
		info.Urgencia = UrgenciaAlerta
	default:
		info.Texto = fmt.Sprintf("%d dia(s) restante(s)", dias)
		info.Urgencia = UrgenciaOK
	}
	return info
}

// civilDate zera o horário mantendo ano/mês/dia do próprio fuso do valor.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
