package events

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an event id does not exist.
	ErrNotFound = errors.New("event not found")
	// ErrInvalidStatus is returned for a status outside aberto/em_andamento/resolvido.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidLevel is returned for a risk level outside the four known levels.
	ErrInvalidLevel = errors.New("invalid risk level")
)

// RiskLevel is the severity class of an event.
type RiskLevel string

const (
	LevelCritical RiskLevel = "Crítico"
	LevelHigh     RiskLevel = "Alto"
	LevelMedium   RiskLevel = "Médio"
	LevelLow      RiskLevel = "Baixo"
)

// Levels lists every risk level from most to least severe.
var Levels = []RiskLevel{LevelCritical, LevelHigh, LevelMedium, LevelLow}

// ParseLevel accepts a level in any case, with or without accents.
func ParseLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crítico", "critico":
		return LevelCritical, nil
	case "alto":
		return LevelHigh, nil
	case "médio", "medio":
		return LevelMedium, nil
	case "baixo":
		return LevelLow, nil
	}
	return "", ErrInvalidLevel
}

// Status is the treatment state of an event.
type Status string

const (
	StatusOpen       Status = "aberto"
	StatusInProgress Status = "em_andamento"
	StatusResolved   Status = "resolvido"
)

// Statuses lists the accepted status values in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved}

// Valid reports whether s is one of the accepted status values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// ParseStatus trims and lowercases s and rejects anything that is not a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Event is one operational-risk occurrence.
type Event struct {
	ID                  string     `json:"evento_id"`
	OccurredAt          time.Time  `json:"data_evento"`
	ResolvedAt          *time.Time `json:"data_resolucao,omitempty"`
	ResolutionHours     *float64   `json:"tempo_resolucao_horas,omitempty"`
	Level               RiskLevel  `json:"nivel_risco"`
	Description         string     `json:"descricao"`
	FinancialImpact     *float64   `json:"impacto_financeiro"`
	CustomerImpact      string     `json:"impacto_cliente"`
	AffectedCustomers   *int64     `json:"clientes_afetados"`
	UnavailabilityHours *float64   `json:"tempo_indisponibilidade"`
	Frequency           int        `json:"frequencia_evento"`
	SystemCriticality   *int       `json:"criticidade_sistema"`
	ProcessFailure      bool       `json:"falha_processo"`
	InternalFraud       bool       `json:"fraude_interna"`
	Recurrence          bool       `json:"recorrencia"`
	Status              Status     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Statistics aggregates the whole event base.
type Statistics struct {
	Total                  int       `json:"total_eventos"`
	Critical               int       `json:"criticos"`
	High                   int       `json:"altos"`
	Medium                 int       `json:"medios"`
	Low                    int       `json:"baixos"`
	TotalImpact            float64   `json:"impacto_total"`
	AverageImpact          float64   `json:"impacto_medio"`
	TotalAffectedCustomers int64     `json:"total_clientes_afetados"`
	Open                   int       `json:"abertos"`
	InProgress             int       `json:"em_andamento"`
	Resolved               int       `json:"resolvidos"`
	Earliest               time.Time `json:"data_mais_antiga"`
	Latest                 time.Time `json:"data_mais_recente"`
}

// MonthBucket is one row of the monthly rollup.
type MonthBucket struct {
	Month       string  `json:"mes"`
	Total       int     `json:"total"`
	Critical    int     `json:"criticos"`
	TotalImpact float64 `json:"impacto_total"`
}

// LevelSummary is one row of the per-level rollup.
type LevelSummary struct {
	Level                    RiskLevel `json:"nivel_risco"`
	Total                    int       `json:"total"`
	TotalImpact              float64   `json:"impacto_total"`
	AverageImpact            float64   `json:"impacto_medio"`
	TotalAffectedCustomers   int64     `json:"clientes_total"`
	AverageAffectedCustomers float64   `json:"clientes_medio"`
}

// Order selects how search results are sorted.
type Order string

const (
	OrderImpact         Order = "impacto"
	OrderCustomers      Order = "clientes"
	OrderRecent         Order = "data"
	OrderUnavailability Order = "indisponibilidade"
)

// SearchParams filters a structured search. Zero values mean "any"; Month
// is YYYY-MM.
type SearchParams struct {
	Level  RiskLevel
	Status Status
	Month  string
	Order  Order
	Limit  int
}

// ListFilter filters the dashboard listing. From and To are YYYY-MM-DD, inclusive.
type ListFilter struct {
	From  string
	To    string
	Level RiskLevel
}

// StatusChange describes an applied status update.
type StatusChange struct {
	EventID  string `json:"evento_id"`
	Previous Status `json:"status_anterior"`
	Current  Status `json:"status"`
}
