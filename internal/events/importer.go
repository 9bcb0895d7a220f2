package events

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// seedRecord is the on-disk shape of an event in a seed file. Field names
// follow the eventos_risco export used by the dashboard.
type seedRecord struct {
	ID                  string   `json:"evento_id"`
	OccurredAt          string   `json:"data_evento"`
	ResolvedAt          string   `json:"data_resolucao"`
	ResolutionHours     *float64 `json:"tempo_resolucao_horas"`
	Level               string   `json:"nivel_risco"`
	Description         string   `json:"descricao"`
	FinancialImpact     *float64 `json:"impacto_financeiro"`
	CustomerImpact      string   `json:"impacto_cliente"`
	AffectedCustomers   *int64   `json:"clientes_afetados"`
	UnavailabilityHours *float64 `json:"tempo_indisponibilidade"`
	Frequency           int      `json:"frequencia_evento"`
	SystemCriticality   *int     `json:"criticidade_sistema"`
	ProcessFailure      bool     `json:"falha_processo"`
	InternalFraud       bool     `json:"fraude_interna"`
	Recurrence          bool     `json:"recorrencia"`
	Status              string   `json:"status"`
}

// DecodeSeed reads a JSON array of events. Every record is validated; the
// first invalid one aborts decoding with its position in the error.
func DecodeSeed(r io.Reader) ([]Event, error) {
	var records []seedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}

	list := make([]Event, 0, len(records))
	for i, rec := range records {
		e, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.ID, err)
		}
		list = append(list, e)
	}
	return list, nil
}

func (rec seedRecord) toEvent() (Event, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return Event{}, fmt.Errorf("missing evento_id")
	}
	level, err := ParseLevel(rec.Level)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", err, rec.Level)
	}
	status := StatusOpen
	if rec.Status != "" {
		if status, err = ParseStatus(rec.Status); err != nil {
			return Event{}, fmt.Errorf("%w: %q", err, rec.Status)
		}
	}
	occurred := parseTime(rec.OccurredAt)
	if occurred.IsZero() {
		return Event{}, fmt.Errorf("invalid data_evento %q", rec.OccurredAt)
	}

	e := Event{
		ID:                  strings.ToUpper(strings.TrimSpace(rec.ID)),
		OccurredAt:          occurred,
		ResolutionHours:     rec.ResolutionHours,
		Level:               level,
		Description:         rec.Description,
		FinancialImpact:     rec.FinancialImpact,
		CustomerImpact:      rec.CustomerImpact,
		AffectedCustomers:   rec.AffectedCustomers,
		UnavailabilityHours: rec.UnavailabilityHours,
		Frequency:           rec.Frequency,
		SystemCriticality:   rec.SystemCriticality,
		ProcessFailure:      rec.ProcessFailure,
		InternalFraud:       rec.InternalFraud,
		Recurrence:          rec.Recurrence,
		Status:              status,
	}
	if rec.ResolvedAt != "" {
		if t := parseTime(rec.ResolvedAt); !t.IsZero() {
			e.ResolvedAt = &t
		}
	}
	return e, nil
}
