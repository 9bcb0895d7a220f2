package assistant

import (
	"context"
	"time"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

// ConversationState is the onboarding position of a conversation. The caller
// stores it between turns; the orchestrator only moves it forward.
type ConversationState string

const (
	StateStart        ConversationState = "INICIO"
	StateAwaitingName ConversationState = "AGUARDANDO_NOME"
	StateActive       ConversationState = "ATIVO"
)

// Role identifies who produced a history turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ScreenKPIs are the counters shown on the user's dashboard.
type ScreenKPIs struct {
	Total    int `json:"total"`
	Critical int `json:"critico"`
	High     int `json:"alto"`
	Medium   int `json:"medio"`
	Low      int `json:"baixo"`
}

// ScreenEvent is an event row as the dashboard shows it.
type ScreenEvent struct {
	ID                string   `json:"evento_id"`
	Level             string   `json:"nivel_risco"`
	Description       string   `json:"descricao"`
	FinancialImpact   *float64 `json:"impacto_financeiro"`
	AffectedCustomers *int64   `json:"clientes_afetados"`
	OccurredAt        string   `json:"data_evento"`
}

// ScreenContext is a snapshot of what the user currently sees.
type ScreenContext struct {
	KPIs         *ScreenKPIs   `json:"kpis,omitempty"`
	Events       []ScreenEvent `json:"eventos,omitempty"`
	Period       string        `json:"periodo,omitempty"`
	SelectedDate string        `json:"data_selecionada,omitempty"`
}

// Input is everything one conversational turn needs.
type Input struct {
	Message  string
	Screen   *ScreenContext
	History  []Turn
	UserName string
	State    ConversationState
}

// Result is the outcome of one turn.
type Result struct {
	Response     string            `json:"resposta"`
	Success      bool              `json:"sucesso"`
	State        ConversationState `json:"conversation_state"`
	UserName     string            `json:"nome_usuario,omitempty"`
	AwaitingName bool              `json:"aguardando_nome,omitempty"`
	Error        ErrorCode         `json:"erro,omitempty"`
}

// StatusResult is the outcome of a status update request. Previous is empty
// unless the update was applied.
type StatusResult struct {
	Success  bool          `json:"sucesso"`
	EventID  string        `json:"evento_id"`
	Status   events.Status `json:"novo_status,omitempty"`
	Previous events.Status `json:"status_anterior,omitempty"`
	Reason   string        `json:"motivo,omitempty"`
	err      error
}

// Err returns the error behind a failed update, or nil.
func (r StatusResult) Err() error {
	return r.err
}

// GenerationParams are the sampling settings sent with every prompt.
type GenerationParams struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// DefaultGenerationParams matches the values the assistant is tuned for.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{Temperature: 0.3, TopP: 0.9, MaxOutputTokens: 4000}
}

// DataGateway is the read/update surface over the event store.
type DataGateway interface {
	Statistics(ctx context.Context) (*events.Statistics, error)
	TopCritical(ctx context.Context, limit int) ([]events.Event, error)
	MonthlyRollup(ctx context.Context) ([]events.MonthBucket, error)
	LevelRollup(ctx context.Context) ([]events.LevelSummary, error)
	GetByID(ctx context.Context, id string) (*events.Event, error)
	Search(ctx context.Context, p events.SearchParams) ([]events.Event, error)
	SearchText(ctx context.Context, term string, limit int) ([]events.Event, error)
	UpdateStatus(ctx context.Context, id string, status events.Status) (*events.StatusChange, error)
}

// GenerationClient turns a prompt into text.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
