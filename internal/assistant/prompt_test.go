package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

func sampleGateway() *fakeGateway {
	critical := events.Event{
		ID:                "EVT-20240312120000-0005",
		OccurredAt:        time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC),
		Level:             events.LevelCritical,
		Description:       "Indisponibilidade do sistema de cartões",
		FinancialImpact:   ptrFloat(1234567.891),
		AffectedCustomers: ptrInt64(50000),
		Status:            events.StatusOpen,
	}
	return &fakeGateway{
		stats: &events.Statistics{
			Total: 5000, Critical: 120, High: 800, Medium: 1900, Low: 2180,
			TotalImpact: 98765432.1, AverageImpact: 19753.09, TotalAffectedCustomers: 250000,
			Open: 300, InProgress: 200, Resolved: 4500,
			Earliest: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Latest:   time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC),
		},
		critical: []events.Event{critical},
		months: []events.MonthBucket{
			{Month: "2024-12", Total: 10}, {Month: "2024-11", Total: 9}, {Month: "2024-10", Total: 8},
			{Month: "2024-09", Total: 7}, {Month: "2024-08", Total: 6}, {Month: "2024-07", Total: 5},
			{Month: "2024-06", Total: 4},
		},
		levels: []events.LevelSummary{
			{Level: events.LevelCritical, Total: 120, TotalImpact: 5000000, AverageImpact: 41666.67, TotalAffectedCustomers: 97488, AverageAffectedCustomers: 812.4},
		},
		records: map[string]events.Event{
			"EVT-20240115103000-0001": {
				ID:          "EVT-20240115103000-0001",
				OccurredAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
				Level:       events.LevelHigh,
				Description: "Falha no sistema PIX",
				Status:      events.StatusInProgress,
			},
		},
		results: []events.Event{critical},
	}
}

func newTestAssembler(gw DataGateway) *ContextAssembler {
	return NewContextAssembler("", gw, NewIntentDetector(2024), nil)
}

func assertInOrder(t *testing.T, text string, markers ...string) {
	t.Helper()
	last := -1
	for _, m := range markers {
		idx := strings.Index(text, m)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", m)
		require.Greater(t, idx, last, "section %q out of order", m)
		last = idx
	}
}

func TestBuildSectionOrder(t *testing.T) {
	a := newTestAssembler(sampleGateway())

	prompt := a.Build(context.Background(), PromptRequest{
		Message: "compare EVT-20240115103000-0001 com os eventos críticos",
		Screen: &ScreenContext{
			KPIs:         &ScreenKPIs{Total: 42, Critical: 3, High: 5},
			Events:       []ScreenEvent{{ID: "EVT-20240201000000-0009", Level: "Médio", Description: "Erro de conciliação"}},
			Period:       "últimos 30 dias",
			SelectedDate: "2024-02-01",
		},
		History:  []Turn{{Role: RoleUser, Content: "oi"}, {Role: RoleAssistant, Content: "Olá!"}},
		UserName: "Ana",
	})

	assertInOrder(t, prompt,
		"Você é a Yoyo",
		"USUÁRIO ATUAL: Ana",
		"ESTATÍSTICAS DO BANCO DE DADOS COMPLETO:",
		"TOP 5 EVENTOS MAIS CRÍTICOS (por impacto financeiro):",
		"EVENTOS POR MÊS (últimos meses):",
		"DETALHAMENTO POR NÍVEL DE RISCO:",
		"DADOS VISÍVEIS NA TELA DO USUÁRIO (filtro atual):",
		"KPIs DO FILTRO ATUAL:",
		"EVENTOS VISÍVEIS (1 eventos na tela do usuário):",
		"PERÍODO SELECIONADO PELO USUÁRIO: últimos 30 dias",
		"FILTRO DE DATA APLICADO: 2024-02-01",
		"EVENTOS BUSCADOS DO BANCO (mencionados pelo usuário):",
		"[EVT-20240115103000-0001]",
		"EVENTOS DE NÍVEL CRÍTICO (1 eventos encontrados):",
		"HISTÓRICO DA CONVERSA (mensagens recentes):",
		"Usuário: oi",
		"Yoyo: Olá!",
		"MENSAGEM ATUAL DO USUÁRIO:\ncompare EVT-20240115103000-0001",
		closingInstruction,
	)
	assert.True(t, strings.HasSuffix(prompt, closingInstruction))
}

func TestBuildCopiesFiguresVerbatim(t *testing.T) {
	a := newTestAssembler(sampleGateway())
	prompt := a.Build(context.Background(), PromptRequest{Message: "EVT-20240115103000-0001"})

	assert.Contains(t, prompt, "- Total de eventos: 5000")
	assert.Contains(t, prompt, "R$ 98,765,432.10")
	assert.Contains(t, prompt, "R$ 1,234,567.89")
	assert.Contains(t, prompt, "- Período dos dados: 2023-01-01 00:00:00 até 2024-12-31 23:00:00")
	assert.Contains(t, prompt, "Clientes afetados: 97488 (média: 812)")

	// The explicitly referenced record has no impact or customers.
	assert.Contains(t, prompt, "- Impacto financeiro: N/A")
	assert.Contains(t, prompt, "- Clientes afetados: N/A")
	assert.Contains(t, prompt, "- Criticidade do sistema: N/A")
}

func TestBuildRendersSixMonths(t *testing.T) {
	a := newTestAssembler(sampleGateway())
	prompt := a.Build(context.Background(), PromptRequest{Message: "oi"})

	assert.Contains(t, prompt, "- 2024-07:")
	assert.NotContains(t, prompt, "- 2024-06:")
}

func TestBuildOmitsFailedSectionsOnly(t *testing.T) {
	gw := sampleGateway()
	gw.statsErr = errors.New("db timeout")
	gw.monthsErr = errors.New("db timeout")

	prompt := newTestAssembler(gw).Build(context.Background(), PromptRequest{Message: "tudo certo?"})

	assert.NotContains(t, prompt, "ESTATÍSTICAS DO BANCO DE DADOS COMPLETO:")
	assert.NotContains(t, prompt, "EVENTOS POR MÊS")
	assert.Contains(t, prompt, "TOP 5 EVENTOS MAIS CRÍTICOS")
	assert.Contains(t, prompt, "DETALHAMENTO POR NÍVEL DE RISCO:")
	assert.Contains(t, prompt, "MENSAGEM ATUAL DO USUÁRIO:\ntudo certo?")
}

func TestBuildSkipsUnknownRecordIDs(t *testing.T) {
	prompt := newTestAssembler(sampleGateway()).Build(context.Background(), PromptRequest{
		Message: "e o EVT-20991231235959-9999?",
	})
	assert.NotContains(t, prompt, "EVENTOS BUSCADOS DO BANCO")
}

func TestBuildCapsScreenEventsAndHistory(t *testing.T) {
	var screenEvents []ScreenEvent
	for i := 1; i <= 20; i++ {
		screenEvents = append(screenEvents, ScreenEvent{ID: fmt.Sprintf("EVT-20240101000000-%04d", i), Level: "Baixo"})
	}
	var history []Turn
	for i := 1; i <= 12; i++ {
		history = append(history, Turn{Role: RoleUser, Content: fmt.Sprintf("pergunta %02d", i)})
	}

	prompt := newTestAssembler(sampleGateway()).Build(context.Background(), PromptRequest{
		Message: "resumo",
		Screen:  &ScreenContext{Events: screenEvents},
		History: history,
	})

	assert.Contains(t, prompt, "EVENTOS VISÍVEIS (20 eventos na tela do usuário):")
	assert.Contains(t, prompt, "EVT-20240101000000-0015")
	assert.NotContains(t, prompt, "EVT-20240101000000-0016")
	assert.Contains(t, prompt, "(... e mais 5 eventos não listados)")
	assert.Contains(t, prompt, "Impacto: N/A | Clientes: N/A | Data: N/A")

	assert.NotContains(t, prompt, "pergunta 02")
	assert.Contains(t, prompt, "pergunta 03")
	assert.Contains(t, prompt, "pergunta 12")
}

func TestBuildReportsEmptySearch(t *testing.T) {
	gw := sampleGateway()
	gw.results = nil

	prompt := newTestAssembler(gw).Build(context.Background(), PromptRequest{Message: "eventos resolvidos"})
	assert.Contains(t, prompt, "EVENTOS COM STATUS 'RESOLVIDO' (0 eventos encontrados):")
}

func TestBuildUsesCustomPersona(t *testing.T) {
	a := NewContextAssembler("PERSONA DE TESTE", sampleGateway(), NewIntentDetector(2024), nil)
	prompt := a.Build(context.Background(), PromptRequest{Message: "oi"})
	assert.True(t, strings.HasPrefix(prompt, "PERSONA DE TESTE"))
	assert.NotContains(t, prompt, "USUÁRIO ATUAL")
}

func TestBuildKeepsScreenDescriptionsWhole(t *testing.T) {
	long := strings.Repeat("falha recorrente no processamento de boletos ", 6)
	prompt := newTestAssembler(sampleGateway()).Build(context.Background(), PromptRequest{
		Message: "o que aconteceu?",
		Screen: &ScreenContext{
			Events: []ScreenEvent{{ID: "EVT-20240201000000-0009", Level: "Médio", Description: long}},
		},
	})
	assert.Contains(t, prompt, "EVT-20240201000000-0009: [Médio] "+long+" |")
}

func TestBuildDefaultPersonaAllowsConcepts(t *testing.T) {
	prompt := newTestAssembler(sampleGateway()).Build(context.Background(), PromptRequest{Message: "o que é fraude interna?"})

	assert.Contains(t, prompt, "EXCEÇÃO: você PODE explicar conceitos teóricos")
	assert.Contains(t, prompt, "CONHECIMENTO CONCEITUAL")
	assert.Contains(t, prompt, "Como posso te ajudar mais?")
	assert.Contains(t, prompt, "Ajudar a atualizar o status")
	assert.NotContains(t, prompt, "Você não altera dados")
}

func TestMoneyFormat(t *testing.T) {
	assert.Equal(t, "R$ 0.00", money(0))
	assert.Equal(t, "R$ 1,234.56", money(1234.56))
	assert.Equal(t, "R$ 1,000,000.00", money(1e6))
}
