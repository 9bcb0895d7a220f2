package assistant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

const (
	topCriticalLimit = 5
	renderedMonths   = 6
	screenEventLimit = 15
	historyLimit     = 10
	descriptionLimit = 150
	sectionSeparator = "=================================================="
)

// PromptRequest is the per-turn input to ContextAssembler.Build.
type PromptRequest struct {
	Message  string
	Screen   *ScreenContext
	History  []Turn
	UserName string
}

// ContextAssembler builds the grounded prompt for one turn from the
// persona, live aggregates, the user's screen and any events the message
// points at.
type ContextAssembler struct {
	persona  string
	gateway  DataGateway
	detector *IntentDetector
	resolver *IntentResolver
	logger   *zap.Logger
}

// NewContextAssembler creates an assembler. An empty persona selects DefaultPersona.
func NewContextAssembler(persona string, gateway DataGateway, detector *IntentDetector, logger *zap.Logger) *ContextAssembler {
	if persona == "" {
		persona = DefaultPersona
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextAssembler{
		persona:  persona,
		gateway:  gateway,
		detector: detector,
		resolver: NewIntentResolver(gateway, logger),
		logger:   logger,
	}
}

// overview holds the aggregates fetched for every prompt. ok[i] is false when
// fetch i failed, and that section is left out.
type overview struct {
	stats    *events.Statistics
	critical []events.Event
	months   []events.MonthBucket
	levels   []events.LevelSummary
	ok       [4]bool
}

func (a *ContextAssembler) fetchOverview(ctx context.Context) overview {
	var (
		ov overview
		g  errgroup.Group
	)
	fetch := func(i int, name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				a.logger.Warn("omitting prompt section", zap.String("section", name), zap.Error(err))
				return nil
			}
			ov.ok[i] = true
			return nil
		})
	}

	fetch(0, "statistics", func() (err error) {
		ov.stats, err = a.gateway.Statistics(ctx)
		return err
	})
	fetch(1, "top_critical", func() (err error) {
		ov.critical, err = a.gateway.TopCritical(ctx, topCriticalLimit)
		return err
	})
	fetch(2, "monthly", func() (err error) {
		ov.months, err = a.gateway.MonthlyRollup(ctx)
		return err
	})
	fetch(3, "levels", func() (err error) {
		ov.levels, err = a.gateway.LevelRollup(ctx)
		return err
	})
	g.Wait()
	return ov
}

// Build assembles the prompt. Sections always appear in the same order and
// every figure is copied from the gateway or the screen as given.
func (a *ContextAssembler) Build(ctx context.Context, req PromptRequest) string {
	ov := a.fetchOverview(ctx)

	var b strings.Builder
	b.WriteString(a.persona)

	if req.UserName != "" {
		fmt.Fprintf(&b, "\n\nUSUÁRIO ATUAL: %s (use o nome de forma natural quando apropriado)", req.UserName)
	}

	if ov.ok[0] && ov.stats != nil {
		writeStatistics(&b, ov.stats)
	}
	if ov.ok[1] {
		writeTopCritical(&b, ov.critical)
	}
	if ov.ok[2] {
		writeMonthly(&b, ov.months)
	}
	if ov.ok[3] {
		writeLevels(&b, ov.levels)
	}

	if req.Screen != nil {
		writeScreen(&b, req.Screen)
	}

	if records := a.lookupRecords(ctx, ExtractRecordIDs(req.Message)); len(records) > 0 {
		b.WriteString("\n\nEVENTOS BUSCADOS DO BANCO (mencionados pelo usuário):")
		for _, e := range records {
			writeFullRecord(&b, e)
		}
	}

	intent := a.detector.Detect(req.Message)
	if intent.Kind != IntentNone {
		a.logger.Debug("intent detected",
			zap.String("intent", string(intent.Kind)),
			zap.String("order", string(intent.Order)),
		)
		writeSearchResults(&b, intent, a.resolver.Resolve(ctx, intent))
	}

	writeHistory(&b, req.History)

	fmt.Fprintf(&b, "\n\nMENSAGEM ATUAL DO USUÁRIO:\n%s", req.Message)
	b.WriteString("\n\n")
	b.WriteString(closingInstruction)
	return b.String()
}

func (a *ContextAssembler) lookupRecords(ctx context.Context, ids []string) []events.Event {
	var records []events.Event
	for _, id := range ids {
		e, err := a.gateway.GetByID(ctx, id)
		if errors.Is(err, events.ErrNotFound) || (err == nil && e == nil) {
			continue
		}
		if err != nil {
			a.logger.Warn("event lookup failed", zap.String("event_id", id), zap.Error(err))
			continue
		}
		records = append(records, *e)
	}
	return records
}

func writeStatistics(b *strings.Builder, st *events.Statistics) {
	b.WriteString("\n\nESTATÍSTICAS DO BANCO DE DADOS COMPLETO:")
	fmt.Fprintf(b, "\n- Total de eventos: %d", st.Total)
	fmt.Fprintf(b, "\n- Críticos: %d | Altos: %d | Médios: %d | Baixos: %d", st.Critical, st.High, st.Medium, st.Low)
	fmt.Fprintf(b, "\n- Impacto financeiro total: %s", money(st.TotalImpact))
	fmt.Fprintf(b, "\n- Impacto financeiro médio: %s", money(st.AverageImpact))
	fmt.Fprintf(b, "\n- Total de clientes afetados: %d", st.TotalAffectedCustomers)
	fmt.Fprintf(b, "\n- Status: %d abertos, %d em andamento, %d resolvidos", st.Open, st.InProgress, st.Resolved)
	fmt.Fprintf(b, "\n- Período dos dados: %s até %s", timestamp(st.Earliest), timestamp(st.Latest))
}

func writeTopCritical(b *strings.Builder, list []events.Event) {
	b.WriteString("\n\nTOP 5 EVENTOS MAIS CRÍTICOS (por impacto financeiro):")
	if len(list) == 0 {
		b.WriteString("\n- Nenhum evento crítico ou de alto risco registrado.")
		return
	}
	for _, e := range list {
		writeSummaryLine(b, e)
	}
}

func writeMonthly(b *strings.Builder, months []events.MonthBucket) {
	b.WriteString("\n\nEVENTOS POR MÊS (últimos meses):")
	if len(months) > renderedMonths {
		months = months[:renderedMonths]
	}
	for _, m := range months {
		fmt.Fprintf(b, "\n- %s: %d eventos (%d críticos), impacto total %s", m.Month, m.Total, m.Critical, money(m.TotalImpact))
	}
}

func writeLevels(b *strings.Builder, levels []events.LevelSummary) {
	b.WriteString("\n\nDETALHAMENTO POR NÍVEL DE RISCO:")
	for _, l := range levels {
		fmt.Fprintf(b, "\n- %s: %d eventos | Impacto total: %s | Impacto médio: %s | Clientes afetados: %d (média: %.0f)",
			l.Level, l.Total, money(l.TotalImpact), money(l.AverageImpact), l.TotalAffectedCustomers, l.AverageAffectedCustomers)
	}
}

func writeScreen(b *strings.Builder, screen *ScreenContext) {
	b.WriteString("\n\n" + sectionSeparator)
	b.WriteString("\nDADOS VISÍVEIS NA TELA DO USUÁRIO (filtro atual):")

	if k := screen.KPIs; k != nil {
		b.WriteString("\n\nKPIs DO FILTRO ATUAL:")
		fmt.Fprintf(b, "\n- Total: %d | Críticos: %d | Altos: %d | Médios: %d | Baixos: %d", k.Total, k.Critical, k.High, k.Medium, k.Low)
	}

	if len(screen.Events) > 0 {
		fmt.Fprintf(b, "\n\nEVENTOS VISÍVEIS (%d eventos na tela do usuário):", len(screen.Events))
		shown := screen.Events
		if len(shown) > screenEventLimit {
			shown = shown[:screenEventLimit]
		}
		for _, e := range shown {
			fmt.Fprintf(b, "\n- %s: [%s] %s | Impacto: %s | Clientes: %s | Data: %s",
				e.ID, e.Level, e.Description,
				moneyPtr(e.FinancialImpact), intPtr(e.AffectedCustomers), orNA(e.OccurredAt))
		}
		if rest := len(screen.Events) - len(shown); rest > 0 {
			fmt.Fprintf(b, "\n(... e mais %d eventos não listados)", rest)
		}
	}

	if screen.Period != "" {
		fmt.Fprintf(b, "\n\nPERÍODO SELECIONADO PELO USUÁRIO: %s", screen.Period)
	}
	if screen.SelectedDate != "" {
		fmt.Fprintf(b, "\n\nFILTRO DE DATA APLICADO: %s (o usuário está vendo apenas eventos desta data)", screen.SelectedDate)
	}
	b.WriteString("\n" + sectionSeparator)
}

func writeSummaryLine(b *strings.Builder, e events.Event) {
	fmt.Fprintf(b, "\n- %s: [%s] %s | Impacto: %s | Clientes: %s | Status: %s | Data: %s",
		e.ID, e.Level, condense(e.Description, descriptionLimit),
		moneyPtr(e.FinancialImpact), intPtr(e.AffectedCustomers), e.Status, timestamp(e.OccurredAt))
}

func writeFullRecord(b *strings.Builder, e events.Event) {
	fmt.Fprintf(b, "\n\n[%s]", e.ID)
	fmt.Fprintf(b, "\n- Nível de risco: %s", e.Level)
	fmt.Fprintf(b, "\n- Data do evento: %s", timestamp(e.OccurredAt))
	fmt.Fprintf(b, "\n- Descrição: %s", orNA(e.Description))
	fmt.Fprintf(b, "\n- Impacto financeiro: %s", moneyPtr(e.FinancialImpact))
	fmt.Fprintf(b, "\n- Impacto no cliente: %s", orNA(e.CustomerImpact))
	fmt.Fprintf(b, "\n- Clientes afetados: %s", intPtr(e.AffectedCustomers))
	fmt.Fprintf(b, "\n- Tempo de indisponibilidade: %s", hoursPtr(e.UnavailabilityHours))
	criticality := notAvailable
	if e.SystemCriticality != nil {
		criticality = strconv.Itoa(*e.SystemCriticality) + "/5"
	}
	fmt.Fprintf(b, "\n- Criticidade do sistema: %s", criticality)
	fmt.Fprintf(b, "\n- Frequência: %d", e.Frequency)
	fmt.Fprintf(b, "\n- Falha de processo: %s | Fraude interna: %s | Recorrência: %s",
		yesNo(e.ProcessFailure), yesNo(e.InternalFraud), yesNo(e.Recurrence))
	fmt.Fprintf(b, "\n- Status: %s", e.Status)
	if e.ResolvedAt != nil {
		fmt.Fprintf(b, "\n- Data de resolução: %s", timestamp(*e.ResolvedAt))
	}
	if e.ResolutionHours != nil {
		fmt.Fprintf(b, "\n- Tempo de resolução: %s", hoursPtr(e.ResolutionHours))
	}
}

func searchHeader(intent QueryIntent) string {
	switch intent.Kind {
	case IntentByLevel:
		return "EVENTOS DE NÍVEL " + strings.ToUpper(string(intent.Level))
	case IntentByStatus:
		return fmt.Sprintf("EVENTOS COM STATUS '%s'", strings.ToUpper(string(intent.Status)))
	case IntentByMonth:
		return "EVENTOS DO MÊS " + intent.Month
	case IntentByText:
		return fmt.Sprintf("EVENTOS RELACIONADOS A '%s'", strings.ToUpper(intent.Term))
	default:
		return "PRINCIPAIS EVENTOS DO BANCO (ordenados por " + string(intent.Order) + ")"
	}
}

func writeSearchResults(b *strings.Builder, intent QueryIntent, list []events.Event) {
	fmt.Fprintf(b, "\n\n%s (%d eventos encontrados):", searchHeader(intent), len(list))
	if len(list) == 0 {
		b.WriteString("\n- Nenhum evento encontrado para esta busca.")
		return
	}
	for _, e := range list {
		writeSummaryLine(b, e)
	}
}

func writeHistory(b *strings.Builder, history []Turn) {
	if len(history) == 0 {
		return
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	b.WriteString("\n\nHISTÓRICO DA CONVERSA (mensagens recentes):")
	for _, t := range history {
		speaker := "Usuário"
		if t.Role == RoleAssistant {
			speaker = "Yoyo"
		}
		fmt.Fprintf(b, "\n%s: %s", speaker, t.Content)
	}
}
