package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

// IntentKind selects which search a message asks for.
type IntentKind string

const (
	IntentNone     IntentKind = "none"
	IntentByLevel  IntentKind = "by_level"
	IntentByStatus IntentKind = "by_status"
	IntentByMonth  IntentKind = "by_month"
	IntentByText   IntentKind = "by_text"
	IntentOverview IntentKind = "overview"
)

const (
	filterLimit   = 20
	textLimit     = 15
	overviewLimit = 30
)

// QueryIntent is what Detect found in one message. Only the parameter that
// matches Kind is used for the search.
type QueryIntent struct {
	Kind   IntentKind
	Level  events.RiskLevel
	Status events.Status
	Month  string
	Term   string
	Order  events.Order
}

type keywordRule[T any] struct {
	value    T
	keywords []string
}

var levelRules = []keywordRule[events.RiskLevel]{
	{events.LevelCritical, []string{"crítico", "críticos", "critico", "criticos"}},
	{events.LevelHigh, []string{"alto", "altos"}},
	{events.LevelMedium, []string{"médio", "médios", "medio", "medios"}},
	{events.LevelLow, []string{"baixo", "baixos"}},
}

var statusRules = []keywordRule[events.Status]{
	{events.StatusOpen, []string{"aberto", "abertos", "pendente", "pendentes"}},
	{events.StatusInProgress, []string{"andamento", "sendo tratado", "sendo tratados"}},
	{events.StatusResolved, []string{"resolvido", "resolvidos", "fechado", "fechados"}},
}

var orderRules = []keywordRule[events.Order]{
	{events.OrderImpact, []string{"maior impacto", "maiores impactos", "mais caro", "mais caros", "maior valor", "maiores valores"}},
	{events.OrderCustomers, []string{"mais clientes", "mais afetados", "maior número de clientes", "maior numero de clientes"}},
	{events.OrderRecent, []string{"mais recente", "mais recentes", "últimos", "ultimos", "recentes"}},
	{events.OrderUnavailability, []string{"indisponibilidade", "mais tempo fora"}},
}

var monthRules = []keywordRule[int]{
	{1, []string{"janeiro"}}, {2, []string{"fevereiro"}}, {3, []string{"março", "marco"}},
	{4, []string{"abril"}}, {5, []string{"maio"}}, {6, []string{"junho"}},
	{7, []string{"julho"}}, {8, []string{"agosto"}}, {9, []string{"setembro"}},
	{10, []string{"outubro"}}, {11, []string{"novembro"}}, {12, []string{"dezembro"}},
}

var termRules = []keywordRule[string]{
	{"fraude", []string{"fraude", "fraudes"}},
	{"sistema", []string{"sistema", "sistemas"}},
	{"pix", []string{"pix"}},
	{"transferência", []string{"transferência", "transferências"}},
	{"transferencia", []string{"transferencia", "transferencias"}},
	{"cartão", []string{"cartão", "cartões"}},
	{"cartao", []string{"cartao", "cartoes"}},
	{"falha", []string{"falha", "falhas"}},
	{"erro", []string{"erro", "erros"}},
	{"indisponibilidade", []string{"indisponibilidade"}},
	{"ataque", []string{"ataque", "ataques"}},
	{"invasão", []string{"invasão", "invasões"}},
	{"invasao", []string{"invasao", "invasoes"}},
}

var (
	definitionalPhrases = []string{"o que é", "o que e", "o que são", "o que sao", "o que significa", "what is"}
	overviewPhrases     = []string{"todos os eventos", "resumo geral", "visão geral", "visao geral", "panorama", "overview"}

	yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
)

// IntentDetector maps a message to a QueryIntent with keyword rules. Months
// named without a year fall in DefaultYear.
type IntentDetector struct {
	DefaultYear int
}

// NewIntentDetector creates a detector.
func NewIntentDetector(defaultYear int) *IntentDetector {
	return &IntentDetector{DefaultYear: defaultYear}
}

// Detect runs every rule in a single pass. Rules that set the kind are
// applied in order (level, status, month, text, overview) and the last one
// that matches wins; ordering keywords never change the kind.
func (d *IntentDetector) Detect(message string) QueryIntent {
	text := newPhraseText(message)
	intent := QueryIntent{Kind: IntentNone, Order: events.OrderImpact}

	if level, ok := firstMatch(text, levelRules); ok {
		intent.Kind = IntentByLevel
		intent.Level = level
	}
	if status, ok := firstMatch(text, statusRules); ok {
		intent.Kind = IntentByStatus
		intent.Status = status
	}
	if order, ok := firstMatch(text, orderRules); ok {
		intent.Order = order
	}
	if month, ok := firstMatch(text, monthRules); ok {
		year := d.DefaultYear
		if m := yearPattern.FindStringSubmatch(message); m != nil {
			fmt.Sscanf(m[1], "%d", &year)
		}
		intent.Kind = IntentByMonth
		intent.Month = fmt.Sprintf("%04d-%02d", year, month)
	}
	if !text.hasAny(definitionalPhrases) {
		if term, ok := firstMatch(text, termRules); ok {
			intent.Kind = IntentByText
			intent.Term = term
		}
	}
	if text.hasAny(overviewPhrases) {
		intent.Kind = IntentOverview
	}
	return intent
}

func firstMatch[T any](text phraseText, rules []keywordRule[T]) (T, bool) {
	for _, rule := range rules {
		if text.hasAny(rule.keywords) {
			return rule.value, true
		}
	}
	var zero T
	return zero, false
}

// phraseText is a message lowercased and reduced to single-space separated
// words, padded so whole-word phrases can be found with a substring search.
type phraseText string

func newPhraseText(message string) phraseText {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return phraseText(" " + strings.Join(words, " ") + " ")
}

func (t phraseText) hasAny(phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(string(t), " "+p+" ") {
			return true
		}
	}
	return false
}

// IntentResolver runs the search an intent asks for.
type IntentResolver struct {
	gateway DataGateway
	logger  *zap.Logger
}

// NewIntentResolver creates a resolver over gateway.
func NewIntentResolver(gateway DataGateway, logger *zap.Logger) *IntentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentResolver{gateway: gateway, logger: logger}
}

// Resolve returns the events matching intent. Gateway failures are logged
// and yield no events so the turn can still be answered.
func (r *IntentResolver) Resolve(ctx context.Context, intent QueryIntent) []events.Event {
	order := intent.Order
	if order == "" {
		order = events.OrderImpact
	}

	var (
		list []events.Event
		err  error
	)
	switch intent.Kind {
	case IntentByLevel:
		list, err = r.gateway.Search(ctx, events.SearchParams{Level: intent.Level, Order: order, Limit: filterLimit})
	case IntentByStatus:
		list, err = r.gateway.Search(ctx, events.SearchParams{Status: intent.Status, Order: order, Limit: filterLimit})
	case IntentByMonth:
		list, err = r.gateway.Search(ctx, events.SearchParams{Month: intent.Month, Order: order, Limit: filterLimit})
	case IntentByText:
		list, err = r.gateway.SearchText(ctx, intent.Term, textLimit)
	case IntentOverview:
		list, err = r.gateway.Search(ctx, events.SearchParams{Order: order, Limit: overviewLimit})
	default:
		return nil
	}
	if err != nil {
		r.logger.Warn("intent search failed",
			zap.String("intent", string(intent.Kind)),
			zap.Error(err),
		)
		return nil
	}
	return list
}
