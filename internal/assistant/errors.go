package assistant

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ziadkadry99/riskdesk/internal/llm"
)

// ErrorCode is the user-facing failure class of a turn.
type ErrorCode string

const (
	ErrRateLimit  ErrorCode = "RATE_LIMIT"
	ErrAuth       ErrorCode = "AUTH_ERROR"
	ErrConnection ErrorCode = "CONNECTION_ERROR"
	ErrNoContext  ErrorCode = "NO_CONTEXT"
	ErrUnknown    ErrorCode = "UNKNOWN_ERROR"
)

var userMessages = map[ErrorCode]string{
	ErrRateLimit:  "Estou recebendo muitas solicitações no momento. Aguarde alguns segundos e tente novamente.",
	ErrAuth:       "Estou com problemas de configuração. Por favor, contate o suporte técnico.",
	ErrConnection: "Não consegui me conectar ao serviço de processamento. Verifique sua conexão e tente novamente.",
	ErrNoContext:  "Não tenho dados visíveis para analisar no momento. Certifique-se de que há eventos carregados no dashboard.",
	ErrUnknown:    "Desculpe, encontrei um problema ao processar sua solicitação. Pode tentar reformular sua pergunta?",
}

// UserMessage is the Portuguese text shown for code.
func (c ErrorCode) UserMessage() string {
	if msg, ok := userMessages[c]; ok {
		return msg
	}
	return userMessages[ErrUnknown]
}

var (
	rateLimitHints  = []string{"rate limit", "rate_limit", "ratelimit", "quota", "429", "resource_exhausted", "too many requests"}
	authHints       = []string{"api_key", "api key", "apikey", "authentication", "unauthorized", "permission denied", "401", "403"}
	connectionHints = []string{"connection", "timeout", "timed out", "network", "no such host", "dial tcp"}
)

// Classify maps a generation failure to an ErrorCode. Typed provider and
// network errors are checked first, then the error text. It never returns
// ErrNoContext; that depends on the screen and is decided by the caller.
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}

	if apiErr, ok := llm.AsAPIError(err); ok {
		switch {
		case apiErr.RateLimited():
			return ErrRateLimit
		case apiErr.Unauthorized():
			return ErrAuth
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrConnection
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, rateLimitHints):
		return ErrRateLimit
	case containsAny(msg, authHints):
		return ErrAuth
	case containsAny(msg, connectionHints):
		return ErrConnection
	}
	return ErrUnknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
