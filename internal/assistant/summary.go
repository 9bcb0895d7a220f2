package assistant

import (
	"fmt"
	"strings"
)

const (
	msgAskName        = "Olá! Sou a Yoyo, sua assistente de análise de risco operacional. Como posso te chamar?"
	msgNameNotCaught  = "Desculpe, não consegui entender seu nome. Pode me dizer apenas seu primeiro nome?"
	msgInternalError  = "Desculpe, ocorreu um erro interno. Pode repetir sua mensagem?"
	msgConnectedOnly  = "Estou conectada ao sistema de monitoramento."
	msgGreetingFormat = "Olá, %s! %s\n\nComo posso te ajudar?"
	msgWelcomeFormat  = "Prazer em te conhecer, %s!\n\n%s\n\nComo posso te ajudar? Pode me perguntar sobre qualquer evento ou padrão nos dados."
)

// dataSummary describes the screen in one sentence using only its KPI counts.
func dataSummary(screen *ScreenContext) string {
	if screen == nil || screen.KPIs == nil {
		return msgConnectedOnly
	}
	k := screen.KPIs

	var parts []string
	if k.Critical > 0 {
		noun := "crítico"
		if k.Critical > 1 {
			noun = "críticos"
		}
		parts = append(parts, fmt.Sprintf("%d %s", k.Critical, noun))
	}
	if k.High > 0 {
		parts = append(parts, fmt.Sprintf("%d de alto risco", k.High))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Estou vendo %d eventos no período selecionado", k.Total)
	if len(parts) > 0 {
		b.WriteString(", sendo " + strings.Join(parts, " e "))
	}
	b.WriteString(".")
	return b.String()
}
