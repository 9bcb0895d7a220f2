package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold greeting", "**Olá**, tudo certo", "tudo certo"},
		{"plain", "Há 3 eventos críticos abertos.", "Há 3 eventos críticos abertos."},
		{"italic and underline", "*itálico* e __sublinhado__", "itálico e sublinhado"},
		{"inline code", "Veja o `EVT-20240115103000-0001` agora", "Veja o EVT-20240115103000-0001 agora"},
		{"headings", "## Resumo\nDois eventos\n# Fim", "Resumo\nDois eventos\nFim"},
		{"greeting with bang", "Oi! O evento foi resolvido.", "O evento foi resolvido."},
		{"stacked greetings", "Olá! Bom dia, segue o resumo", "segue o resumo"},
		{"greeting as prefix of word", "Oitenta eventos abertos", "Oitenta eventos abertos"},
		{"greeting mid text", "O cliente disse olá.", "O cliente disse olá."},
		{"only greeting", "  Boa tarde  ", ""},
		{"surrounding space", "\n  resposta  \n", "resposta"},
		{"list hyphens kept", "- item um\n- item dois", "- item um\n- item dois"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"**Olá**, tudo certo",
		"***negrito e itálico***",
		"Oi, olá, **bom dia**! `x`",
		"# Olá\n**Resumo**",
		"texto *com* __marcas__ e ` código `",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}
