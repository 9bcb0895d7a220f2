package assistant

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const notAvailable = "N/A"

// money renders a value as "R$ 1,234,567.89".
func money(v float64) string {
	return "R$ " + humanize.FormatFloat("#,###.##", v)
}

func moneyPtr(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return money(*v)
}

func intPtr(v *int64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatInt(*v, 10)
}

func hoursPtr(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " horas"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format(time.DateTime)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

// condense cuts s to at most n runes, marking the cut with "...".
func condense(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
