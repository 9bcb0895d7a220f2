package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

const recentLimit = 10

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	Statistics    *events.Statistics    `json:"estatisticas"`
	Levels        []events.LevelSummary `json:"niveis"`
	Months        []events.MonthBucket  `json:"meses"`
	TotalSessions int                   `json:"sessoes"`
}

// recentResponse is the JSON response for the recent activity endpoint.
type recentResponse struct {
	Critical []events.Event `json:"criticos"`
	Audit    []audit.Entry  `json:"auditoria"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := d.events.Statistics(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	levels, err := d.events.LevelRollup(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	months, err := d.events.MonthlyRollup(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if months == nil {
		months = []events.MonthBucket{}
	}

	totalSessions := 0
	if d.chat != nil && d.chat.Sessions() != nil {
		totalSessions, _ = d.chat.Sessions().CountSessions(ctx)
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Statistics:    stats,
		Levels:        levels,
		Months:        months,
		TotalSessions: totalSessions,
	})
}

func (d *Dashboard) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	critical, err := d.events.TopCritical(ctx, recentLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var entries []audit.Entry
	if d.audit != nil {
		entries, err = d.audit.Query(ctx, audit.QueryFilter{Limit: recentLimit})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	if critical == nil {
		critical = []events.Event{}
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	writeJSON(w, http.StatusOK, recentResponse{
		Critical: critical,
		Audit:    entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
