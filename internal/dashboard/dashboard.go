package dashboard

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

// Dashboard serves the chat page, its summary endpoints and the live chat socket.
type Dashboard struct {
	chat   *chat.Service
	events *events.Store
	audit  *audit.Store
	logger *zap.Logger
}

// New creates a new Dashboard. svc may be nil when no generation backend is
// configured; the socket then answers every message with an error.
func New(svc *chat.Service, eventStore *events.Store, auditStore *audit.Store, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		chat:   svc,
		events: eventStore,
		audit:  auditStore,
		logger: logger,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/recent", d.handleRecent)
	r.Get("/ws/chat", d.handleWebSocket)
}
