package mcp

import "github.com/mark3labs/mcp-go/mcp"

// getEventTool defines the get_event MCP tool.
var getEventTool = mcp.NewTool("get_event",
	mcp.WithDescription("Get the full record of one operational risk event by its id."),
	mcp.WithString("event_id",
		mcp.Required(),
		mcp.Description("Event id, e.g. EVT-20240115103000-0001"),
	),
)

// searchEventsTool defines the search_events MCP tool.
var searchEventsTool = mcp.NewTool("search_events",
	mcp.WithDescription("Search risk events by level, status, month or description text. Without a text query, results are sorted by the chosen order."),
	mcp.WithString("query",
		mcp.Description("Text matched against event descriptions; when set, the other filters are ignored"),
	),
	mcp.WithString("level",
		mcp.Description("Risk level filter"),
		mcp.Enum("Crítico", "Alto", "Médio", "Baixo"),
	),
	mcp.WithString("status",
		mcp.Description("Status filter"),
		mcp.Enum("aberto", "em_andamento", "resolvido"),
	),
	mcp.WithString("month",
		mcp.Description("Month filter in YYYY-MM format"),
	),
	mcp.WithString("order",
		mcp.Description("Sort order (default impacto)"),
		mcp.Enum("impacto", "clientes", "data", "indisponibilidade"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of events to return (default 10)"),
	),
)

// eventStatisticsTool defines the event_statistics MCP tool.
var eventStatisticsTool = mcp.NewTool("event_statistics",
	mcp.WithDescription("Get aggregate statistics of the event base, with per-level and per-month rollups."),
)

// updateEventStatusTool defines the update_event_status MCP tool.
var updateEventStatusTool = mcp.NewTool("update_event_status",
	mcp.WithDescription("Change the treatment status of an event. The change is recorded in the audit trail."),
	mcp.WithString("event_id",
		mcp.Required(),
		mcp.Description("Event id"),
	),
	mcp.WithString("status",
		mcp.Required(),
		mcp.Description("New status"),
		mcp.Enum("aberto", "em_andamento", "resolvido"),
	),
	mcp.WithString("actor",
		mcp.Description("Name of the agent or person requesting the change"),
	),
)
