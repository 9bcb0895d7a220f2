package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// handleGetEvent returns one event as JSON.
func (s *Server) handleGetEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: event_id"), nil
	}

	e, err := s.events.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("event %q not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load event: %v", err)), nil
	}
	return jsonResult(e)
}

// handleSearchEvents runs a text search when query is set and a structured
// search otherwise.
func (s *Server) handleSearchEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var (
		found []events.Event
		err   error
	)
	if query := strings.TrimSpace(request.GetString("query", "")); query != "" {
		found, err = s.events.SearchText(ctx, query, limit)
	} else {
		params := events.SearchParams{
			Month: request.GetString("month", ""),
			Order: events.Order(request.GetString("order", "")),
			Limit: limit,
		}
		if lv := request.GetString("level", ""); lv != "" {
			level, perr := events.ParseLevel(lv)
			if perr != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid level %q", lv)), nil
			}
			params.Level = level
		}
		if st := request.GetString("status", ""); st != "" {
			status, perr := events.ParseStatus(st)
			if perr != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid status %q", st)), nil
			}
			params.Status = status
		}
		found, err = s.events.Search(ctx, params)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(found) == 0 {
		return mcp.NewToolResultText("No events found. The event base may be empty. Run `riskdesk seed` to load it."), nil
	}
	return jsonResult(found)
}

type statisticsResult struct {
	Statistics *events.Statistics    `json:"estatisticas"`
	Levels     []events.LevelSummary `json:"niveis"`
	Months     []events.MonthBucket  `json:"meses"`
}

// handleEventStatistics returns the aggregate view of the event base.
func (s *Server) handleEventStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.events.Statistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute statistics: %v", err)), nil
	}
	levels, err := s.events.LevelRollup(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute level rollup: %v", err)), nil
	}
	months, err := s.events.MonthlyRollup(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute monthly rollup: %v", err)), nil
	}
	return jsonResult(statisticsResult{Statistics: stats, Levels: levels, Months: months})
}

// handleUpdateEventStatus applies a status change on behalf of an agent.
func (s *Server) handleUpdateEventStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: event_id"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: status"), nil
	}

	res := s.chat.UpdateStatus(ctx, id, chat.StatusRequest{
		Status: status,
		Actor:  request.GetString("actor", "mcp"),
	}, audit.ActorAgent)
	if !res.Success {
		s.logger.Info("agent status update rejected", zap.String("event_id", id), zap.String("reason", res.Reason))
		return mcp.NewToolResultError(res.Reason), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
