package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// RefreshInput is the input schema for the refresh_quests tool.
type RefreshInput struct {
	Document string `json:"document,omitempty" jsonschema:"vault path of a document to make active before refreshing"`
}

// RefreshOutput is the output schema for the refresh_quests tool.
type RefreshOutput struct {
	DocumentID string   `json:"document_id,omitempty"`
	Outcome    string   `json:"outcome"`
	Completed  []string `json:"completed"`
	Generated  []string `json:"generated"`
	Obsoleted  int      `json:"obsoleted"`
	Error      string   `json:"error,omitempty"`
}

// ListInput is the input schema for the list_quests tool.
type ListInput struct {
	Document string `json:"document,omitempty" jsonschema:"only return quests for this vault path"`
	All      bool   `json:"all,omitempty" jsonschema:"include completed and dismissed quests"`
}

// ListOutput is the output schema for the list_quests tool.
type ListOutput struct {
	Quests []QuestOutput `json:"quests"`
	Count  int           `json:"count"`
}

// QuestInput identifies a single quest.
type QuestInput struct {
	ID string `json:"id" jsonschema:"the quest id"`
}

// BreakdownOutput is the output schema for the breakdown_quest tool.
type BreakdownOutput struct {
	ParentID string        `json:"parent_id"`
	Children []QuestOutput `json:"children"`
}

// DismissOutput is the output schema for the dismiss_quest tool.
type DismissOutput struct {
	ID        string `json:"id"`
	Dismissed bool   `json:"dismissed"`
}

// QuestOutput represents a single quest.
type QuestOutput struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	DocumentID string     `json:"document_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ParentID   string     `json:"parent_id,omitempty"`
	Obsolete   bool       `json:"obsolete,omitempty"`
	Reason     string     `json:"obsolete_reason,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh_quests",
		Description: "Validate, complete and top up research quests for the active document",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_quests",
		Description: "List research quests, optionally for a single document",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dismiss_quest",
		Description: "Dismiss a research quest so it is no longer suggested",
	}, s.handleDismiss)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "breakdown_quest",
		Description: "Split a research quest into smaller sub-questions",
	}, s.handleBreakdown)
}

// handleRefresh handles the refresh_quests tool invocation.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	if input.Document != "" {
		id, err := s.ports.documentID(input.Document)
		if err != nil {
			return nil, RefreshOutput{}, err
		}
		if err := s.ports.Quests.SetActiveDocument(ctx, id); err != nil {
			return nil, RefreshOutput{}, fmt.Errorf("opening %s: %w", input.Document, err)
		}
	}

	report := s.ports.Quests.Refresh(ctx)
	output := RefreshOutput{
		DocumentID: report.DocumentID,
		Outcome:    report.Outcome.String(),
		Completed:  nonNil(report.Completed),
		Generated:  nonNil(report.Generated),
		Obsoleted:  report.Obsoleted,
	}
	if report.Err != nil {
		output.Error = report.Err.Error()
	}
	return nil, output, nil
}

// handleList handles the list_quests tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	filter := driving.ListFilter{ActiveOnly: !input.All, IncludeDismissed: input.All}
	if input.Document != "" {
		id, err := s.ports.documentID(input.Document)
		if err != nil {
			return nil, ListOutput{}, err
		}
		filter.DocumentID = id
	}

	quests, err := s.ports.Quests.List(ctx, filter)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Quests: make([]QuestOutput, len(quests)),
		Count:  len(quests),
	}
	for i := range quests {
		output.Quests[i] = toQuestOutput(&quests[i])
	}
	return nil, output, nil
}

// handleDismiss handles the dismiss_quest tool invocation.
func (s *Server) handleDismiss(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestInput,
) (*mcp.CallToolResult, DismissOutput, error) {
	if err := s.ports.Quests.Dismiss(ctx, input.ID); err != nil {
		return nil, DismissOutput{}, err
	}
	return nil, DismissOutput{ID: input.ID, Dismissed: true}, nil
}

// handleBreakdown handles the breakdown_quest tool invocation.
func (s *Server) handleBreakdown(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestInput,
) (*mcp.CallToolResult, BreakdownOutput, error) {
	children, err := s.ports.Quests.Breakdown(ctx, input.ID)
	if err != nil {
		return nil, BreakdownOutput{}, err
	}

	output := BreakdownOutput{
		ParentID: input.ID,
		Children: make([]QuestOutput, len(children)),
	}
	for i := range children {
		output.Children[i] = toQuestOutput(&children[i])
	}
	return nil, output, nil
}

func toQuestOutput(q *domain.Quest) QuestOutput {
	out := QuestOutput{
		ID:         q.ID,
		Question:   q.Question,
		DocumentID: q.DocumentID,
		Status:     questStatus(q),
		CreatedAt:  q.CreatedAt,
		ParentID:   q.ParentID,
		Obsolete:   q.IsObsolete,
		Reason:     q.ObsoleteReason,
	}
	switch {
	case q.IsCompleted:
		t := q.CompletedAt
		out.ClosedAt = &t
	case q.IsDismissed:
		t := q.DismissedAt
		out.ClosedAt = &t
	}
	return out
}

// questStatus summarises the lifecycle state of q.
func questStatus(q *domain.Quest) string {
	switch {
	case q.IsCompleted:
		return "completed"
	case q.IsDismissed:
		return "dismissed"
	case q.IsObsolete:
		return "obsolete"
	default:
		return "active"
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
