package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

const (
	// uriScheme is the custom URI scheme for quest resources.
	uriScheme = "quest://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for every stored quest.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "quests",
		Name:        "quests",
		Description: "All research quests, including completed and dismissed ones",
		MIMEType:    "application/json",
	}, s.handleQuestsResource)

	// Template for the active quests of one document. The id is path-escaped.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/quests",
		Name:        "document-quests",
		Description: "Active research quests for a specific document",
		MIMEType:    "application/json",
	}, s.handleDocumentQuestsResource)
}

// handleQuestsResource returns every stored quest.
func (s *Server) handleQuestsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	quests, err := s.ports.Quests.List(ctx, driving.ListFilter{IncludeDismissed: true})
	if err != nil {
		return nil, fmt.Errorf("listing quests: %w", err)
	}
	return jsonResource(req.Params.URI, quests)
}

// handleDocumentQuestsResource returns the active quests of one document.
func (s *Server) handleDocumentQuestsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	quests, err := s.ports.Quests.List(ctx, driving.ListFilter{DocumentID: docID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing quests: %w", err)
	}
	return jsonResource(req.Params.URI, quests)
}

func jsonResource(uri string, quests []domain.Quest) (*mcp.ReadResourceResult, error) {
	out := make([]QuestOutput, len(quests))
	for i := range quests {
		out[i] = toQuestOutput(&quests[i])
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling quests: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// quest://documents/{documentId}/quests.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/quests"

	if len(uri) <= len(prefix)+len(suffix) ||
		!strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	escaped := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	id, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return id
}

// DocumentQuestsURI returns the resource URI for a document's quests.
func DocumentQuestsURI(documentID string) string {
	return uriScheme + "documents/" + url.PathEscape(documentID) + "/quests"
}
