// Package mcp provides an MCP (Model Context Protocol) server adapter for quest.
// It lets AI assistants refresh, read and curate the research quests for the
// document the user is working on.
package mcp

import "errors"

// ErrMissingQuestService is returned when the quest service is not provided.
var ErrMissingQuestService = errors.New("mcp: quest service is required")
