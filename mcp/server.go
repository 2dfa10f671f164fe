// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package mcp exposes the curation workflow and knowledge base as Model
// Context Protocol tools served over stdio.
package mcp

import (
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const instructions = `Curate expert knowledge into the knowledge base.
Dialogue: curation_start_topic, then curation_send_message; confirm proposed points with
curation_confirm_point, then curation_generate_article and curation_commit_article.
Upload: curation_upload_text or curation_upload_url, then curation_summarize and curation_approve.
Every curation tool returns the session snapshot.`

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"curation_new_session":      {newSessionToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleNewSession }},
	"curation_snapshot":         {snapshotToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnapshot }},
	"curation_start_topic":      {startTopicToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStartTopic }},
	"curation_send_message":     {sendMessageToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSendMessage }},
	"curation_confirm_point":    {confirmPointToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleConfirmPoint }},
	"curation_reject_point":     {rejectPointToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleRejectPoint }},
	"curation_generate_article": {generateArticleToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerateArticle }},
	"curation_edit_draft":       {editDraftToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleEditDraft }},
	"curation_commit_article":   {commitArticleToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommitArticle }},
	"curation_reset":            {resetToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleReset }},
	"curation_close_session":    {closeSessionToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCloseSession }},
	"curation_upload_text":      {uploadTextToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleUploadText }},
	"curation_upload_url":       {uploadURLToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleUploadURL }},
	"curation_summarize":        {summarizeToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummarize }},
	"curation_approve":          {approveToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleApprove }},
	"knowledge_query":           {queryToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleQuery }},
	"knowledge_get":             {getDocumentToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetDocument }},
	"knowledge_list":            {listDocumentsToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleListDocuments }},
	"knowledge_stats":           {statsToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats }},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns the names in the list that are not tools.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with every tool not listed in disabled.
func NewServer(h *Handlers, version string, disabled ...string) *server.MCPServer {
	s := server.NewMCPServer(
		"curator",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	for name, entry := range toolRegistry {
		if slices.Contains(disabled, name) {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools over stdio until the input closes.
func Run(h *Handlers, version string, disabled ...string) error {
	return server.ServeStdio(NewServer(h, version, disabled...))
}
