package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/poiesic/curator/api"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/extract"
	"github.com/poiesic/curator/knowledge"
)

// Knowledge is the read side of the knowledge base exposed as tools.
type Knowledge interface {
	GetDocument(ctx context.Context, id string) (*core.KnowledgeDocument, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*core.KnowledgeDocument, error)
	Query(ctx context.Context, text string, n int) ([]*knowledge.Result, error)
	Stats(ctx context.Context) (*knowledge.Stats, error)
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	orch *curation.Orchestrator
	kb   Knowledge
	urls *extract.URLExtractor
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(orch *curation.Orchestrator, kb Knowledge, urls *extract.URLExtractor) *Handlers {
	if urls == nil {
		urls = extract.NewURLExtractor()
	}
	return &Handlers{orch: orch, kb: kb, urls: urls}
}

// SessionRequest identifies a session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// NewSessionRequest represents the arguments for curation_new_session.
type NewSessionRequest struct {
	Pipeline string `json:"pipeline,omitempty"`
}

// StartTopicRequest represents the arguments for curation_start_topic.
type StartTopicRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Topic     string `json:"topic"`
	Category  string `json:"category,omitempty"`
}

// MessageRequest represents the arguments for curation_send_message.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// PointRequest represents the arguments for the point tools.
type PointRequest struct {
	SessionID string `json:"session_id"`
	PointID   int    `json:"point_id"`
}

// ContentRequest represents the arguments for curation_edit_draft and curation_approve.
type ContentRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content,omitempty"`
}

// UploadTextRequest represents the arguments for curation_upload_text.
type UploadTextRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	Text        string `json:"text"`
	SourceLabel string `json:"source_label,omitempty"`
	SourceLink  string `json:"source_link,omitempty"`
	Category    string `json:"category,omitempty"`
}

// UploadURLRequest represents the arguments for curation_upload_url.
type UploadURLRequest struct {
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url"`
	Category  string `json:"category,omitempty"`
}

// QueryRequest represents the arguments for knowledge_query.
type QueryRequest struct {
	Query string `json:"query"`
	N     int    `json:"n,omitempty"`
}

// DocumentRequest represents the arguments for knowledge_get.
type DocumentRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for knowledge_list.
type ListRequest struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

// sessionTool adapts a session action taking a decoded request.
func sessionTool[T any](action func(ctx context.Context, in T) (*curation.Snapshot, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := decode[T](req)
		if err != nil {
			return invalidArguments(err), nil
		}
		snap, err := action(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(api.SnapshotEnvelope{OK: true, Snapshot: snap})
	}
}

// HandleNewSession handles the curation_new_session tool call.
func (h *Handlers) HandleNewSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in NewSessionRequest) (*curation.Snapshot, error) {
		pipeline := core.Pipeline(in.Pipeline)
		if pipeline == "" {
			pipeline = core.PipelineDialogue
		}
		return h.orch.NewSession(pipeline)
	})(ctx, req)
}

// HandleSnapshot handles the curation_snapshot tool call.
func (h *Handlers) HandleSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in SessionRequest) (*curation.Snapshot, error) {
		return h.orch.Snapshot(in.SessionID)
	})(ctx, req)
}

// HandleStartTopic handles the curation_start_topic tool call.
func (h *Handlers) HandleStartTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in StartTopicRequest) (*curation.Snapshot, error) {
		return h.orch.StartTopic(ctx, in.SessionID, in.Topic, in.Category)
	})(ctx, req)
}

// HandleSendMessage handles the curation_send_message tool call.
func (h *Handlers) HandleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in MessageRequest) (*curation.Snapshot, error) {
		return h.orch.SendMessage(ctx, in.SessionID, in.Message)
	})(ctx, req)
}

// HandleConfirmPoint handles the curation_confirm_point tool call.
func (h *Handlers) HandleConfirmPoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in PointRequest) (*curation.Snapshot, error) {
		return h.orch.ConfirmPoint(ctx, in.SessionID, in.PointID)
	})(ctx, req)
}

// HandleRejectPoint handles the curation_reject_point tool call.
func (h *Handlers) HandleRejectPoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in PointRequest) (*curation.Snapshot, error) {
		return h.orch.RejectPoint(ctx, in.SessionID, in.PointID)
	})(ctx, req)
}

// HandleGenerateArticle handles the curation_generate_article tool call.
func (h *Handlers) HandleGenerateArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in SessionRequest) (*curation.Snapshot, error) {
		return h.orch.GenerateArticle(ctx, in.SessionID)
	})(ctx, req)
}

// HandleEditDraft handles the curation_edit_draft tool call.
func (h *Handlers) HandleEditDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in ContentRequest) (*curation.Snapshot, error) {
		return h.orch.EditDraft(ctx, in.SessionID, in.Content)
	})(ctx, req)
}

// HandleCommitArticle handles the curation_commit_article tool call.
func (h *Handlers) HandleCommitArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in SessionRequest) (*curation.Snapshot, error) {
		return h.orch.CommitArticle(ctx, in.SessionID)
	})(ctx, req)
}

// HandleReset handles the curation_reset tool call for either pipeline.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in SessionRequest) (*curation.Snapshot, error) {
		snap, err := h.orch.Snapshot(in.SessionID)
		if err != nil {
			return nil, err
		}
		if snap.Pipeline == core.PipelineUpload {
			return h.orch.ResetUpload(ctx, in.SessionID)
		}
		return h.orch.ResetSession(ctx, in.SessionID)
	})(ctx, req)
}

// HandleCloseSession handles the curation_close_session tool call.
func (h *Handlers) HandleCloseSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[SessionRequest](req)
	if err != nil {
		return invalidArguments(err), nil
	}
	if err := h.orch.CloseSession(in.SessionID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"ok": true, "sessionId": in.SessionID})
}

// HandleUploadText handles the curation_upload_text tool call.
func (h *Handlers) HandleUploadText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in UploadTextRequest) (*curation.Snapshot, error) {
		return h.orch.UploadExtracted(ctx, in.SessionID, curation.Extraction{
			Text:        in.Text,
			SourceLabel: in.SourceLabel,
			SourceLink:  in.SourceLink,
			Category:    in.Category,
		})
	})(ctx, req)
}

// HandleUploadURL handles the curation_upload_url tool call.
func (h *Handlers) HandleUploadURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in UploadURLRequest) (*curation.Snapshot, error) {
		page, err := h.urls.Extract(ctx, in.URL)
		if err != nil {
			return nil, err
		}
		return h.orch.UploadExtracted(ctx, in.SessionID, curation.Extraction{
			Text:        page.Text,
			SourceLabel: page.Title,
			SourceLink:  page.URL,
			Category:    in.Category,
		})
	})(ctx, req)
}

// HandleSummarize handles the curation_summarize tool call.
func (h *Handlers) HandleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in SessionRequest) (*curation.Snapshot, error) {
		return h.orch.Summarize(ctx, in.SessionID)
	})(ctx, req)
}

// HandleApprove handles the curation_approve tool call.
func (h *Handlers) HandleApprove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return sessionTool(func(ctx context.Context, in ContentRequest) (*curation.Snapshot, error) {
		return h.orch.Approve(ctx, in.SessionID, in.Content)
	})(ctx, req)
}

// HandleQuery handles the knowledge_query tool call.
func (h *Handlers) HandleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[QueryRequest](req)
	if err != nil {
		return invalidArguments(err), nil
	}
	results, err := h.kb.Query(ctx, in.Query, in.N)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"ok": true, "results": results})
}

// HandleGetDocument handles the knowledge_get tool call.
func (h *Handlers) HandleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[DocumentRequest](req)
	if err != nil {
		return invalidArguments(err), nil
	}
	doc, err := h.kb.GetDocument(ctx, in.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"ok": true, "document": doc})
}

// HandleListDocuments handles the knowledge_list tool call.
func (h *Handlers) HandleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[ListRequest](req)
	if err != nil {
		return invalidArguments(err), nil
	}
	docs, err := h.kb.ListDocuments(ctx, in.Offset, in.Limit)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"ok": true, "documents": docs, "count": len(docs)})
}

// HandleStats handles the knowledge_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.kb.Stats(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"ok": true, "stats": stats})
}

// Result helpers

// errorResult reports err with its kind. IsError is set so MCP clients
// recognize the failure.
func errorResult(err error) *mcp.CallToolResult {
	kind := api.KindOf(err)
	message := err.Error()
	if kind == curation.KindInternal {
		message = "an internal error occurred"
	}
	return failure(kind, message)
}

func invalidArguments(err error) *mcp.CallToolResult {
	return failure(api.KindBadRequest, fmt.Sprintf("invalid arguments: %v", err))
}

func failure(kind curation.ErrorKind, message string) *mcp.CallToolResult {
	content, _ := json.Marshal(api.ErrorEnvelope{OK: false, ErrorKind: kind, Message: message})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
