package mcp

import "github.com/mark3labs/mcp-go/mcp"

var sessionIDArg = mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by a previous call"))

var optionalSessionIDArg = mcp.WithString("session_id", mcp.Description("Existing idle session id; omit to start a new session"))

var newSessionToolDef = mcp.NewTool("curation_new_session",
	mcp.WithDescription("Create an idle curation session"),
	mcp.WithString("pipeline", mcp.Enum("dialogue", "upload"), mcp.Description("Workflow of the session, dialogue by default")),
)

var snapshotToolDef = mcp.NewTool("curation_snapshot",
	mcp.WithDescription("Show the current state of a session"),
	mcp.WithReadOnlyHintAnnotation(true),
	sessionIDArg,
)

var startTopicToolDef = mcp.NewTool("curation_start_topic",
	mcp.WithDescription("Open an expert dialogue on a topic"),
	optionalSessionIDArg,
	mcp.WithString("topic", mcp.Required(), mcp.Description("Subject of the dialogue")),
	mcp.WithString("category", mcp.Description("Knowledge base category")),
)

var sendMessageToolDef = mcp.NewTool("curation_send_message",
	mcp.WithDescription("Send the expert's message; the assistant replies and may propose a consensus point"),
	sessionIDArg,
	mcp.WithString("message", mcp.Required()),
)

var confirmPointToolDef = mcp.NewTool("curation_confirm_point",
	mcp.WithDescription("Confirm a proposed consensus point"),
	sessionIDArg,
	mcp.WithNumber("point_id", mcp.Required()),
)

var rejectPointToolDef = mcp.NewTool("curation_reject_point",
	mcp.WithDescription("Reject a consensus point"),
	sessionIDArg,
	mcp.WithNumber("point_id", mcp.Required()),
)

var generateArticleToolDef = mcp.NewTool("curation_generate_article",
	mcp.WithDescription("Write an article from the confirmed consensus points"),
	sessionIDArg,
)

var editDraftToolDef = mcp.NewTool("curation_edit_draft",
	mcp.WithDescription("Replace the pending article or summary draft"),
	sessionIDArg,
	mcp.WithString("content", mcp.Required()),
)

var commitArticleToolDef = mcp.NewTool("curation_commit_article",
	mcp.WithDescription("Store the article in the knowledge base"),
	sessionIDArg,
)

var resetToolDef = mcp.NewTool("curation_reset",
	mcp.WithDescription("Return a session to idle, discarding its data"),
	sessionIDArg,
)

var closeSessionToolDef = mcp.NewTool("curation_close_session",
	mcp.WithDescription("Dispose of a session"),
	sessionIDArg,
)

var uploadTextToolDef = mcp.NewTool("curation_upload_text",
	mcp.WithDescription("Start an upload session from source text"),
	optionalSessionIDArg,
	mcp.WithString("text", mcp.Required()),
	mcp.WithString("source_label", mcp.Description("Name of the source, such as a file name")),
	mcp.WithString("source_link"),
	mcp.WithString("category"),
)

var uploadURLToolDef = mcp.NewTool("curation_upload_url",
	mcp.WithDescription("Start an upload session from the text of a web page"),
	optionalSessionIDArg,
	mcp.WithString("url", mcp.Required()),
	mcp.WithString("category"),
)

var summarizeToolDef = mcp.NewTool("curation_summarize",
	mcp.WithDescription("Summarize the uploaded text"),
	sessionIDArg,
)

var approveToolDef = mcp.NewTool("curation_approve",
	mcp.WithDescription("Store the summary in the knowledge base, optionally replacing it with edited content"),
	sessionIDArg,
	mcp.WithString("content"),
)

var queryToolDef = mcp.NewTool("knowledge_query",
	mcp.WithDescription("Find the stored documents most relevant to a query"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Required()),
	mcp.WithNumber("n", mcp.Description("Number of results, 5 by default")),
)

var getDocumentToolDef = mcp.NewTool("knowledge_get",
	mcp.WithDescription("Fetch a stored document"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required()),
)

var listDocumentsToolDef = mcp.NewTool("knowledge_list",
	mcp.WithDescription("List stored documents in insertion order"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("offset"),
	mcp.WithNumber("limit"),
)

var statsToolDef = mcp.NewTool("knowledge_stats",
	mcp.WithDescription("Count stored documents overall and per category"),
	mcp.WithReadOnlyHintAnnotation(true),
)
