// Package api serves the curation workflow and the knowledge base over HTTP.
//
// Every session action answers with a JSON envelope: {"ok": true, "snapshot": ...}
// on success or {"ok": false, "errorKind": ..., "message": ...} on failure.
// The HTTP status follows the error kind:
//
//	EmptyInput        400
//	InvalidTransition 409
//	NotFound          404
//	GenerationFailed  502
//	StoreWriteFailed  502
//	SessionBusy       423
//
// Session events are streamed as server-sent events from
// GET /api/sessions/:id/events.
package api
