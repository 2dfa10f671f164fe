package api

import (
	"bytes"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"github.com/poiesic/curator/curation"
)

// renderMarkdown converts a draft to HTML. Raw HTML in the draft is not
// passed through.
func renderMarkdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GET /api/sessions/:id/preview
func (s *Server) previewDraft(c *gin.Context) {
	snap, err := s.orch.Snapshot(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !snap.HasDraft {
		respondError(c, fmt.Errorf("%w: session %s has no draft", curation.ErrInvalidTransition, snap.SessionID))
		return
	}

	html, err := renderMarkdown(snap.Draft)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"sessionId": snap.SessionID, "markdown": snap.Draft, "html": html})
}
