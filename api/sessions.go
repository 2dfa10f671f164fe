package api

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/extract"
)

// newSessionID in a session path creates the session as part of the action,
// for the actions that allow it.
const newSessionID = "new"

type createSessionRequest struct {
	Pipeline string `json:"pipeline"`
}

type topicRequest struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type uploadTextRequest struct {
	Text        string `json:"text"`
	SourceLabel string `json:"sourceLabel"`
	SourceLink  string `json:"sourceLink"`
	Category    string `json:"category"`
}

type uploadURLRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// bind decodes an optional JSON body. A missing body leaves out untouched.
func bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func sessionParam(c *gin.Context) string {
	id := c.Param("id")
	if id == newSessionID {
		return ""
	}
	return id
}

func pointParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("point"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: consensus point %q", curation.ErrNotFound, c.Param("point")))
		return 0, false
	}
	return id, true
}

func (s *Server) reply(c *gin.Context, snap *curation.Snapshot, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// POST /api/sessions
func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if !bind(c, &req) {
		return
	}
	pipeline := core.Pipeline(req.Pipeline)
	if pipeline == "" {
		pipeline = core.PipelineDialogue
	}
	snap, err := s.orch.NewSession(pipeline)
	s.reply(c, snap, err)
}

// GET /api/sessions/:id
func (s *Server) getSession(c *gin.Context) {
	snap, err := s.orch.Snapshot(c.Param("id"))
	s.reply(c, snap, err)
}

// DELETE /api/sessions/:id
func (s *Server) closeSession(c *gin.Context) {
	if err := s.orch.CloseSession(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{})
}

// POST /api/sessions/:id/reset
func (s *Server) resetSession(c *gin.Context) {
	id := c.Param("id")
	snap, err := s.orch.Snapshot(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if snap.Pipeline == core.PipelineUpload {
		snap, err = s.orch.ResetUpload(c.Request.Context(), id)
	} else {
		snap, err = s.orch.ResetSession(c.Request.Context(), id)
	}
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/topic
func (s *Server) startTopic(c *gin.Context) {
	var req topicRequest
	if !bind(c, &req) {
		return
	}
	snap, err := s.orch.StartTopic(c.Request.Context(), sessionParam(c), req.Topic, req.Category)
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/messages
func (s *Server) sendMessage(c *gin.Context) {
	var req messageRequest
	if !bind(c, &req) {
		return
	}
	snap, err := s.orch.SendMessage(c.Request.Context(), c.Param("id"), req.Message)
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/points/:point/confirm
func (s *Server) confirmPoint(c *gin.Context) {
	point, ok := pointParam(c)
	if !ok {
		return
	}
	snap, err := s.orch.ConfirmPoint(c.Request.Context(), c.Param("id"), point)
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/points/:point/reject
func (s *Server) rejectPoint(c *gin.Context) {
	point, ok := pointParam(c)
	if !ok {
		return
	}
	snap, err := s.orch.RejectPoint(c.Request.Context(), c.Param("id"), point)
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/article
func (s *Server) generateArticle(c *gin.Context) {
	snap, err := s.orch.GenerateArticle(c.Request.Context(), c.Param("id"))
	s.reply(c, snap, err)
}

// PUT /api/sessions/:id/draft
func (s *Server) editDraft(c *gin.Context) {
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	snap, err := s.orch.EditDraft(c.Request.Context(), c.Param("id"), req.Content)
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/commit
func (s *Server) commitArticle(c *gin.Context) {
	snap, err := s.orch.CommitArticle(c.Request.Context(), c.Param("id"))
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/upload
func (s *Server) uploadText(c *gin.Context) {
	var req uploadTextRequest
	if !bind(c, &req) {
		return
	}
	snap, err := s.orch.UploadExtracted(c.Request.Context(), sessionParam(c), curation.Extraction{
		Text:        req.Text,
		SourceLabel: req.SourceLabel,
		SourceLink:  req.SourceLink,
		Category:    req.Category,
	})
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/upload/file (multipart: file, category, sourceLink)
func (s *Server) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, fmt.Errorf("file is required: %w", err))
		return
	}
	f, err := header.Open()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, extract.DefaultMaxBytes+1))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if len(data) > extract.DefaultMaxBytes {
		respondError(c, fmt.Errorf("%w: %s", extract.ErrContentTooLarge, header.Filename))
		return
	}

	text, err := extract.ExtractFile(header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := s.orch.UploadExtracted(c.Request.Context(), sessionParam(c), curation.Extraction{
		Text:        text,
		SourceLabel: header.Filename,
		SourceLink:  c.PostForm("sourceLink"),
		Category:    c.PostForm("category"),
	})
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/upload/url
func (s *Server) uploadURL(c *gin.Context) {
	var req uploadURLRequest
	if !bind(c, &req) {
		return
	}
	page, err := s.urls.Extract(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := s.orch.UploadExtracted(c.Request.Context(), sessionParam(c), curation.Extraction{
		Text:        page.Text,
		SourceLabel: page.Title,
		SourceLink:  page.URL,
		Category:    req.Category,
	})
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/summarize
func (s *Server) summarize(c *gin.Context) {
	snap, err := s.orch.Summarize(c.Request.Context(), c.Param("id"))
	s.reply(c, snap, err)
}

// POST /api/sessions/:id/approve
func (s *Server) approve(c *gin.Context) {
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	snap, err := s.orch.Approve(c.Request.Context(), c.Param("id"), req.Content)
	s.reply(c, snap, err)
}
