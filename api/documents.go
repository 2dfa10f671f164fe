package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/curator/knowledge"
)

type documentRequest struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

type queryRequest struct {
	Query string `json:"query"`
	N     int    `json:"n"`
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, err)
		return 0, false
	}
	return n, true
}

// GET /api/documents?offset=&limit=
func (s *Server) listDocuments(c *gin.Context) {
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", knowledge.DefaultListLimit)
	if !ok {
		return
	}
	docs, err := s.kb.ListDocuments(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"documents": docs, "offset": offset, "count": len(docs)})
}

// POST /api/documents
func (s *Server) addDocument(c *gin.Context) {
	var req documentRequest
	if !bind(c, &req) {
		return
	}
	id, err := s.kb.CreateDocument(c.Request.Context(), req.Content, req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

// GET /api/documents/:id
func (s *Server) getDocument(c *gin.Context) {
	doc, err := s.kb.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"document": doc})
}

// PUT /api/documents/:id
func (s *Server) updateDocument(c *gin.Context) {
	var req documentRequest
	if !bind(c, &req) {
		return
	}
	doc, err := s.kb.UpdateDocument(c.Request.Context(), c.Param("id"), req.Content, req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"document": doc})
}

// DELETE /api/documents/:id
func (s *Server) deleteDocument(c *gin.Context) {
	if err := s.kb.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{})
}

// POST /api/query
func (s *Server) queryDocuments(c *gin.Context) {
	var req queryRequest
	if !bind(c, &req) {
		return
	}
	results, err := s.kb.Query(c.Request.Context(), req.Query, req.N)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"results": results})
}

// GET /api/stats
func (s *Server) stats(c *gin.Context) {
	stats, err := s.kb.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"stats": stats})
}
