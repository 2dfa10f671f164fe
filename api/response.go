package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/extract"
	"github.com/poiesic/curator/knowledge"
	"github.com/poiesic/curator/storage"
)

// Kinds reported for failures outside the curation workflow.
const (
	KindBadRequest       curation.ErrorKind = "BadRequest"
	KindExtractionFailed curation.ErrorKind = "ExtractionFailed"
	KindDuplicate        curation.ErrorKind = "Duplicate"
)

// SnapshotEnvelope is the success response of a session action.
type SnapshotEnvelope struct {
	OK       bool               `json:"ok"`
	Snapshot *curation.Snapshot `json:"snapshot"`
}

// ErrorEnvelope is the failure response of every endpoint.
type ErrorEnvelope struct {
	OK        bool               `json:"ok"`
	ErrorKind curation.ErrorKind `json:"errorKind"`
	Message   string             `json:"message"`
}

var kindStatus = map[curation.ErrorKind]int{
	curation.KindEmptyInput:        http.StatusBadRequest,
	curation.KindInvalidTransition: http.StatusConflict,
	curation.KindNotFound:          http.StatusNotFound,
	curation.KindGenerationFailed:  http.StatusBadGateway,
	curation.KindStoreWriteFailed:  http.StatusBadGateway,
	curation.KindSessionBusy:       http.StatusLocked,
	KindBadRequest:                 http.StatusBadRequest,
	KindExtractionFailed:           http.StatusUnprocessableEntity,
	KindDuplicate:                  http.StatusConflict,
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(kind curation.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// KindOf classifies errors from the knowledge base and extraction as well as
// the curation workflow.
func KindOf(err error) curation.ErrorKind {
	if kind := curation.KindOf(err); kind != curation.KindInternal {
		return kind
	}
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return KindDuplicate
	case errors.Is(err, storage.ErrNotFound):
		return curation.KindNotFound
	case errors.Is(err, core.ErrEmptyContent), errors.Is(err, knowledge.ErrEmptyQuery):
		return curation.KindEmptyInput
	case errors.Is(err, extract.ErrUnsupportedFormat), errors.Is(err, extract.ErrUnsupportedContentType),
		errors.Is(err, extract.ErrContentTooLarge), errors.Is(err, extract.ErrNoContent),
		errors.Is(err, extract.ErrEmptyURL), errors.Is(err, extract.ErrFetchFailed):
		return KindExtractionFailed
	}
	return curation.KindInternal
}

func respondSnapshot(c *gin.Context, snap *curation.Snapshot) {
	c.JSON(http.StatusOK, SnapshotEnvelope{OK: true, Snapshot: snap})
}

func respondError(c *gin.Context, err error) {
	kind := KindOf(err)
	c.JSON(StatusFor(kind), ErrorEnvelope{OK: false, ErrorKind: kind, Message: err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{OK: false, ErrorKind: KindBadRequest, Message: err.Error()})
}

func respondOK(c *gin.Context, payload gin.H) {
	payload["ok"] = true
	c.JSON(http.StatusOK, payload)
}
