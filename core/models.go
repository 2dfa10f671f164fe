package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content fingerprint for stored documents.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Pipeline identifies which curation workflow a session follows.
type Pipeline string

const (
	// PipelineDialogue is the branching expert dialogue workflow.
	PipelineDialogue Pipeline = "dialogue"
	// PipelineUpload is the linear extract, summarize, approve workflow.
	PipelineUpload Pipeline = "upload"
)

// Stage is a session's position in its pipeline.
type Stage string

const (
	StageIdle Stage = "idle"

	// dialogue pipeline
	StageTopicActive  Stage = "topic_active"
	StageDiscussing   Stage = "discussing"
	StageArticleReady Stage = "article_ready"

	// upload pipeline
	StageCollecting       Stage = "collecting"
	StageTransforming     Stage = "transforming"
	StageAwaitingApproval Stage = "awaiting_approval"

	// StageCommitted is terminal for both pipelines until reset.
	StageCommitted Stage = "committed"
)

// Stages returns the stages a pipeline may occupy, in workflow order.
func (p Pipeline) Stages() []Stage {
	switch p {
	case PipelineDialogue:
		return []Stage{StageIdle, StageTopicActive, StageDiscussing, StageArticleReady, StageCommitted}
	case PipelineUpload:
		return []Stage{StageIdle, StageCollecting, StageTransforming, StageAwaitingApproval, StageCommitted}
	}
	return nil
}

// Role identifies who produced a dialogue turn.
type Role string

const (
	RoleOperator  Role = "operator"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single entry in a session's history.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultEvidenceLevel is used when a proposed point carries no evidence label.
const DefaultEvidenceLevel = "unknown"

// ConsensusPoint is a claim proposed during dialogue, pending operator confirmation.
type ConsensusPoint struct {
	ID            int       `json:"id"`
	Claim         string    `json:"claim"`
	EvidenceLevel string    `json:"evidenceLevel"`
	Citations     string    `json:"citations,omitempty"`
	Confirmed     bool      `json:"confirmed"`
	ProposedAt    time.Time `json:"proposedAt"`
}

// KnowledgeDocument is a committed knowledge-base entry.
type KnowledgeDocument struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
	Vector      []float32         `json:"-"`
	ContentHash ID                `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Category returns the document's category or "uncategorized".
func (d *KnowledgeDocument) Category() string {
	if c := d.Metadata[MetaCategory]; c != "" {
		return c
	}
	return UncategorizedCategory
}

// SearchResult represents a search result with the full document and relevance score.
type SearchResult struct {
	Document *KnowledgeDocument
	Score    float32
}

// Metadata keys attached to committed documents.
const (
	MetaCategory            = "category"
	MetaSource              = "source"
	MetaSourceLink          = "source_link"
	MetaTopic               = "topic"
	MetaCitations           = "citations"
	MetaVerificationStatus  = "verification_status"
	MetaConsensusPointCount = "consensus_point_count"
	MetaConsensusDate       = "consensus_date"
	MetaCreatedAt           = "created_at"
	MetaUpdatedAt           = "updated_at"
)

// Verification markers.
const (
	VerificationExpertVerified   = "expert_verified"
	VerificationOperatorApproved = "operator_approved"
)

// SourceExpertDialogue is the source recorded for dialogue commits.
const SourceExpertDialogue = "expert_dialogue"

// UncategorizedCategory is reported for documents without a category.
const UncategorizedCategory = "uncategorized"

// Checkpoint records how far a long-running batch job has progressed.
type Checkpoint struct {
	// Name identifies the job, e.g. "reembed".
	Name string `json:"name"`
	// LastDocumentID is the last document fully processed, in insertion order.
	LastDocumentID string `json:"last_document_id"`
	// Processed counts the documents handled so far.
	Processed int `json:"processed"`
	// Model is the embedding model the job was run with.
	Model     string    `json:"model,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
