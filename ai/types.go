package ai

import "github.com/poiesic/curator/core"

// DefaultCategories are the knowledge-base categories offered to the operator
// and suggested by the dialogue assistant.
var DefaultCategories = []string{
	"dietary_fats",
	"food_mental_health",
	"keto_diet",
	"supplements",
	"metabolic_health",
	"behaviour_change",
	"clinical_evidence",
}

// EvidenceLevels are the evidence labels the dialogue assistant is asked to use.
var EvidenceLevels = []string{
	"meta-analysis",
	"RCT",
	"observational",
	"case-series",
	"expert-opinion",
	"mechanistic",
}

// DialogueRequest carries everything a dialogue turn needs.
type DialogueRequest struct {
	// History is the running conversation, oldest first. It does not include Message.
	History []core.Turn

	// Message is the operator's newest message.
	Message string

	Topic    string
	Category string

	// ConfirmedClaims are the session's confirmed consensus points in insertion order.
	ConfirmedClaims []core.ConsensusPoint

	// RelatedContext holds excerpts of stored documents similar to Message.
	RelatedContext []string
}

// ProposedPoint is a consensus point suggested by the generator.
type ProposedPoint struct {
	Claim         string
	EvidenceLevel string
	Citations     string
}

// DialogueReply is the generator's answer to a dialogue turn.
type DialogueReply struct {
	Reply string

	// ProposedPoint is nil when the reply proposes nothing.
	ProposedPoint *ProposedPoint
}

// ArticleRequest carries the inputs to article synthesis.
type ArticleRequest struct {
	Topic    string
	Category string
	Points   []core.ConsensusPoint
}
