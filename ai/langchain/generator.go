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


package langchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/textsplitter"
)

var (
	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrEmptyText indicates there was nothing to summarize.
	ErrEmptyText = errors.New("no text content to summarize")

	// ErrNoPoints indicates article synthesis was requested without points.
	ErrNoPoints = errors.New("no consensus points to synthesize")
)

const dialogueParseAttempts = 3

// Generator implements ai.TextGenerator over a langchaingo chat model.
type Generator struct {
	client        llms.Model
	splitter      textsplitter.TextSplitter
	maxInputChars int
	maxTokens     int
	temperature   float64
	categories    []string
	logger        *slog.Logger
}

// dialogueResponse matches the JSON object the dialogue prompt asks for.
type dialogueResponse struct {
	Reply          string         `json:"reply"`
	ConsensusPoint *pointResponse `json:"consensus_point"`
}

type pointResponse struct {
	Claim         string          `json:"claim"`
	EvidenceLevel string          `json:"evidence_level"`
	Sources       json.RawMessage `json:"sources"`
}

func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}
	return newGeneratorWithModel(client, config), nil
}

func newGeneratorWithModel(client llms.Model, config *ai.Config) *Generator {
	categories := config.Categories
	if len(categories) == 0 {
		categories = ai.DefaultCategories
	}
	return &Generator{
		client: client,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
		),
		maxInputChars: config.MaxInputChars,
		maxTokens:     config.MaxTokens,
		temperature:   config.Temperature,
		categories:    categories,
		logger:        slog.Default().With("component", "langchain-generator"),
	}
}

// NewGenerator creates a text generator for the configured backend.
//
// Returns ai.TextGenerator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.TextGenerator, error) {
	return newGenerator(config)
}

// NewGeneratorWithModel wraps an existing langchaingo model. The config
// supplies chunking limits, token caps and categories; its backend
// settings are ignored.
func NewGeneratorWithModel(client llms.Model, config *ai.Config) ai.TextGenerator {
	return newGeneratorWithModel(client, config)
}

// Summarize produces a faithful summary. Texts longer than the configured
// input limit are summarized part by part and the parts are then combined.
func (g *Generator) Summarize(ctx context.Context, text, sourceLabel string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if sourceLabel == "" {
		sourceLabel = "document"
	}

	if utf8.RuneCountInString(text) <= g.maxInputChars {
		return g.summarizeSingle(ctx, text, sourceLabel)
	}

	chunks, err := g.splitter.SplitText(text)
	if err != nil {
		return "", fmt.Errorf("failed to split document: %w", err)
	}
	g.logger.Info("summarizing large document in parts",
		"source", sourceLabel,
		"chars", utf8.RuneCountInString(text),
		"parts", len(chunks))

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		label := fmt.Sprintf("%s (part %d/%d)", sourceLabel, i+1, len(chunks))
		summary, err := g.summarizeSingle(ctx, chunk, label)
		if err != nil {
			return "", fmt.Errorf("error summarizing part %d: %w", i+1, err)
		}
		summaries = append(summaries, summary)
	}
	if len(summaries) == 1 {
		return summaries[0], nil
	}

	return g.complete(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, summarySystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildCombinePrompt(sourceLabel, summaries)),
	}, llms.WithMaxTokens(g.maxTokens))
}

func (g *Generator) summarizeSingle(ctx context.Context, text, sourceLabel string) (string, error) {
	return g.complete(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, summarySystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildSummaryPrompt(text, sourceLabel)),
	}, llms.WithMaxTokens(g.maxTokens))
}

// DialogueTurn replays the conversation and asks the model for a reply and
// an optional consensus point.
func (g *Generator) DialogueTurn(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildDialogueSystemPrompt(req, g.categories)),
		llms.TextParts(llms.ChatMessageTypeAI, dialogueAcknowledgement),
	}
	for _, turn := range req.History {
		switch turn.Role {
		case core.RoleOperator:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, turn.Text))
		case core.RoleAssistant:
			content = append(content, llms.TextParts(llms.ChatMessageTypeAI, turn.Text))
		}
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Message))

	var raw string
	var lastErr error
	for attempt := 0; attempt < dialogueParseAttempts; attempt++ {
		text, err := g.complete(ctx, content,
			llms.WithJSONMode(),
			llms.WithTemperature(g.temperature),
			llms.WithMaxTokens(g.maxTokens))
		if err != nil {
			g.logger.Error("failed to generate dialogue turn", "attempt", attempt+1, "err", err)
			return nil, err
		}
		raw = text

		reply, err := parseDialogueResponse(text)
		if err != nil {
			lastErr = err
			g.logger.Warn("error parsing dialogue response",
				"attempt", attempt+1,
				"response", text,
				"err", err)
			continue
		}
		return reply, nil
	}

	// The model never produced usable JSON; treat its text as the reply.
	g.logger.Warn("falling back to plain-text dialogue reply", "err", lastErr)
	return parsePlainReply(raw)
}

// SynthesizeArticle writes a markdown article from the confirmed points.
func (g *Generator) SynthesizeArticle(ctx context.Context, req ai.ArticleRequest) (string, error) {
	if len(req.Points) == 0 {
		return "", ErrNoPoints
	}
	article, err := g.complete(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, articleSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildArticlePrompt(req)),
	}, llms.WithTemperature(g.temperature), llms.WithMaxTokens(g.maxTokens))
	if err != nil {
		return "", err
	}
	return stripCodeFences(article), nil
}

// complete runs one request and returns the first choice's trimmed text.
func (g *Generator) complete(ctx context.Context, content []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	response, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func parseDialogueResponse(text string) (*ai.DialogueReply, error) {
	text = repairJSON(stripCodeFences(text))

	var resp dialogueResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Reply) == "" {
		return nil, errors.New("dialogue response has no reply")
	}

	reply := &ai.DialogueReply{Reply: strings.TrimSpace(resp.Reply)}
	if p := resp.ConsensusPoint; p != nil && strings.TrimSpace(p.Claim) != "" {
		reply.ProposedPoint = &ai.ProposedPoint{
			Claim:         strings.TrimSpace(p.Claim),
			EvidenceLevel: strings.TrimSpace(p.EvidenceLevel),
			Citations:     sourcesText(p.Sources),
		}
	}

	// Some models still embed the marker inside the JSON reply.
	clean, claim, level, sources, found := extractMarker(reply.Reply)
	if found {
		reply.Reply = clean
		if reply.ProposedPoint == nil && claim != "" {
			reply.ProposedPoint = &ai.ProposedPoint{Claim: claim, EvidenceLevel: level, Citations: sources}
		}
	}
	return reply, nil
}

func parsePlainReply(text string) (*ai.DialogueReply, error) {
	clean, claim, level, sources, found := extractMarker(text)
	reply := &ai.DialogueReply{Reply: clean}
	if found && claim != "" {
		reply.ProposedPoint = &ai.ProposedPoint{Claim: claim, EvidenceLevel: level, Citations: sources}
		if reply.Reply == "" {
			reply.Reply = "Proposed consensus point: " + claim
		}
	}
	if strings.TrimSpace(reply.Reply) == "" {
		return nil, ErrEmptyResponse
	}
	return reply, nil
}

// sourcesText accepts sources as a string or a list of strings.
func sourcesText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return strings.TrimSpace(string(raw))
}
