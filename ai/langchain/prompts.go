package langchain

import (
	"fmt"
	"strings"

	"github.com/poiesic/curator/ai"
)

const summarySystemPrompt = `You summarize documents for a curated knowledge base. Your summaries must be FAITHFUL.

Rules:
- Report only what the document says, including its key facts, claims and conclusions.
- Do not add opinions, analysis, commentary, warnings or disclaimers.
- Do not fact-check, dispute or editorialize about the content.
- Keep the document's perspective and voice.
- Keep its structure (sections, main points) where that helps the reader.

A reader of your summary should understand what the document says without reading it.`

const summaryPromptTemplate = `Write a faithful summary of the document below.

Source: %s

---
%s
---

Cover every key point, claim and conclusion while staying concise.`

const combinePromptTemplate = `Below are summaries of consecutive parts of a long document titled "%s".
Merge them into one coherent summary that keeps every important point.

%s

The result must read as a single summary and stay faithful: no commentary, no editorializing.`

const dialogueSystemTemplate = `You are the knowledge editor of a metabolic health knowledge base. You work with domain experts who contribute claims, and you help them turn those claims into precise, well-sourced consensus points through Socratic questioning.

## Topic
%s

## Category
%s

## Confirmed consensus points
%s

## Related knowledge already in the database
%s

## How to respond
1. When the expert states a claim, acknowledge it and check that it is specific (dose, population, effect size, mechanism). Ask what evidence supports it and whether it agrees with the related knowledge above.
2. When the expert cites a source, ask about study design, sample size and population. Note whether it is a single study, a systematic review or a guideline, and ask about limitations or conflicting findings.
3. When a claim is well supported, propose it as a consensus point and ask the expert to confirm it. Use one of these evidence levels: %s.
4. When the topic feels complete, suggest generating the article and propose a category from: %s.

Be sceptical without being dismissive. Separate correlation from causation. Never invent citations or studies. Keep the tone collegial and match the expert's technical depth.

## Output format
Reply with ONLY a JSON object, no preamble and no code fences:
{"reply": "<your message to the expert>", "consensus_point": null}
or, when proposing a point:
{"reply": "<your message to the expert>", "consensus_point": {"claim": "<claim>", "evidence_level": "<level>", "sources": "<citation 1>, <citation 2>"}}
Propose at most one consensus point per reply.`

const dialogueAcknowledgement = "Understood. I'm ready to work with you on this topic. What would you like to contribute?"

const articleSystemPrompt = "You write clear, evidence-qualified knowledge base articles in markdown. You never add information that is not in the material you are given."

const articlePromptTemplate = `Write a markdown knowledge base article from these verified consensus points.

Topic: %s
Category: %s

Consensus points:
%s

Requirements:
- Start with a # heading that is the article title.
- Use a ## subheading for each major point.
- Cite sources inline where relevant and end with a ## References section listing every cited source.
- Qualify claims by their evidence ("has been shown to", not "definitely causes").
- Aim for 300 to 800 words of clear, educational prose.
- Do not add information beyond the consensus points.`

func buildSummaryPrompt(text, sourceLabel string) string {
	return fmt.Sprintf(summaryPromptTemplate, sourceLabel, text)
}

func buildCombinePrompt(sourceLabel string, parts []string) string {
	sections := make([]string, len(parts))
	for i, p := range parts {
		sections[i] = fmt.Sprintf("Part %d summary:\n%s", i+1, p)
	}
	return fmt.Sprintf(combinePromptTemplate, sourceLabel, strings.Join(sections, "\n\n---\n\n"))
}

func buildDialogueSystemPrompt(req ai.DialogueRequest, categories []string) string {
	topic := req.Topic
	if topic == "" {
		topic = "Not set yet. Ask the expert what they want to contribute."
	}
	category := req.Category
	if category == "" {
		category = "Not chosen yet."
	}

	confirmed := "None yet."
	if len(req.ConfirmedClaims) > 0 {
		lines := make([]string, len(req.ConfirmedClaims))
		for i, p := range req.ConfirmedClaims {
			lines[i] = fmt.Sprintf("- [%d] %s (Evidence: %s, Sources: %s)", i+1, p.Claim, p.EvidenceLevel, orNone(p.Citations))
		}
		confirmed = strings.Join(lines, "\n")
	}

	related := "No closely related articles found."
	if len(req.RelatedContext) > 0 {
		lines := make([]string, len(req.RelatedContext))
		for i, c := range req.RelatedContext {
			lines[i] = "- " + truncateRunes(c, 500)
		}
		related = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(dialogueSystemTemplate,
		topic,
		category,
		confirmed,
		related,
		strings.Join(ai.EvidenceLevels, ", "),
		strings.Join(categories, ", "))
}

func buildArticlePrompt(req ai.ArticleRequest) string {
	lines := make([]string, len(req.Points))
	for i, p := range req.Points {
		level := p.EvidenceLevel
		if level == "" {
			level = "not specified"
		}
		lines[i] = fmt.Sprintf("- %s [Evidence: %s] [Sources: %s]", p.Claim, level, orNone(p.Citations))
	}
	return fmt.Sprintf(articlePromptTemplate, req.Topic, req.Category, strings.Join(lines, "\n"))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
