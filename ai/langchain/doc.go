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


// Package langchain implements the ai interfaces on top of langchaingo.
//
// Generation runs against either an OpenAI-compatible chat API (Ollama,
// vLLM, LocalAI, OpenAI) or Anthropic, selected by ai.Config.Backend.
// Embeddings always use an OpenAI-compatible embedding endpoint.
//
// Dialogue turns ask the model for a JSON object of the form
//
//	{"reply": "...", "consensus_point": {"claim": "...", "evidence_level": "...", "sources": "..."}}
//
// Malformed JSON is repaired where possible and retried. When the model
// never produces parseable JSON the raw text is used as the reply and an
// inline [CONSENSUS_POINT]claim|level|sources[/CONSENSUS_POINT] marker,
// if present, becomes the proposed point.
package langchain
