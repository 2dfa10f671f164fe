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


// Package ai provides abstractions for the AI services the curator depends on.
//
// The curation core never talks to a model directly. It depends on the
// interfaces declared here:
//
//   - TextGenerator: summarizes extracted text, runs one dialogue turn,
//     and synthesizes articles from confirmed consensus points
//   - Embedder: turns text into vectors for the knowledge store
//   - AIProvider: aggregates both for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/langchain: production implementation over langchaingo, supporting
//     OpenAI-compatible servers and Anthropic for generation
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/langchain return interface types. Mock
// constructors return concrete types so tests can inject behavior and read
// call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithGenerationModel("qwen2.5:7b"))
//	provider, err := langchain.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	summary, err := provider.Generator().Summarize(ctx, text, "paper.md")
package ai
