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


// Package knowledge manages the permanent knowledge base of curated documents.
//
// The Base type embeds document content and stores it in a DocumentRepository.
// It is the store the curation workflow commits to, and it also provides the
// plain document maintenance surface:
//   - Create, update, get, list and delete documents
//   - Semantic query with a verbatim keyword boost
//   - Per-category statistics
//   - Related-document lookup used to ground dialogue turns
package knowledge
