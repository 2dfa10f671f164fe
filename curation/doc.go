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


// Package curation implements the human-gated curation workflow.
//
// A curation session follows one of two pipelines:
//
//	dialogue: Idle -> TopicActive -> Discussing -> ArticleReady -> Committed
//	upload:   Idle -> Collecting -> Transforming -> AwaitingApproval -> Committed
//
// In the dialogue pipeline the operator discusses a topic with the text
// generator, which may propose consensus points. Only points the operator
// confirms are used to synthesize the article, and only the operator's commit
// writes the article to the knowledge store. The upload pipeline summarizes
// already extracted source text and commits the summary once approved.
//
// The Orchestrator exposes one method per client action. Every method takes a
// session id, returns a full Snapshot on success, and reports failures with
// the sentinel errors in this package (see KindOf). Failed actions never change
// session state. Calls to the generator and the store run on a worker pool
// under a timeout; while one is in flight the session is busy and any other
// action on it fails with ErrSessionBusy.
package curation
