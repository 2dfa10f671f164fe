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


package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateDocument validates a KnowledgeDocument according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Content must not be blank
//
// NOT validated:
//   - Vector (empty until embedded)
//   - Metadata (free-form)
func ValidateDocument(doc *KnowledgeDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	return nil
}

// ValidateConsensusPoint requires a non-blank claim.
func ValidateConsensusPoint(p *ConsensusPoint) error {
	if p == nil {
		return fmt.Errorf("%w: point is nil", ErrInvalidConsensusPoint)
	}
	if strings.TrimSpace(p.Claim) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConsensusPoint, ErrEmptyClaim)
	}
	return nil
}

// ValidateTurn requires a known role and non-blank text.
func ValidateTurn(t Turn) error {
	if err := ValidateRole(t.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyContent)
	}
	return nil
}

// ValidateRole validates that a Role has a known value.
func ValidateRole(r Role) error {
	switch r {
	case RoleOperator, RoleAssistant, RoleSystem:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidRole, r)
}

// ValidateStage checks that stage belongs to pipeline.
func ValidateStage(p Pipeline, s Stage) error {
	if !slices.Contains(p.Stages(), s) {
		return fmt.Errorf("%w: %q is not a %s stage", ErrInvalidStage, s, p)
	}
	return nil
}
