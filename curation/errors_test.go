package curation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	upstream := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"empty input", fmt.Errorf("%w: topic is required", ErrEmptyInput), KindEmptyInput},
		{"invalid transition", invalidTransition("commit", "dialogue", "idle"), KindInvalidTransition},
		{"not found", fmt.Errorf("%w: consensus point 99", ErrNotFound), KindNotFound},
		{"generation failed wrapping upstream", fmt.Errorf("%w: %w", ErrGenerationFailed, upstream), KindGenerationFailed},
		{"store write failed", fmt.Errorf("%w: %w", ErrStoreWriteFailed, upstream), KindStoreWriteFailed},
		{"session busy", ErrSessionBusy, KindSessionBusy},
		{"foreign error", upstream, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := invalidTransition("commit", "dialogue", "topic_active")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "cannot commit in dialogue stage topic_active")
}
