package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"fat", "primary", "fuel", "ketosis"},
		tokenize("Fat is the primary fuel in ketosis."))
	assert.Empty(t, tokenize("the a an of"))
	assert.Equal(t, []string{"omega-3"}, tokenize("(omega-3)"))
}

func TestMatchesVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		want    bool
	}{
		{"all words present", "Ketosis relies on fat oxidation.", "fat ketosis", true},
		{"case insensitive", "KETOSIS relies on FAT", "fat, ketosis?", true},
		{"missing word", "Ketosis relies on fat", "fat sugar", false},
		{"stop words ignored", "Ketosis relies on fat", "the fat of ketosis", true},
		{"only stop words", "Ketosis relies on fat", "the and of", false},
		{"plural is not verbatim", "Saturated fats", "fat", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesVerbatim(tt.content, tt.query))
		})
	}
}
