package langchain

import (
	"regexp"
	"strings"
)

var consensusMarker = regexp.MustCompile(`(?s)\[CONSENSUS_POINT\](.*?)\|(.*?)\|(.*?)\[/CONSENSUS_POINT\]`)

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string (json, markdown, ...)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractMarker finds an inline consensus marker. It returns the text with the
// marker removed and the marker's claim, evidence level and sources.
func extractMarker(text string) (clean string, claim, level, sources string, found bool) {
	m := consensusMarker.FindStringSubmatchIndex(text)
	if m == nil {
		return text, "", "", "", false
	}
	claim = strings.TrimSpace(text[m[2]:m[3]])
	level = strings.TrimSpace(text[m[4]:m[5]])
	sources = strings.TrimSpace(text[m[6]:m[7]])
	clean = strings.TrimSpace(text[:m[0]] + text[m[1]:])
	return clean, claim, level, sources, true
}

// truncateRunes shortens s to at most n runes, appending an ellipsis when cut.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
