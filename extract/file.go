package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SupportedFormats lists the file extensions ExtractFile accepts.
var SupportedFormats = []string{".txt", ".md"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractFile decodes the content of a named file. The extension selects the
// decoder; anything outside SupportedFormats fails with ErrUnsupportedFormat.
func ExtractFile(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md":
		return decodeText(data)
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedFormats, ", "))
}

// decodeText reads UTF-8, with or without a byte order mark, and falls back
// to Latin-1 for anything that is not valid UTF-8.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}
