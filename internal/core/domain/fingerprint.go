package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultContextSize is the default excerpt length in words.
const DefaultContextSize = 500

// Fingerprint returns the hex-encoded SHA-256 digest of text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ExtractContext returns a window of at most targetSize words centred on the
// middle of text. Texts that already fit are returned unchanged.
//
// The question is not used: the window is positional, so the excerpt is not
// guaranteed to be the part of the document the question is about.
func ExtractContext(text, _ string, targetSize int) string {
	if text == "" {
		return ""
	}
	if targetSize <= 0 {
		targetSize = DefaultContextSize
	}

	words := strings.Fields(text)
	if len(words) <= targetSize {
		return text
	}

	start := max(0, len(words)/2-targetSize/2)
	end := min(len(words), start+targetSize)
	return strings.Join(words[start:end], " ")
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
