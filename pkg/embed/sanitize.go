package embed

import "strings"

// MaxContentLength is the character budget for a single embedding input.
// Chosen to stay safely under the upstream models' token limits (roughly
// 8191 tokens for the OpenAI embedding family) and to bound request cost.
const MaxContentLength = 8000

// Sanitize normalizes text before it is sent to an embedding provider.
//
// Newline runs and repeated whitespace are collapsed to single spaces, the
// result is trimmed, and anything past MaxContentLength characters is cut.
// An empty return value means the input had no embeddable content; callers
// must treat that as a validation failure rather than embedding it.
//
// Example:
//
//	clean := embed.Sanitize("flight \n\n to   Lisbon\t")
//	// clean == "flight to Lisbon"
func Sanitize(content string) string {
	// Fields splits on any run of Unicode whitespace, which collapses
	// newlines, tabs and repeated spaces in one pass and trims both ends.
	clean := strings.Join(strings.Fields(content), " ")

	if len(clean) > MaxContentLength {
		runes := []rune(clean)
		if len(runes) > MaxContentLength {
			clean = string(runes[:MaxContentLength])
		}
	}

	return clean
}
