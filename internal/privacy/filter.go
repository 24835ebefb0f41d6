// Package privacy keeps marked text inside the process.
package privacy

import (
	"regexp"
	"strings"
)

// privateTagRegex matches <private>...</private> blocks (non-greedy, dotall).
var privateTagRegex = regexp.MustCompile(`(?s)<private>.*?</private>`)

// StripPrivateTags removes all <private>...</private> blocks from text
// that leaves the process, such as a prompt for the text generation service.
func StripPrivateTags(content string) string {
	return strings.TrimSpace(privateTagRegex.ReplaceAllString(content, ""))
}

// HasPrivateContent reports whether content carries at least one block.
func HasPrivateContent(content string) bool {
	return privateTagRegex.MatchString(content)
}
