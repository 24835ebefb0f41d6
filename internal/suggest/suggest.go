// Package suggest turns a task into a prompt for a text generation service
// and the service's free-text reply into a list of short subtasks.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/privacy"
)

// FailureMessage is the only text a caller ever sees for a failed request.
const FailureMessage = "failed to generate subtasks"

var (
	// ErrEmptyResponse means the service replied without usable text.
	ErrEmptyResponse = errors.New("empty response from text generation service")
	// ErrUpstream means the call to the service itself failed.
	ErrUpstream = errors.New("text generation service call failed")
)

// Error is returned by Client.Suggest for upstream failures. Its message
// is always FailureMessage; the underlying cause is only reachable through
// errors.Is / errors.As and the logs.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	return FailureMessage
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Generator is the external text generation service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `Break the following task into 3-5 smaller, actionable steps.
Return only a bulleted list without any additional text or formatting.
Each step should be concise (2-3 words max) and start with a verb.
Task: %s`

// BuildPrompt formats the instruction sent to the generator.
func BuildPrompt(title, description string) string {
	prompt := fmt.Sprintf(promptTemplate, title)
	if strings.TrimSpace(description) != "" {
		prompt += "\nDescription: " + description
	}
	return prompt
}

// bulletPrefix matches optional leading whitespace, one recognized bullet
// glyph (-, *, U+2022) and the whitespace after it.
var bulletPrefix = regexp.MustCompile(`^\s*[-*\x{2022}]\s*`)

// Normalize splits a reply into lines, strips one leading bullet per line,
// trims, and drops lines left empty. Order is preserved.
func Normalize(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Client bridges a task to a normalized list of subtasks.
type Client struct {
	gen    Generator
	logger *slog.Logger
}

func NewClient(gen Generator, logger *slog.Logger) *Client {
	return &Client{gen: gen, logger: logger}
}

// Suggest asks the generator for subtasks. A single attempt is made.
// Private blocks in the description are never sent.
func (c *Client) Suggest(ctx context.Context, title, description string) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, models.ErrTitleRequired
	}
	if privacy.HasPrivateContent(description) {
		description = privacy.StripPrivateTags(description)
	}

	text, err := c.gen.Generate(ctx, BuildPrompt(title, description))
	if err != nil {
		c.logger.Error("subtask generation failed", "error", err, "title", title)
		return nil, &Error{Kind: ErrUpstream, Cause: err}
	}

	subtasks := Normalize(text)
	if len(subtasks) == 0 {
		c.logger.Warn("subtask generation returned no usable text", "title", title, "raw_len", len(text))
		return nil, &Error{Kind: ErrEmptyResponse}
	}

	c.logger.Debug("subtasks generated", "title", title, "count", len(subtasks))
	return subtasks, nil
}
