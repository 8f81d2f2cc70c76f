// Package aiparse turns free-form task descriptions into structured
// task fields by way of a hosted language model. The model is asked
// for strict JSON; everything it returns is re-validated here before
// a caller sees it.
package aiparse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Result is the normalized parse output. DueDate/DueTime are empty
// when absent; TimeSource reports whether the time came from the
// user, was guessed by the model, or is missing.
type Result struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	DueDate    string `json:"dueDate"`
	DueTime    string `json:"dueTime"`
	Reminder   bool   `json:"reminder"`
	Urgent     bool   `json:"urgent"`
	Important  bool   `json:"important"`
	TimeSource string `json:"timeSource"`
}

// rawResult tolerates nulls and junk before normalization.
type rawResult struct {
	Title      string  `json:"title"`
	Notes      string  `json:"notes"`
	DueDate    *string `json:"dueDate"`
	DueTime    *string `json:"dueTime"`
	Reminder   bool    `json:"reminder"`
	Urgent     bool    `json:"urgent"`
	Important  bool    `json:"important"`
	TimeSource string  `json:"timeSource"`
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ErrEmptyInput is returned when there is nothing to parse.
var ErrEmptyInput = errors.New("missing text input")

const initialMaxTokens = 600
const retryMaxTokens = 1000

// completer is the slice of the model API the parser uses; the
// truncated flag mirrors a stop_reason of max_tokens.
type completer interface {
	complete(ctx context.Context, system, user string, maxTokens int64) (text string, truncated bool, err error)
}

// Parser sends task text to the model and normalizes the reply.
type Parser struct {
	c         completer
	maxTokens int64
}

// New builds a Parser talking to the Anthropic API. The client reads
// ANTHROPIC_API_KEY from the environment. maxTokens below the default
// is raised to it.
func New(model string, maxTokens int) *Parser {
	mt := int64(maxTokens)
	if mt < initialMaxTokens {
		mt = initialMaxTokens
	}
	return &Parser{
		c:         &anthropicCompleter{client: anthropic.NewClient(), model: anthropic.Model(model)},
		maxTokens: mt,
	}
}

// Parse asks the model to structure the given text. today and
// timezone anchor relative dates ("friday", "tomorrow") in the
// user's calendar. One retry with a larger budget is made when the
// reply was cut off mid-JSON.
func (p *Parser) Parse(ctx context.Context, text, today, timezone string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyInput
	}

	system := systemPrompt(today, timezone)
	content, truncated, err := p.c.complete(ctx, system, text, p.maxTokens)
	if err != nil {
		return Result{}, fmt.Errorf("model request: %w", err)
	}
	if truncated {
		content, _, err = p.c.complete(ctx, system, text, retryMaxTokens)
		if err != nil {
			return Result{}, fmt.Errorf("model retry: %w", err)
		}
	}
	if content == "" {
		return Result{}, errors.New("no model response content")
	}

	raw, ok := decode(content)
	if !ok {
		return Result{}, errors.New("failed to parse model output")
	}
	return normalize(raw), nil
}

func systemPrompt(today, timezone string) string {
	if today == "" {
		today = "unknown"
	}
	if timezone == "" {
		timezone = "unknown"
	}
	return strings.Join([]string{
		"Return ONLY valid JSON.",
		"Fields: title, notes, dueDate (YYYY-MM-DD or null), dueTime (HH:mm or null), reminder, urgent, important, timeSource (explicit|guessed|none).",
		fmt.Sprintf("Today: %s; Timezone: %s.", today, timezone),
		"If weekday/relative date -> next valid date.",
		"If date but no time -> guess time and set timeSource=guessed.",
		"If explicit time -> timeSource=explicit.",
		"If no date -> dueDate/dueTime null, timeSource=none.",
		"Title short; notes optional.",
	}, "\n")
}

// decode parses the reply as JSON, salvaging the first {...} span
// when the model wrapped the object in prose.
func decode(content string) (rawResult, bool) {
	var raw rawResult
	if err := json.Unmarshal([]byte(content), &raw); err == nil {
		return raw, true
	}
	candidate, ok := firstJSONObject(content)
	if !ok {
		return rawResult{}, false
	}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return rawResult{}, false
	}
	return raw, true
}

func firstJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// normalize enforces the field invariants: a due time without a due
// date is dropped, and timeSource only reports explicit/guessed when
// both date and time survived validation.
func normalize(raw rawResult) Result {
	r := Result{
		Title:     strings.TrimSpace(raw.Title),
		Notes:     strings.TrimSpace(raw.Notes),
		Reminder:  raw.Reminder,
		Urgent:    raw.Urgent,
		Important: raw.Important,
	}
	if raw.DueDate != nil && dateRe.MatchString(*raw.DueDate) {
		r.DueDate = *raw.DueDate
	}
	if r.DueDate != "" && raw.DueTime != nil && timeRe.MatchString(*raw.DueTime) {
		r.DueTime = *raw.DueTime
	}

	source := raw.TimeSource
	if source != "explicit" && source != "guessed" {
		source = "none"
	}
	if r.DueDate == "" || r.DueTime == "" {
		source = "none"
	}
	r.TimeSource = source
	return r
}

type anthropicCompleter struct {
	client anthropic.Client
	model  anthropic.Model
}

func (a *anthropicCompleter) complete(ctx context.Context, system, user string, maxTokens int64) (string, bool, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), msg.StopReason == anthropic.StopReasonMaxTokens, nil
}
