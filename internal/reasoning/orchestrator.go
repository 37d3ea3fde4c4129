// Package reasoning drives the streamed AI decision call: prompt assembly,
// the model fallback cascade, thought sanitization and schema validation of
// the terminal JSON decision.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/islatechai-lang/cryptoomind/models"
)

// Decision confidence bounds. Whatever the model claims is pulled into this
// range after validation.
const (
	ConfidenceMin = 80
	ConfidenceMax = 99
)

// ErrNoDecision reports that every configured model failed. Callers fall
// back to the aggregator-only result.
var ErrNoDecision = errors.New("reasoning: all models failed to produce a decision")

var validate = validator.New()

// fenceRE unwraps a decision buffer the model wrapped in a markdown block.
var fenceRE = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?```$")

// ThoughtSink receives sanitized thinking text as it streams.
type ThoughtSink interface {
	Thought(text string)
}

// ThoughtFunc adapts a plain function to ThoughtSink.
type ThoughtFunc func(text string)

func (f ThoughtFunc) Thought(text string) { f(text) }

// Orchestrator walks an ordered model list until one returns a decision
// that survives schema validation. Attempts are independent; nothing from a
// failed stream carries into the next.
type Orchestrator struct {
	stream         StreamClient
	models         []string
	attemptTimeout time.Duration
	logger         zerolog.Logger
}

// Options configures an Orchestrator.
type Options struct {
	Stream         StreamClient
	Models         []string
	AttemptTimeout time.Duration
}

func New(opts Options) *Orchestrator {
	modelList := opts.Models
	if len(modelList) == 0 {
		modelList = []string{"deepseek-reasoner", "deepseek-chat", "gpt-4o"}
	}
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &Orchestrator{
		stream:         opts.Stream,
		models:         modelList,
		attemptTimeout: timeout,
		logger:         log.With().Str("component", "reasoning").Logger(),
	}
}

// Decide runs the fallback cascade for one snapshot. Thought text is
// forwarded to sink as it arrives; the decision only returns once a stream
// completes and validates. Individual model failures stay internal: the
// caller sees either a decision with the model that produced it, or
// ErrNoDecision.
func (o *Orchestrator) Decide(ctx context.Context, snap *models.ReasoningSnapshot, sink ThoughtSink) (*models.ReasoningDecision, string, error) {
	prompt := BuildPrompt(snap)

	for _, model := range o.models {
		decision, err := o.attempt(ctx, model, prompt, sink)
		if err == nil {
			o.logger.Info().Str("model", model).Str("direction", decision.Direction).
				Float64("confidence", decision.Confidence).Msg("Decision accepted")
			return decision, model, nil
		}

		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("reasoning cancelled: %w", ctx.Err())
		}
		o.logger.Warn().Err(err).Str("model", model).Msg("Model attempt failed, trying next")
	}

	return nil, "", ErrNoDecision
}

func (o *Orchestrator) attempt(ctx context.Context, model, prompt string, sink ThoughtSink) (*models.ReasoningDecision, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	var content strings.Builder
	var thoughts strings.Builder
	sanitizer := &Sanitizer{}

	forward := func(text string) {
		if text == "" {
			return
		}
		thoughts.WriteString(text)
		if sink != nil {
			sink.Thought(text)
		}
	}

	err := o.stream.Stream(attemptCtx, model, prompt, func(chunk Chunk) {
		if chunk.Thought {
			forward(sanitizer.Clean(chunk.Text))
			return
		}
		content.WriteString(chunk.Text)
	})
	if err != nil {
		return nil, err
	}
	forward(sanitizer.Flush())

	decision, err := ParseDecision(content.String())
	if err != nil {
		return nil, err
	}

	if t := strings.TrimSpace(thoughts.String()); t != "" {
		decision.ThinkingProcess = t
	}
	return decision, nil
}

// ParseDecision validates a raw content buffer into a decision. The
// confidence clamp runs after validation, so an out-of-range confidence
// never fails a decision, it just gets pulled into band.
func ParseDecision(raw string) (*models.ReasoningDecision, error) {
	response := strings.TrimSpace(raw)
	if matches := fenceRE.FindStringSubmatch(response); len(matches) > 1 {
		response = strings.TrimSpace(matches[1])
	}
	if !strings.HasPrefix(response, "{") {
		start := strings.Index(response, "{")
		end := strings.LastIndex(response, "}")
		if start >= 0 && end > start {
			response = response[start : end+1]
		}
	}

	var decision models.ReasoningDecision
	if err := json.Unmarshal([]byte(response), &decision); err != nil {
		return nil, fmt.Errorf("parsing decision JSON: %w", err)
	}

	decision.Direction = strings.ToUpper(decision.Direction)

	if err := validate.Struct(&decision); err != nil {
		return nil, fmt.Errorf("decision failed schema validation: %w", err)
	}

	decision.Confidence = clampConfidence(decision.Confidence)
	return &decision, nil
}

func clampConfidence(v float64) float64 {
	if v < ConfidenceMin {
		return ConfidenceMin
	}
	if v > ConfidenceMax {
		return ConfidenceMax
	}
	return v
}
