package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/timeline"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// TaskSummary is the minimal task info sent to Claude for dependency inference.
type TaskSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start,omitempty"`
	Due      string `json:"due,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// DepEdge is a single inferred dependency.
type DepEdge struct {
	BlockedID string `json:"blocked_id"` // task that is blocked
	BlockerID string `json:"blocker_id"` // task that must finish first
	Reason    string `json:"reason"`
}

// InferDepsResult holds the full response from Claude.
type InferDepsResult struct {
	Edges   []DepEdge `json:"edges"`
	Summary string    `json:"summary"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
// model defaults to Claude Sonnet.
func NewClient(apiKey, model string, maxTokens int64) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.ModelClaudeSonnet4_6
	if model != "" {
		m = anthropic.Model(model)
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{inner: inner, model: m, maxTokens: maxTokens}, nil
}

// Summaries converts tasks to the form sent in the prompt.
func Summaries(tasks []task.Task) []TaskSummary {
	out := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		s := TaskSummary{ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority}
		if t.StartDate != nil {
			s.Start = t.StartDate.String()
		}
		if t.DueDate != nil {
			s.Due = t.DueDate.String()
		}
		out = append(out, s)
	}
	return out
}

const inferDepsPrompt = `You are an expert project planner. Given a list of scheduled tasks, infer dependency edges between them.

Rules:
- Only add a dependency when there is a strong causal reason (task B cannot start until task A is complete).
- Prefer fewer edges — do not add transitive or speculative dependencies.
- Do not create cycles.
- Only use task IDs from the provided list.
- A task cannot depend on itself.
- Dates are hints only: an edge may push the blocked task later.

Return your answer as JSON with this exact structure:
{
  "edges": [
    {"blocked_id": "<task that is blocked>", "blocker_id": "<task that must finish first>", "reason": "<short explanation>"}
  ],
  "summary": "<one paragraph summary of the dependency structure>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the tasks:
`

// buildPrompt constructs the full prompt for dependency inference.
func buildPrompt(tasks []TaskSummary) (string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return inferDepsPrompt + string(data), nil
}

// InferDeps calls the Claude API to infer task dependencies.
func (c *Client) InferDeps(ctx context.Context, tasks []TaskSummary) (*InferDepsResult, error) {
	prompt, err := buildPrompt(tasks)
	if err != nil {
		return nil, err
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}

	// Extract text from response
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return ParseResult([]byte(text))
}

// ParseResult decodes an inference response, tolerating markdown fences.
func ParseResult(data []byte) (*InferDepsResult, error) {
	text := stripJSONFences(string(data))

	var result InferDepsResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return &result, nil
}

// Linker creates dependencies. *timeline.Timeline satisfies it.
type Linker interface {
	CreateDependency(sourceID, targetID string) ([]task.Task, error)
}

// Rejection is an inferred edge the timeline refused.
type Rejection struct {
	Edge timeline.Edge
	Err  error
}

// ApplyResult reports what Apply did.
type ApplyResult struct {
	Added    []timeline.Edge
	Rejected []Rejection
	Moved    map[string]bool
}

// Apply adds the inferred edges one at a time, in order. Edges that would be
// self-referential, duplicated or cyclic are rejected by the linker and
// reported; the rest still apply.
func Apply(l Linker, res *InferDepsResult) ApplyResult {
	out := ApplyResult{Moved: make(map[string]bool)}
	for _, e := range res.Edges {
		edge := timeline.Edge{SourceID: e.BlockerID, TargetID: e.BlockedID}
		changed, err := l.CreateDependency(edge.SourceID, edge.TargetID)
		if err != nil {
			out.Rejected = append(out.Rejected, Rejection{Edge: edge, Err: err})
			continue
		}
		out.Added = append(out.Added, edge)
		for _, t := range changed {
			out.Moved[t.ID] = true
		}
	}
	return out
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	// Remove ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		// Strip opening fence line
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
