// Package oracle is the LLM boundary of the analysis pipeline. It owns
// prompt construction and defensive response parsing; everything it returns
// is advisory — the scorer recomputes tiers and confidence before anything
// is persisted.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
	"github.com/dynamic-campus/leadgen-cli/pkg/anthropic"
)

// Classification is the oracle's verdict on one institution cluster.
type Classification struct {
	Found              bool           `json:"found"`
	LeadType           model.LeadType `json:"lead_type"`
	OpportunitySummary string         `json:"opportunity_summary"`
	Confidence         float64        `json:"confidence"`
	Reason             string         `json:"reason"`
}

// TrendSummary is the oracle's sector-wide read when no institution-specific
// lead emerged.
type TrendSummary struct {
	Found        bool    `json:"found"`
	TrendSummary string  `json:"trend_summary"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

// Classifier is the labeling oracle consumed by the pipeline.
type Classifier interface {
	ExtractInstitutions(ctx context.Context, text string) ([]string, error)
	ClassifyInstitution(ctx context.Context, institution string, items []model.EvidenceItem) (*Classification, error)
	SummarizeSectorTrend(ctx context.Context, items []model.EvidenceItem) (*TrendSummary, error)
}

// Options configures the Anthropic-backed classifier.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	// CallTimeout bounds each oracle call. Non-response past the bound is
	// treated by callers as "no lead" for that institution, never retried.
	CallTimeout time.Duration
}

const (
	defaultModel       = "claude-haiku-4-5-20251001"
	defaultMaxTokens   = 1024
	defaultCallTimeout = 45 * time.Second
)

type classifier struct {
	client anthropic.Client
	opts   Options
}

// New returns a Classifier backed by the Anthropic API.
func New(client anthropic.Client, opts Options) Classifier {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &classifier{client: client, opts: opts}
}

const extractSystemPrompt = `You identify higher-education institutions mentioned in news text. Respond with a valid JSON object: {"institutions": ["<name>", ...]}. List only specific named institutions (universities, colleges, community college districts, university systems). Never list generic terms like "universities" or "colleges". Return an empty list if no specific institution is named.`

const classifySystemPrompt = `You analyze evidence about ONE higher-education institution for an IT consulting firm. Use ONLY the evidence provided; never infer opportunities from general industry knowledge. Respond with a valid JSON object, either:
{"found": true, "lead_type": "<one of: ERP, IT Leadership, Cybersecurity, AI/Data, LMS/CRM, Analytics>", "opportunity_summary": "<2-3 sentences>", "confidence": <0.0-1.0>}
or
{"found": false, "reason": "<short reason>"}`

const trendSystemPrompt = `You summarize sector-wide higher-education technology trends from a day's evidence for an IT consulting firm. Respond with a valid JSON object, either:
{"found": true, "trend_summary": "<2-3 sentences on the strongest trend>", "confidence": <0.0-1.0>}
or
{"found": false, "reason": "<short reason>"}`

func (c *classifier) ExtractInstitutions(ctx context.Context, text string) ([]string, error) {
	resp, err := c.call(ctx, extractSystemPrompt, "Text:\n"+text, "extract")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Institutions []string `json:"institutions"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		return nil, eris.Wrap(err, "oracle: parse institution list")
	}

	out := make([]string, 0, len(parsed.Institutions))
	for _, name := range parsed.Institutions {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

func (c *classifier) ClassifyInstitution(ctx context.Context, institution string, items []model.EvidenceItem) (*Classification, error) {
	prompt := fmt.Sprintf("Institution: %s\n\nEvidence:\n%s", institution, renderEvidence(items))

	resp, err := c.call(ctx, classifySystemPrompt, prompt, "classify")
	if err != nil {
		return nil, err
	}

	var parsed Classification
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		// malformed output is a no-lead verdict, not an error
		zap.L().Warn("oracle: unparseable classification, treating as no lead",
			zap.String("institution", institution),
			zap.Error(err),
		)
		return &Classification{Found: false, Reason: "unparseable oracle response"}, nil
	}

	if parsed.Found && !validLeadType(parsed.LeadType) {
		zap.L().Warn("oracle: unrecognized lead type, treating as no lead",
			zap.String("institution", institution),
			zap.String("lead_type", string(parsed.LeadType)),
		)
		return &Classification{Found: false, Reason: "unrecognized lead type"}, nil
	}

	parsed.Confidence = clamp01(parsed.Confidence)
	return &parsed, nil
}

func (c *classifier) SummarizeSectorTrend(ctx context.Context, items []model.EvidenceItem) (*TrendSummary, error) {
	resp, err := c.call(ctx, trendSystemPrompt, "Evidence:\n"+renderEvidence(items), "trend")
	if err != nil {
		return nil, err
	}

	var parsed TrendSummary
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		zap.L().Warn("oracle: unparseable trend summary, treating as no trend", zap.Error(err))
		return &TrendSummary{Found: false, Reason: "unparseable oracle response"}, nil
	}

	parsed.Confidence = clamp01(parsed.Confidence)
	return &parsed, nil
}

func (c *classifier) call(ctx context.Context, system, user, phase string) (*anthropic.MessageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	req := anthropic.MessageRequest{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	}
	if c.opts.Temperature > 0 {
		req.Temperature = &c.opts.Temperature
	}

	resp, err := c.client.CreateMessage(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "oracle: %s call", phase)
	}
	resp.Usage.LogCost(c.opts.Model, phase)
	return resp, nil
}

// renderEvidence flattens evidence items into a numbered plain-text block.
// Summaries are truncated so a fat cluster cannot blow the token budget.
const maxSummaryChars = 1500

func renderEvidence(items []model.EvidenceItem) string {
	var b strings.Builder
	for i, item := range items {
		summary := item.Summary
		if len(summary) > maxSummaryChars {
			summary = summary[:maxSummaryChars]
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n%s\n\n", i+1, item.OriginKind, item.Title, summary)
	}
	return b.String()
}

// validLeadType accepts only the lead types an institution classification may
// carry. Signal is excluded: it is reserved for fallback records and must not
// come back from a per-institution verdict.
func validLeadType(lt model.LeadType) bool {
	if lt == model.LeadTypeSignal {
		return false
	}
	for _, known := range model.AllLeadTypes() {
		if lt == known {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
