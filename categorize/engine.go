// Package categorize assigns a parent category, subcategory, and confidence
// score to parsed transactions. Three strategies run in strict priority
// order: the caller's learned merchant mappings, the static merchant rule
// dictionary, then a text-completion model for whatever is left.
package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/helpcomp/statement-categorizer/statement"
	"github.com/helpcomp/statement-categorizer/taxonomy"
	"github.com/rs/zerolog/log"
)

// Counters scraped by the prom exporter. Atomic because HTTP handlers
// categorize concurrently.
var (
	APICalls      atomic.Uint64
	APIErrors     atomic.Uint64
	LearnedHits   atomic.Uint64
	RuleHits      atomic.Uint64
	FallbackHits  atomic.Uint64
	ProgramErrors atomic.Uint64
)

// Fixed confidence values for each resolution path.
const (
	learnedConfidence       = 0.95
	noCredentialConfidence  = 0.3
	remoteFailureConfidence = 0.2
)

// Mapping is a previously confirmed merchant→category assignment owned by
// the caller. The engine reads it for one call and never mutates or caches
// it. Subcategory may be empty, in which case the category doubles as the
// subcategory.
type Mapping struct {
	MerchantPattern string `json:"merchant_pattern" yaml:"merchant_pattern"`
	Category        string `json:"category" yaml:"category"`
	Subcategory     string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
}

// Result is one categorization decision.
type Result struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Completer is the injected remote text-completion capability. A nil
// Completer means the AI tier is not configured, which is a supported state,
// not an error.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine resolves transactions against the rule table and an optional
// Completer. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	completer Completer
	rules     []Rule
}

func New(completer Completer) *Engine {
	return &Engine{
		completer: completer,
		rules:     merchantRules,
	}
}

// Categorize resolves a single transaction. Learned mappings are
// authoritative: they represent explicit user corrections, so they override
// both the rule table and the model.
func (e *Engine) Categorize(ctx context.Context, txn statement.Transaction, mappings []Mapping) Result {
	normalizedDesc := strings.ToLower(strings.TrimSpace(txn.Description))

	// Tier 1 - the user's saved mappings
	for _, mapping := range mappings {
		if !strings.Contains(normalizedDesc, strings.ToLower(mapping.MerchantPattern)) {
			continue
		}
		category := taxonomy.Normalise(mapping.Category)
		subcategory := category
		if mapping.Subcategory != "" {
			subcategory = taxonomy.Normalise(mapping.Subcategory)
		}
		LearnedHits.Add(1)
		return Result{
			Category:    category,
			Subcategory: subcategory,
			Confidence:  learnedConfidence,
			Reasoning:   fmt.Sprintf("Matched saved mapping: %q", mapping.MerchantPattern),
		}
	}

	// Tier 2 - the built-in merchant dictionary
	if rule, ok := matchRule(txn.Description); ok {
		category := taxonomy.ParentOf(rule.Subcategory)
		RuleHits.Add(1)
		return Result{
			Category:    category,
			Subcategory: rule.Subcategory,
			Confidence:  rule.Confidence,
			Reasoning:   fmt.Sprintf("Known merchant rule: %q → %s/%s", rule.Pattern, category, rule.Subcategory),
		}
	}

	// Tier 3 - remote text completion
	if e.completer == nil {
		FallbackHits.Add(1)
		return Result{
			Category:    taxonomy.FallbackParent,
			Subcategory: "Shopping",
			Confidence:  noCredentialConfidence,
			Reasoning:   "No AI categorization available (API key missing)",
		}
	}

	return e.complete(ctx, txn)
}

// complete runs the remote tier. Every failure mode - transport error,
// missing JSON, bad JSON - is absorbed into a low-confidence default so the
// caller never sees an error from categorization.
func (e *Engine) complete(ctx context.Context, txn statement.Transaction) Result {
	prompt := fmt.Sprintf("%s\n\nTransaction to categorize:\nDescription: %s\nAmount: £%s\nDate: %s",
		categoryPrompt, txn.Description, txn.Amount.StringFixed(2), txn.Date)

	APICalls.Add(1)
	text, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return e.remoteFailure(txn, err)
	}

	span, ok := extractJSON(text)
	if !ok {
		return e.remoteFailure(txn, fmt.Errorf("no JSON object in model response"))
	}

	var result Result
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		return e.remoteFailure(txn, fmt.Errorf("invalid JSON from model: %w", err))
	}

	result.Category = taxonomy.Normalise(result.Category)
	if result.Subcategory == "" {
		result.Subcategory = result.Category
	} else {
		result.Subcategory = taxonomy.Normalise(result.Subcategory)
		// The model occasionally pairs a subcategory with the wrong parent;
		// the subcategory is the more trustworthy of the two.
		if taxonomy.IsSubcategory(result.Subcategory) {
			result.Category = taxonomy.ParentOf(result.Subcategory)
		}
	}

	log.Info().
		Str("description", txn.Description).
		Str("category", result.Category).
		Str("subcategory", result.Subcategory).
		Float64("confidence", result.Confidence).
		Msg("🤖 Model categorized transaction")

	return result
}

func (e *Engine) remoteFailure(txn statement.Transaction, err error) Result {
	APIErrors.Add(1)
	log.Error().Err(err).Str("description", txn.Description).Msg("AI categorization failed")
	return Result{
		Category:    taxonomy.FallbackParent,
		Subcategory: "Shopping",
		Confidence:  remoteFailureConfidence,
		Reasoning:   fmt.Sprintf("AI error: %s", err),
	}
}

// Key builds the composite result key for a transaction. Two transactions
// sharing a date and description collide, and the later result wins; callers
// relying on batch output should be aware of the overwrite.
func Key(txn statement.Transaction) string {
	return txn.Date + "-" + txn.Description
}

// CategorizeAll resolves a batch one transaction at a time. Sequential on
// purpose: the remote tier is rate limited, and the loop is the backpressure.
func (e *Engine) CategorizeAll(ctx context.Context, txns []statement.Transaction, mappings []Mapping) map[string]Result {
	results := make(map[string]Result, len(txns))
	for _, txn := range txns {
		results[Key(txn)] = e.Categorize(ctx, txn, mappings)
	}
	return results
}

// extractJSON pulls the first top-level {...} span out of model output that
// may be wrapped in prose or markdown fencing.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
