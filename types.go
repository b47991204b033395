package main

import (
	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/helpcomp/statement-categorizer/config"
	"github.com/helpcomp/statement-categorizer/mappings"
	"github.com/shopspring/decimal"
)

// homeworkThreshold is the confidence below which a categorization is
// surfaced for the user to review. The engine only reports the number;
// flagging is this caller's job.
const homeworkThreshold = 0.7

// App wires the engine to the mappings store for the HTTP handlers and the
// one-shot processor.
type App struct {
	engine *categorize.Engine
	store  mappings.Store
	config *config.MasterConfig
	owner  string
}

// CategorizedResult is the caller-facing categorization of one transaction.
type CategorizedResult struct {
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning,omitempty"`
	NeedsHomework bool    `json:"needs_homework"`
}

// CategorizedTransaction pairs a parsed transaction with its result for
// one-shot output.
type CategorizedTransaction struct {
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory"`
	Confidence    float64         `json:"confidence"`
	Reasoning     string          `json:"reasoning,omitempty"`
	NeedsHomework bool            `json:"needs_homework"`
}

func toCategorizedResult(r categorize.Result) CategorizedResult {
	return CategorizedResult{
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Confidence:    r.Confidence,
		Reasoning:     r.Reasoning,
		NeedsHomework: r.Confidence < homeworkThreshold,
	}
}
