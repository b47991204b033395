package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/helpcomp/statement-categorizer/statement"
	"github.com/rs/zerolog/log"
)

// ProcessStatement parses a statement file, categorizes every transaction,
// and prints the results as JSON. With --learn, results at or above the
// learn-confidence threshold are written back to the mappings store so the
// next run resolves them in Tier 1 without touching the AI.
func (a *App) ProcessStatement(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	parsed, err := statement.Parse(string(raw))
	if err != nil {
		return err
	}

	log.Info().
		Str("statement", path).
		Int("transactions", len(parsed.Transactions)).
		Int("skipped", parsed.SkippedRows).
		Str("dateColumn", parsed.DetectedColumns.Date).
		Str("descriptionColumn", parsed.DetectedColumns.Description).
		Msg("📜 Parsed statement")

	mapped, err := a.loadMappings()
	if err != nil {
		return err
	}

	output := statementResponse{
		DetectedColumns: parsed.DetectedColumns,
		SkippedRows:     parsed.SkippedRows,
	}

	for _, txn := range parsed.Transactions {
		result := a.engine.Categorize(ctx, txn, mapped)
		output.Transactions = append(output.Transactions, CategorizedTransaction{
			Date:          txn.Date,
			Description:   txn.Description,
			Amount:        txn.Amount,
			Category:      result.Category,
			Subcategory:   result.Subcategory,
			Confidence:    result.Confidence,
			Reasoning:     result.Reasoning,
			NeedsHomework: result.Confidence < homeworkThreshold,
		})

		if result.Confidence < homeworkThreshold {
			log.Warn().
				Str("description", txn.Description).
				Float64("confidence", result.Confidence).
				Msg("Needs review")
		}

		if cli.Learn && result.Confidence >= cli.LearnConfidence {
			a.learn(txn, result)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// learn persists a confident result keyed by the lowercased description.
// This is deliberately caller policy, not engine behaviour: the engine only
// ever reads mappings.
func (a *App) learn(txn statement.Transaction, result categorize.Result) {
	pattern := strings.ToLower(strings.TrimSpace(txn.Description))
	if pattern == "" {
		return
	}

	err := a.store.Upsert(a.owner, categorize.Mapping{
		MerchantPattern: pattern,
		Category:        result.Category,
		Subcategory:     result.Subcategory,
	})
	if err != nil {
		categorize.ProgramErrors.Add(1)
		log.Error().Err(err).Str("pattern", pattern).Msg("Could not save learned mapping")
		return
	}
	log.Debug().
		Str("pattern", pattern).
		Str("category", result.Category).
		Str("subcategory", result.Subcategory).
		Msg("Learned mapping")
}
