package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/helpcomp/statement-categorizer/httperror"
	"github.com/helpcomp/statement-categorizer/statement"
	"github.com/helpcomp/statement-categorizer/taxonomy"
	"github.com/rs/zerolog/log"
)

// loadMappings merges the config file's seed mappings with the owner's
// stored mappings. Seeds come first so site-wide overrides win the
// first-match scan.
func (a *App) loadMappings() ([]categorize.Mapping, error) {
	stored, err := a.store.List(a.owner)
	if err != nil {
		return nil, err
	}
	return append(append([]categorize.Mapping{}, a.config.SeedMappings...), stored...), nil
}

type categorizeRequest struct {
	Transactions []statement.Transaction `json:"transactions"`
}

type categorizeResponse struct {
	Categorizations map[string]CategorizedResult `json:"categorizations"`
}

// handleCategorize categorizes a JSON list of already-parsed transactions.
// Results are keyed by date-description; duplicate keys overwrite.
func (a *App) handleCategorize(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		httperror.Send(w, req, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var body categorizeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		httperror.Send(w, req, http.StatusBadRequest, fmt.Sprintf("Could not parse request body: %s", err))
		return
	}
	if len(body.Transactions) == 0 {
		httperror.Send(w, req, http.StatusBadRequest, "Invalid transactions array")
		return
	}

	mapped, err := a.loadMappings()
	if err != nil {
		categorize.ProgramErrors.Add(1)
		httperror.Send(w, req, http.StatusInternalServerError, fmt.Sprintf("Could not load mappings: %s", err))
		return
	}

	log.Info().
		Str("owner", a.owner).
		Int("transactions", len(body.Transactions)).
		Msg("Categorizing transactions")

	results := a.engine.CategorizeAll(req.Context(), body.Transactions, mapped)

	resp := categorizeResponse{Categorizations: make(map[string]CategorizedResult, len(results))}
	for key, result := range results {
		resp.Categorizations[key] = toCategorizedResult(result)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Could not encode categorizations")
	}
}

type statementResponse struct {
	Transactions    []CategorizedTransaction  `json:"transactions"`
	DetectedColumns statement.DetectedColumns `json:"detected_columns"`
	SkippedRows     int                       `json:"skipped_rows"`
}

// handleStatements accepts a raw CSV statement body, parses it, and
// categorizes every transaction in one shot.
func (a *App) handleStatements(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		httperror.Send(w, req, http.StatusMethodNotAllowed, "POST required")
		return
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		httperror.Send(w, req, http.StatusBadRequest, fmt.Sprintf("Could not read request body: %s", err))
		return
	}

	parsed, err := statement.Parse(string(raw))
	if err != nil {
		var parseErr *statement.ParseError
		if errors.As(err, &parseErr) {
			httperror.Send(w, req, http.StatusUnprocessableEntity, parseErr.Message)
			return
		}
		httperror.Send(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	mapped, err := a.loadMappings()
	if err != nil {
		categorize.ProgramErrors.Add(1)
		httperror.Send(w, req, http.StatusInternalServerError, fmt.Sprintf("Could not load mappings: %s", err))
		return
	}

	resp := statementResponse{
		DetectedColumns: parsed.DetectedColumns,
		SkippedRows:     parsed.SkippedRows,
	}
	for _, txn := range parsed.Transactions {
		result := a.engine.Categorize(req.Context(), txn, mapped)
		resp.Transactions = append(resp.Transactions, CategorizedTransaction{
			Date:          txn.Date,
			Description:   txn.Description,
			Amount:        txn.Amount,
			Category:      result.Category,
			Subcategory:   result.Subcategory,
			Confidence:    result.Confidence,
			Reasoning:     result.Reasoning,
			NeedsHomework: result.Confidence < homeworkThreshold,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Could not encode statement response")
	}
}

// handleMappings saves a human-confirmed categorization, the write-back that
// makes Tier 1 authoritative on the next run.
func (a *App) handleMappings(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		httperror.Send(w, req, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var mapping categorize.Mapping
	if err := json.NewDecoder(req.Body).Decode(&mapping); err != nil {
		httperror.Send(w, req, http.StatusBadRequest, fmt.Sprintf("Could not parse request body: %s", err))
		return
	}
	if mapping.MerchantPattern == "" || mapping.Category == "" {
		httperror.Send(w, req, http.StatusBadRequest, "merchant_pattern and category must be provided")
		return
	}

	mapping.Category = taxonomy.Normalise(mapping.Category)
	if mapping.Subcategory != "" {
		mapping.Subcategory = taxonomy.Normalise(mapping.Subcategory)
	}

	if err := a.store.Upsert(a.owner, mapping); err != nil {
		categorize.ProgramErrors.Add(1)
		httperror.Send(w, req, http.StatusInternalServerError, fmt.Sprintf("Could not save mapping: %s", err))
		return
	}

	log.Info().
		Str("owner", a.owner).
		Str("pattern", mapping.MerchantPattern).
		Str("category", mapping.Category).
		Msg("✏️ Saved confirmed mapping")

	w.WriteHeader(http.StatusNoContent)
}
