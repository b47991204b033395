package categorize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/helpcomp/statement-categorizer/statement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func txn(date, description, amount string) statement.Transaction {
	return statement.Transaction{
		Date:        date,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
	}
}

// A description no rule pattern matches, so Tier 3 is reached.
const unknownDescription = "XJQW VQZ 137"

func TestLearnedMappingOverridesRule(t *testing.T) {
	engine := New(nil)
	saved := []Mapping{
		{MerchantPattern: "tesco", Category: "Business", Subcategory: "Office/Equipment"},
	}

	// The static dictionary says tesco is Essential/Groceries, but the
	// user's correction wins.
	result := engine.Categorize(context.Background(), txn("2026-01-15", "TESCO EXPRESS", "-12.99"), saved)

	assert.Equal(t, "Business", result.Category)
	assert.Equal(t, "Office/Equipment", result.Subcategory)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Contains(t, result.Reasoning, "tesco")
}

func TestLearnedMappingWithoutSubcategory(t *testing.T) {
	engine := New(nil)
	saved := []Mapping{{MerchantPattern: "acme", Category: "transfer"}}

	result := engine.Categorize(context.Background(), txn("2026-01-15", "ACME LTD", "-5.00"), saved)

	assert.Equal(t, "Transfer", result.Category)
	assert.Equal(t, "Transfer", result.Subcategory)
}

func TestStaticRuleDerivesParent(t *testing.T) {
	engine := New(nil)

	result := engine.Categorize(context.Background(), txn("2026-01-15", "TESCO EXPRESS", "-12.99"), nil)

	assert.Equal(t, "Essential", result.Category)
	assert.Equal(t, "Groceries", result.Subcategory)
	assert.Equal(t, 0.95, result.Confidence)

	result = engine.Categorize(context.Background(), txn("2026-01-16", "SALARY PAYMENT", "2500.00"), nil)

	assert.Equal(t, "Income", result.Category)
	assert.Equal(t, "Salary", result.Subcategory)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestRuleOrderUberEatsBeforeUber(t *testing.T) {
	engine := New(nil)

	result := engine.Categorize(context.Background(), txn("2026-01-15", "UBER EATS LONDON", "-18.40"), nil)

	assert.Equal(t, "Eating Out", result.Subcategory)
	assert.Equal(t, "Discretionary", result.Category)

	result = engine.Categorize(context.Background(), txn("2026-01-15", "UBER *TRIP HELP.UBER.COM", "-9.50"), nil)

	assert.Equal(t, "Transport", result.Subcategory)
	assert.Equal(t, "Essential", result.Category)
}

func TestRuleOrderAmazonPrimeBeforeAmazon(t *testing.T) {
	engine := New(nil)

	result := engine.Categorize(context.Background(), txn("2026-01-15", "AMAZON PRIME MEMBERSHIP", "-8.99"), nil)
	assert.Equal(t, "Subscriptions", result.Subcategory)

	result = engine.Categorize(context.Background(), txn("2026-01-15", "AMAZON MARKETPLACE", "-24.99"), nil)
	assert.Equal(t, "Shopping", result.Subcategory)
}

func TestNoCredentialFallback(t *testing.T) {
	engine := New(nil)

	result := engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-10.00"), nil)

	assert.Equal(t, Result{
		Category:    "Discretionary",
		Subcategory: "Shopping",
		Confidence:  0.3,
		Reasoning:   "No AI categorization available (API key missing)",
	}, result)
}

func TestRemoteFailureAbsorbed(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	engine := New(completer)

	result := engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-10.00"), nil)

	assert.Equal(t, "Discretionary", result.Category)
	assert.Equal(t, "Shopping", result.Subcategory)
	assert.Equal(t, 0.2, result.Confidence)
	assert.Contains(t, result.Reasoning, "connection refused")
}

func TestRemoteMalformedJSONAbsorbed(t *testing.T) {
	for _, response := range []string{"I cannot categorize this.", "{not json}", ""} {
		completer := &fakeCompleter{response: response}
		engine := New(completer)

		result := engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-10.00"), nil)

		assert.Equal(t, 0.2, result.Confidence, "response %q", response)
		assert.NotEmpty(t, result.Reasoning)
	}
}

func TestRemoteFencedJSON(t *testing.T) {
	completer := &fakeCompleter{
		response: "Sure! Here you go:\n```json\n" +
			`{"category": "Essential", "subcategory": "Eating Out", "confidence": 0.8, "reasoning": "restaurant"}` +
			"\n```",
	}
	engine := New(completer)

	result := engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-10.00"), nil)

	// The model paired Eating Out with the wrong parent; the subcategory
	// is trusted and the parent recomputed.
	assert.Equal(t, "Discretionary", result.Category)
	assert.Equal(t, "Eating Out", result.Subcategory)
	assert.Equal(t, 0.8, result.Confidence)
}

func TestRemoteSnakeCaseCategoryNormalised(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"category": "debt_repayment", "subcategory": "Credit Card", "confidence": 0.75}`,
	}
	engine := New(completer)

	result := engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-100.00"), nil)

	assert.Equal(t, "Debt Repayment", result.Category)
	assert.Equal(t, "Credit Card", result.Subcategory)
}

func TestRemoteMissingSubcategory(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"category": "Savings", "confidence": 0.6}`,
	}
	engine := New(completer)

	result := engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-50.00"), nil)

	assert.Equal(t, "Savings", result.Category)
	assert.Equal(t, "Savings", result.Subcategory)
}

func TestPromptEmbedsTaxonomyAndTransaction(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"category": "Discretionary", "subcategory": "Hobbies", "confidence": 0.5}`,
	}
	engine := New(completer)

	engine.Categorize(context.Background(), txn("2026-01-15", unknownDescription, "-10.00"), nil)

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]
	assert.Contains(t, prompt, "Essential: [")
	assert.Contains(t, prompt, unknownDescription)
	assert.Contains(t, prompt, "£-10.00")
	assert.Contains(t, prompt, "2026-01-15")
}

// The engine is shared across HTTP handlers, so categorization and its
// counters must hold up under concurrent callers (run with -race).
func TestCategorizeConcurrentCallers(t *testing.T) {
	engine := New(nil)
	saved := []Mapping{
		{MerchantPattern: "tesco", Category: "Essential", Subcategory: "Groceries"},
	}

	const workers = 8
	const perWorker = 25
	before := LearnedHits.Load()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				result := engine.Categorize(context.Background(), txn("2026-01-15", "TESCO EXPRESS", "-12.99"), saved)
				if result.Subcategory != "Groceries" {
					t.Errorf("unexpected subcategory %q", result.Subcategory)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*perWorker), LearnedHits.Load()-before)
}

func TestCategorizeAllKeysAndOverwrite(t *testing.T) {
	engine := New(nil)
	txns := []statement.Transaction{
		txn("2026-01-15", "TESCO EXPRESS", "-12.99"),
		txn("2026-01-16", "SALARY PAYMENT", "2500.00"),
		// Duplicate date+description: last write wins in the result map
		txn("2026-01-15", "TESCO EXPRESS", "-5.00"),
	}

	results := engine.CategorizeAll(context.Background(), txns, nil)

	require.Len(t, results, 2)
	assert.Contains(t, results, "2026-01-15-TESCO EXPRESS")
	assert.Contains(t, results, "2026-01-16-SALARY PAYMENT")
	assert.Equal(t, "Groceries", results["2026-01-15-TESCO EXPRESS"].Subcategory)
}
