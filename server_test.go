package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/helpcomp/statement-categorizer/config"
	"github.com/helpcomp/statement-categorizer/mappings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) List(string) ([]categorize.Mapping, error) {
	return nil, errors.New("store offline")
}

func (failingStore) Upsert(string, categorize.Mapping) error {
	return errors.New("store offline")
}

func newTestApp(t *testing.T, store mappings.Store) *App {
	t.Helper()
	if store == nil {
		fileStore, err := mappings.NewFileStore(filepath.Join(t.TempDir(), "mappings.yml"))
		require.NoError(t, err)
		store = fileStore
	}
	return &App{
		engine: categorize.New(nil),
		store:  store,
		config: &config.MasterConfig{},
		owner:  "default",
	}
}

func TestHandleCategorize(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categorize",
		strings.NewReader(`{"transactions":[{"date":"2026-01-15","description":"TESCO EXPRESS","amount":-12.99}]}`))
	rec := httptest.NewRecorder()
	app.handleCategorize(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp categorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	result, ok := resp.Categorizations["2026-01-15-TESCO EXPRESS"]
	require.True(t, ok)
	assert.Equal(t, "Groceries", result.Subcategory)
	assert.False(t, result.NeedsHomework)
}

func TestHandleCategorizeEmptyBody(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categorize",
		strings.NewReader(`{"transactions":[]}`))
	rec := httptest.NewRecorder()
	app.handleCategorize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCategorizeStoreFailure(t *testing.T) {
	app := newTestApp(t, failingStore{})
	before := categorize.ProgramErrors.Load()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categorize",
		strings.NewReader(`{"transactions":[{"date":"2026-01-15","description":"TESCO EXPRESS","amount":-12.99}]}`))
	rec := httptest.NewRecorder()
	app.handleCategorize(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, uint64(1), categorize.ProgramErrors.Load()-before)
}

func TestHandleStatements(t *testing.T) {
	app := newTestApp(t, nil)

	csv := "Date,Description,Amount\n15/01/2026,TESCO EXPRESS,-12.99\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	app.handleStatements(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp statementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "Essential", resp.Transactions[0].Category)
}

func TestHandleStatementsUnparseable(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements",
		strings.NewReader("foo,bar,baz\n1,2,3\n"))
	rec := httptest.NewRecorder()
	app.handleStatements(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleMappingsStoreFailure(t *testing.T) {
	app := newTestApp(t, failingStore{})
	before := categorize.ProgramErrors.Load()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mappings",
		strings.NewReader(`{"merchant_pattern":"tesco","category":"Essential","subcategory":"Groceries"}`))
	rec := httptest.NewRecorder()
	app.handleMappings(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, uint64(1), categorize.ProgramErrors.Load()-before)
}

func TestHandleMappingsSaves(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mappings",
		strings.NewReader(`{"merchant_pattern":"xqzzv","category":"debt_repayment","subcategory":"Credit Card"}`))
	rec := httptest.NewRecorder()
	app.handleMappings(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	saved, err := app.store.List("default")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	// Values are normalised before being persisted
	assert.Equal(t, "Debt Repayment", saved[0].Category)
}
