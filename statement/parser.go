// Package statement parses raw CSV bank-statement exports into normalized
// transactions. UK banks disagree on almost everything (column names, date
// formats, single signed amount vs split debit/credit, leading summary rows),
// so the parser auto-detects the column layout before reading data rows.
package statement

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Counters scraped by the prom exporter. Atomic because statements can be
// parsed from concurrent HTTP requests.
var (
	RowsParsed  atomic.Uint64
	RowsSkipped atomic.Uint64
)

// Transaction is a single normalized statement line. Amount is signed:
// positive for money in, negative for money out, whatever the source layout.
type Transaction struct {
	Date        string          `json:"date"` // ISO YYYY-MM-DD
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// DetectedColumns records which source headers were mapped to each role.
// Amount is empty when the statement used split Debit/Credit columns, and
// vice versa.
type DetectedColumns struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount,omitempty"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

// Result is a successful parse. SkippedRows counts data rows dropped for a
// bad date, empty description, or unparseable amount.
type Result struct {
	Transactions    []Transaction   `json:"transactions"`
	DetectedColumns DetectedColumns `json:"detected_columns"`
	SkippedRows     int             `json:"skipped_rows"`
}

// ParseError is a structural failure: no detectable header, or headers found
// but zero usable data rows. Row is 1-based when known.
type ParseError struct {
	Message string `json:"message"`
	Row     int    `json:"row,omitempty"`
}

func (e *ParseError) Error() string { return e.Message }

// Header vocabularies, matched case-insensitively as exact or substring.
var (
	dateHeaders = []string{
		"date", "transaction date", "trans date", "booking date",
		"value date", "posted date", "trans. date",
	}
	descriptionHeaders = []string{
		"description", "narrative", "details", "reference", "counter party",
		"counterparty", "merchant", "memo", "payee", "transaction description",
		"trans. description", "name", "type & description",
	}
	amountHeaders = []string{"amount", "value", "transaction amount"}
	debitHeaders  = []string{"debit", "money out", "paid out", "debit amount", "withdrawal", "out"}
	creditHeaders = []string{"credit", "money in", "paid in", "credit amount", "deposit", "in"}
	// Balance columns are recognised only so they are never mistaken for a
	// description or amount column.
	balanceHeaders = []string{"balance", "running balance", "available balance", "ledger balance"}
)

// headerScanLimit caps how many leading lines are checked for a header row.
// Some banks put summary rows above the real header.
const headerScanLimit = 10

type columnMapping struct {
	dateIdx        int
	descriptionIdx int
	amountIdx      int
	debitIdx       int
	creditIdx      int
	headers        DetectedColumns
}

func matchesRole(header string, vocabulary []string) bool {
	normalised := strings.ToLower(strings.TrimSpace(header))
	return slices.IndexFunc(vocabulary, func(v string) bool {
		return normalised == v || strings.Contains(normalised, v)
	}) != -1
}

// detectColumns maps a candidate header row to column roles. A usable header
// needs a date, a description, and either a single amount column or a
// complete debit/credit pair.
func detectColumns(headers []string) (columnMapping, bool) {
	m := columnMapping{dateIdx: -1, descriptionIdx: -1, amountIdx: -1, debitIdx: -1, creditIdx: -1}

	for i, h := range headers {
		if matchesRole(h, balanceHeaders) {
			continue
		}

		switch {
		case m.dateIdx == -1 && matchesRole(h, dateHeaders):
			m.dateIdx = i
		case m.descriptionIdx == -1 && matchesRole(h, descriptionHeaders):
			m.descriptionIdx = i
		case m.amountIdx == -1 && matchesRole(h, amountHeaders):
			m.amountIdx = i
		case m.debitIdx == -1 && matchesRole(h, debitHeaders):
			m.debitIdx = i
		case m.creditIdx == -1 && matchesRole(h, creditHeaders):
			m.creditIdx = i
		}
	}

	if m.dateIdx == -1 || m.descriptionIdx == -1 {
		return columnMapping{}, false
	}
	if m.amountIdx == -1 && (m.debitIdx == -1 || m.creditIdx == -1) {
		return columnMapping{}, false
	}

	m.headers.Date = headers[m.dateIdx]
	m.headers.Description = headers[m.descriptionIdx]
	if m.amountIdx != -1 {
		m.headers.Amount = headers[m.amountIdx]
	}
	if m.debitIdx != -1 {
		m.headers.Debit = headers[m.debitIdx]
	}
	if m.creditIdx != -1 {
		m.headers.Credit = headers[m.creditIdx]
	}
	return m, true
}

// splitFields splits one CSV line with RFC 4180 quoting: doubled quotes
// escape a quote, commas inside quotes are literal. Fields are trimmed.
func splitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					current.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			current.WriteByte(ch)
			continue
		}
		switch ch {
		case '"':
			inQuotes = true
		case ',':
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// Parse converts raw statement text into a normalized transaction list.
// Malformed data rows are skipped and counted; a missing header or a
// statement with zero usable rows is a *ParseError.
func Parse(csvText string) (*Result, error) {
	var lines []string
	for _, line := range strings.Split(csvText, "\n") {
		if strings.TrimSpace(strings.TrimSuffix(line, "\r")) != "" {
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
	}

	if len(lines) < 2 {
		return nil, &ParseError{Message: "file appears empty or has no data rows"}
	}

	headerRow := -1
	var columns columnMapping
	scanLimit := len(lines)
	if scanLimit > headerScanLimit {
		scanLimit = headerScanLimit
	}
	for i := 0; i < scanLimit; i++ {
		if m, ok := detectColumns(splitFields(lines[i])); ok {
			headerRow = i
			columns = m
			break
		}
	}
	if headerRow == -1 {
		return nil, &ParseError{
			Message: "could not detect column headers; expected columns like Date, Description, and Amount (or Debit/Credit)",
		}
	}

	result := &Result{DetectedColumns: columns.headers}

	for i := headerRow + 1; i < len(lines); i++ {
		fields := splitFields(lines[i])

		date, ok := parseDate(fieldAt(fields, columns.dateIdx))
		description := strings.TrimSpace(fieldAt(fields, columns.descriptionIdx))
		if !ok || description == "" {
			result.SkippedRows++
			continue
		}

		var amount decimal.Decimal
		if columns.amountIdx != -1 {
			parsed, ok := parseAmount(fieldAt(fields, columns.amountIdx))
			if !ok {
				result.SkippedRows++
				continue
			}
			amount = parsed
		} else {
			amount = resolveDebitCredit(
				fieldAt(fields, columns.debitIdx),
				fieldAt(fields, columns.creditIdx),
			)
		}

		result.Transactions = append(result.Transactions, Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
		})
	}

	RowsParsed.Add(uint64(len(result.Transactions)))
	RowsSkipped.Add(uint64(result.SkippedRows))

	if len(result.Transactions) == 0 {
		return nil, &ParseError{
			Message: fmt.Sprintf("headers detected (%s, %s) but no valid data rows found",
				columns.headers.Date, columns.headers.Description),
		}
	}

	log.Debug().
		Int("transactions", len(result.Transactions)).
		Int("skipped", result.SkippedRows).
		Str("dateColumn", columns.headers.Date).
		Msg("Parsed statement")

	return result, nil
}

// resolveDebitCredit folds split columns into one signed amount: a non-zero
// credit wins as an inflow, then a non-zero debit as an outflow. Both empty
// or zero is a valid zero-amount transaction, not a skip.
func resolveDebitCredit(rawDebit, rawCredit string) decimal.Decimal {
	if credit, ok := parseAmount(rawCredit); ok && !credit.IsZero() {
		return credit.Abs()
	}
	if debit, ok := parseAmount(rawDebit); ok && !debit.IsZero() {
		return debit.Abs().Neg()
	}
	return decimal.Zero
}
