package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

type Exporter struct {
	RowsParsed    *prometheus.Desc
	RowsSkipped   *prometheus.Desc
	TierMatches   *prometheus.Desc
	OpenAITokens  *prometheus.Desc
	APICalls      *prometheus.Desc
	APIErrors     *prometheus.Desc
	ProgramErrors *prometheus.Desc
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.RowsParsed
	ch <- e.RowsSkipped
	ch <- e.TierMatches
	ch <- e.OpenAITokens
	ch <- e.APICalls
	ch <- e.APIErrors
	ch <- e.ProgramErrors
}

func NewExporter(namespace string) *Exporter {
	return &Exporter{
		RowsParsed: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"statement",
				"rows_parsed",
			),
			"Count of statement rows parsed into transactions",
			[]string{},
			nil,
		),
		RowsSkipped: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"statement",
				"rows_skipped",
			),
			"Count of malformed statement rows skipped",
			[]string{},
			nil,
		),
		TierMatches: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"categorize",
				"tier_matches",
			),
			"Count of categorizations resolved per tier",
			[]string{"tier"},
			nil,
		),
		OpenAITokens: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"openai",
				"tokens",
			),
			"Count of OpenAI Tokens",
			[]string{"type"},
			nil,
		),
		APICalls: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"status",
				"api_calls",
			),
			"Count of API calls",
			[]string{"type"},
			nil,
		),
		APIErrors: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"status",
				"api_errors",
			),
			"Count of API Errors",
			[]string{"type"},
			nil,
		),
		ProgramErrors: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"status",
				"program_errors",
			),
			"Current status of the system",
			[]string{},
			nil,
		),
	}
}

// HealthHandler responds to liveness probes.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
