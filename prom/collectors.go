package prom

import (
	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/helpcomp/statement-categorizer/statement"
	"github.com/prometheus/client_golang/prometheus"
)

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.CollectPipeline(ch) // Parser / categorization tier counters
	e.CollectSys(ch)      // Program Collector (API calls, tokens, etc...)
}

// CollectPipeline reports the parse and cascade counters the statement and
// categorize packages accumulate as they run.
func (e *Exporter) CollectPipeline(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		e.RowsParsed,
		prometheus.CounterValue,
		float64(statement.RowsParsed.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		e.RowsSkipped,
		prometheus.CounterValue,
		float64(statement.RowsSkipped.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		e.TierMatches,
		prometheus.CounterValue,
		float64(categorize.LearnedHits.Load()),
		"learned",
	)
	ch <- prometheus.MustNewConstMetric(
		e.TierMatches,
		prometheus.CounterValue,
		float64(categorize.RuleHits.Load()),
		"rule",
	)
	ch <- prometheus.MustNewConstMetric(
		e.TierMatches,
		prometheus.CounterValue,
		float64(categorize.APICalls.Load()),
		"ai",
	)
	ch <- prometheus.MustNewConstMetric(
		e.TierMatches,
		prometheus.CounterValue,
		float64(categorize.FallbackHits.Load()),
		"fallback",
	)
}

// CollectSys Collects Program information (API calls, etc...)
func (e *Exporter) CollectSys(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		e.APICalls,
		prometheus.CounterValue,
		float64(categorize.APICalls.Load()),
		"openai",
	)
	ch <- prometheus.MustNewConstMetric(
		e.APIErrors,
		prometheus.CounterValue,
		float64(categorize.APIErrors.Load()),
		"openai",
	)
	ch <- prometheus.MustNewConstMetric(
		e.OpenAITokens,
		prometheus.CounterValue,
		float64(categorize.Usage.CompletionTokens.Load()),
		"completion",
	)
	ch <- prometheus.MustNewConstMetric(
		e.OpenAITokens,
		prometheus.CounterValue,
		float64(categorize.Usage.TotalTokens.Load()),
		"total",
	)
	ch <- prometheus.MustNewConstMetric(
		e.OpenAITokens,
		prometheus.CounterValue,
		float64(categorize.Usage.PromptTokens.Load()),
		"prompt",
	)
	ch <- prometheus.MustNewConstMetric(
		e.ProgramErrors,
		prometheus.CounterValue,
		float64(categorize.ProgramErrors.Load()),
	)
}
