package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/alecthomas/kong"
	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/helpcomp/statement-categorizer/config"
	"github.com/helpcomp/statement-categorizer/mappings"
	"github.com/helpcomp/statement-categorizer/prom"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/prometheus/exporter-toolkit/web"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const AppName = "statement-categorizer"
const AppDesc = "Go-based service that ingests UK bank statement CSV exports, normalizes them into transactions, and assigns each a two-level category via learned merchant mappings, a static merchant dictionary, and an OpenAI fallback."

var cli struct {
	MetricsPath      string  `env:"EXPORTER_METRICS_PATH" help:"${env} - Path under which to expose metrics" default:"/metrics"`
	ConfigPath       string  `env:"CONFIG_PATH" help:"${env} - Path to config file" default:"./config.yml"`
	ListenAddress    string  `env:"EXPORTER_LISTEN_ADDRESS" help:"${env} - Address to listen on for web interface and telemetry" default:"9718"`
	StatementPath    string  `env:"STATEMENT_PATH" help:"${env} - Path to a CSV statement export; process it once, print results as JSON, and exit"`
	MappingsPath     string  `env:"MAPPINGS_PATH" help:"${env} - Path to the learned mappings store" default:"./mappings.yml"`
	DatabaseDSN      string  `env:"DATABASE_DSN" help:"${env} - PostgreSQL DSN for the mappings store. When set, mappings persist in the category_mappings table instead of the YAML file"`
	Owner            string  `env:"MAPPINGS_OWNER" help:"${env} - Owner key for the learned mappings store" default:"default"`
	Learn            bool    `env:"ENABLE_LEARNING" help:"${env} - Save confident one-shot results back into the mappings store" default:"false"`
	LearnConfidence  float64 `env:"LEARN_CONFIDENCE" help:"${env} - Minimum confidence before a result is learned" default:"0.9"`
	AzureAIAPIKey    string  `env:"AZURE_API_KEY" help:"${env} - API Key for Azure OpenAI. If none is provided, OpenAI support is disabled"`
	AzureEndpoint    string  `env:"AZURE_ENDPOINT" help:"${env} - Azure OpenAI Endpoint"`
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY" help:"${env} - API Key for OpenAI. If none is provided, OpenAI support is disabled"`
	OpenAIModel      string  `env:"OPENAI_MODEL" help:"${env} - OpenAI Model type. Default is gpt-3.5-turbo-instruct" default:"gpt-3.5-turbo-instruct"`
	EnablePrometheus bool    `env:"ENABLE_PROMETHEUS" help:"${env} - Enable Prometheus metrics" default:"true"`
}

func main() {
	// Variable Setup //
	///////////////////
	kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description(AppDesc),
	)
	log.Logger = log.Output(os.Stderr).With().Caller().Logger() // Logger
	cfg := config.InitConfig(cli.ConfigPath)                    // Config
	var oai *openai.Client                                      // OpenAI

	// Config file values fill in anything the flags left unset
	if cli.OpenAIAPIKey == "" {
		cli.OpenAIAPIKey = cfg.OpenAI.APIKey
	}
	if cfg.OpenAI.Model != "" {
		cli.OpenAIModel = cfg.OpenAI.Model
	}
	if cfg.AppConfig.MappingsPath != "" {
		cli.MappingsPath = cfg.AppConfig.MappingsPath
	}
	if cli.DatabaseDSN == "" {
		cli.DatabaseDSN = cfg.AppConfig.DatabaseDSN
	}
	if cfg.AppConfig.Owner != "" {
		cli.Owner = cfg.AppConfig.Owner
	}
	if cfg.AppConfig.LearnConfidence > 0 {
		cli.LearnConfidence = cfg.AppConfig.LearnConfidence
	}

	// AI Setup //
	/////////////
	// OpenAI
	if cli.OpenAIAPIKey != "" {
		oai = openai.NewClient(cli.OpenAIAPIKey)
	}
	// AzureAI
	if cli.AzureAIAPIKey != "" {
		if cli.AzureEndpoint == "" {
			log.Error().Msg("Azure Endpoint is required if Azure API Key is provided")
		} else {
			oai = openai.NewClientWithConfig(openai.DefaultAzureConfig(cli.AzureAIAPIKey, cli.AzureEndpoint))
		}
	}

	var completer categorize.Completer
	if oai != nil {
		completer = categorize.NewOpenAICompleter(oai, cli.OpenAIModel)
	} else {
		log.Info().Msg("No OpenAI API Key provided, AI tier disabled")
	}
	engine := categorize.New(completer)

	var store mappings.Store
	if cli.DatabaseDSN != "" {
		db, err := sql.Open("pgx", cli.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open mappings database")
		}
		store = mappings.NewSQLStore(db)
	} else {
		fileStore, err := mappings.NewFileStore(cli.MappingsPath)
		if err != nil {
			log.Fatal().Err(err).Msgf("Could not open mappings store %s", cli.MappingsPath)
		}
		store = fileStore
	}

	app := &App{
		engine: engine,
		store:  store,
		config: cfg,
		owner:  cli.Owner,
	}

	// One-Shot Mode //
	//////////////////
	if cli.StatementPath != "" {
		if err := app.ProcessStatement(context.Background(), cli.StatementPath); err != nil {
			log.Fatal().Err(err).Msgf("Could not process statement %s", cli.StatementPath)
		}
		return
	}

	// Start //
	///////////
	log.Logger.Info().
		Str("version", version.Info()).
		Msg("Starting " + AppName)

	// Create a channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	// API Routes
	http.HandleFunc("/api/v1/categorize", app.handleCategorize)
	http.HandleFunc("/api/v1/statements", app.handleStatements)
	http.HandleFunc("/api/v1/mappings", app.handleMappings)
	http.HandleFunc("/health", prom.HealthHandler)

	// Metric Registration
	if cli.EnablePrometheus {
		prometheus.MustRegister(
			versioncollector.NewCollector(AppName),
			prom.NewExporter(AppName),
		)

		http.Handle(cli.MetricsPath, promhttp.Handler())
		if cli.MetricsPath != "/" && cli.MetricsPath != "" {
			landingConfig := web.LandingConfig{
				Name:        AppName,
				Description: AppDesc,
				Version:     version.Print(AppName),
				Links: []web.LandingLinks{
					{
						Address: cli.MetricsPath,
						Text:    "Metrics",
					},
					{
						Address: "/health",
						Text:    "Health",
					},
				},
			}
			landingPage, err := web.NewLandingPage(landingConfig)

			if err != nil {
				log.Fatal().Err(err).Msg("")
			}
			http.Handle("/", landingPage)
		}
	}

	log.Info().Msgf("Starting HTTP server on listen address :%s and metric path %s", cli.ListenAddress, cli.MetricsPath)

	server := &http.Server{
		Addr:         ":" + cli.ListenAddress,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // batch categorization holds the request open per-transaction
		IdleTimeout:  60 * time.Second,
	}

	// Listen and serve
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Error starting HTTP server")
		}
	}()

	// Handle shutdown
	sig := <-sigChan
	log.Info().Msgf("Received signal %s. Exiting...", sig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down HTTP server...")
	_ = server.Shutdown(ctx)
	log.Info().Msg("Shutdown Complete; Exiting...")
}
