// Package main provides the entry point for the Janus query router.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TFMV/janus/cmd/server/config"
	"github.com/TFMV/janus/cmd/server/middleware"
	"github.com/TFMV/janus/pkg/cache"
	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/engines/duckdb"
	"github.com/TFMV/janus/pkg/engines/postgres"
	"github.com/TFMV/janus/pkg/engines/sqlite"
	"github.com/TFMV/janus/pkg/handlers"
	"github.com/TFMV/janus/pkg/infrastructure/metrics"
	"github.com/TFMV/janus/pkg/router"
	"github.com/TFMV/janus/pkg/server"
	"github.com/TFMV/janus/pkg/services"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "janus",
	Short: "Janus dual-engine query router",
	Long: `A SQL query router that classifies statements and routes them between
a transactional engine and an analytical engine.

Janus serves an HTTP API for executing, explaining, and classifying queries.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Janus query router",
	Long: `Start the Janus query router with the specified configuration.

Example:
  janus serve --config ./config.yaml
  janus serve --address 0.0.0.0:8080 --transactional-dsn ./janus.db`,
	RunE: runServer,
}

func init() {
	// Add serve command
	rootCmd.AddCommand(serveCmd)

	// Command flags
	serveCmd.Flags().StringP("config", "c", "", "config file path")
	serveCmd.Flags().String("address", "0.0.0.0:8080", "server listen address")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().Bool("log-pretty", false, "human-readable console logging")
	serveCmd.Flags().String("transactional-driver", "sqlite", "transactional engine driver (sqlite, postgres)")
	serveCmd.Flags().String("transactional-dsn", ":memory:", "transactional engine DSN")
	serveCmd.Flags().String("analytical-driver", "duckdb", "analytical engine driver")
	serveCmd.Flags().String("analytical-dsn", ":memory:", "analytical engine DSN")
	serveCmd.Flags().Int("max-connections", 0, "maximum open connections per engine")
	serveCmd.Flags().Duration("connection-timeout", 30*time.Second, "engine connect timeout")
	serveCmd.Flags().String("auth", "none", "authentication type (none, basic, bearer, jwt)")
	serveCmd.Flags().String("bearer-token", "", "static bearer token (auth=bearer)")
	serveCmd.Flags().String("jwt-secret", "", "HMAC secret for JWT validation (auth=jwt)")
	serveCmd.Flags().String("jwt-issuer", "", "required JWT issuer claim")
	serveCmd.Flags().String("jwt-audience", "", "required JWT audience claim")
	serveCmd.Flags().Bool("metrics", true, "enable Prometheus metrics")
	serveCmd.Flags().String("metrics-address", ":9090", "metrics server address")
	serveCmd.Flags().Bool("cache", true, "enable the explanation cache")
	serveCmd.Flags().Int("cache-max-entries", 1000, "maximum cached explanations")
	serveCmd.Flags().Duration("cache-ttl", 5*time.Minute, "explanation cache TTL")
	serveCmd.Flags().Int("max-query-length", 100_000, "maximum query length in bytes")
	serveCmd.Flags().Duration("query-timeout", 5*time.Minute, "default query timeout")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "graceful shutdown timeout")

	// Bind flags to viper
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("JANUS")
	viper.AutomaticEnv()

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Janus Query Router\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// engine is what the wiring layer needs from a backend: the router contract
// plus the lifecycle the router itself does not own.
type engine interface {
	engines.Engine
	Ping(ctx context.Context) error
	Close() error
}

// application bundles the server with the resources it owns.
type application struct {
	server        *server.Server
	transactional engine
	analytical    engine
	explanations  cache.Cache
	logger        zerolog.Logger
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logging
	logger := setupLogging(cfg.Log)
	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Msg("Starting Janus query router")

	// Create metrics collector
	var metricsCollector metrics.Collector
	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.NewPrometheusCollector()
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Address)
		go func() {
			logger.Info().Str("address", cfg.Metrics.Address).Msg("Starting metrics server")
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start metrics server")
			}
		}()
	} else {
		metricsCollector = metrics.NewNoOpCollector()
	}

	// Build the router, services, and HTTP server
	app, err := buildApplication(cfg, logger, metricsCollector)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer app.Close()

	// Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("address", cfg.Server.Address).
		Str("transactional", cfg.Transactional.Driver).
		Str("analytical", cfg.Analytical.Driver).
		Str("auth", cfg.Auth.Type).
		Msg("Server listening")

	if err := app.server.Serve(ctx); err != nil {
		return err
	}

	// Stop metrics server
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	logger.Info().Msg("Server shutdown complete")
	return nil
}

func buildApplication(cfg *config.Config, logger zerolog.Logger, metricsCollector metrics.Collector) (*application, error) {
	// Create engines
	transactional, err := newTransactionalEngine(cfg.Transactional, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactional engine: %w", err)
	}

	analytical, err := newAnalyticalEngine(cfg.Analytical, logger)
	if err != nil {
		_ = transactional.Close()
		return nil, fmt.Errorf("failed to create analytical engine: %w", err)
	}

	queryRouter := router.NewRouter(transactional, analytical)

	// Create explanation cache
	var explanations cache.Cache
	if cfg.Cache.Enabled {
		explanations = cache.NewMemoryCache(
			cache.DefaultConfig().
				WithMaxEntries(cfg.Cache.MaxEntries).
				WithTTL(cfg.Cache.TTL),
		)
	}

	// Create services
	queryService := services.NewQueryService(
		queryRouter,
		explanations,
		services.Limits{
			MaxQueryLength: cfg.Query.MaxLength,
			DefaultTimeout: cfg.Query.Timeout,
		},
		&serviceLoggerAdapter{logger: logger.With().Str("component", "query_service").Logger()},
		&serviceMetricsAdapter{collector: metricsCollector},
	)

	// Create handlers
	queryHandler := handlers.NewQueryHandler(
		queryService,
		&handlerLoggerAdapter{logger: logger.With().Str("component", "query_handler").Logger()},
		&handlerMetricsAdapter{collector: metricsCollector},
	)

	healthHandler := handlers.NewHealthHandler(
		&handlerLoggerAdapter{logger: logger.With().Str("component", "health_handler").Logger()},
	)
	healthHandler.AddEngine("transactional", transactional)
	healthHandler.AddEngine("analytical", analytical)

	// Middleware
	authMW := middleware.NewAuthMiddleware(cfg.Auth, logger.With().Str("component", "auth_middleware").Logger())
	logMW := middleware.NewLoggingMiddleware(logger.With().Str("component", "logging_middleware").Logger())
	metricsMW := middleware.NewMetricsMiddleware(&middlewareMetricsAdapter{collector: metricsCollector})
	recoverMW := middleware.NewRecoveryMiddleware(logger.With().Str("component", "recovery_middleware").Logger())

	srv := server.New(cfg, queryHandler, healthHandler, logger,
		middleware.RequestID,
		recoverMW.Handler,
		logMW.Handler,
		metricsMW.Handler,
		authMW.Handler,
	)

	return &application{
		server:        srv,
		transactional: transactional,
		analytical:    analytical,
		explanations:  explanations,
		logger:        logger,
	}, nil
}

func newTransactionalEngine(ec config.EngineConfig, logger zerolog.Logger) (engine, error) {
	switch ec.Driver {
	case config.DriverSQLite:
		return sqlite.New(ec.EngineSettings(), logger)
	case config.DriverPostgres:
		return postgres.New(ec.EngineSettings(), logger)
	default:
		return nil, fmt.Errorf("unsupported transactional driver: %s", ec.Driver)
	}
}

func newAnalyticalEngine(ec config.EngineConfig, logger zerolog.Logger) (engine, error) {
	switch ec.Driver {
	case config.DriverDuckDB:
		return duckdb.New(ec.EngineSettings(), logger)
	default:
		return nil, fmt.Errorf("unsupported analytical driver: %s", ec.Driver)
	}
}

// Close releases the cache and both engines.
func (a *application) Close() {
	if a.explanations != nil {
		if err := a.explanations.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing explanation cache")
		}
	}

	if err := a.transactional.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error closing transactional engine")
	}
	if err := a.analytical.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error closing analytical engine")
	}

	a.logger.Info().Msg("Query router closed")
}

func loadConfig() (*config.Config, error) {
	// Load config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	maxConns := viper.GetInt("max-connections")
	connTimeout := viper.GetDuration("connection-timeout")

	// Build configuration
	cfg := &config.Config{
		Server: config.ServerConfig{
			Address:         viper.GetString("address"),
			ShutdownTimeout: viper.GetDuration("shutdown-timeout"),
		},
		Log: config.LogConfig{
			Level:  viper.GetString("log-level"),
			Pretty: viper.GetBool("log-pretty"),
		},
		Transactional: config.EngineConfig{
			Driver:             viper.GetString("transactional-driver"),
			DSN:                viper.GetString("transactional-dsn"),
			MaxOpenConnections: maxConns,
			ConnectTimeout:     connTimeout,
		},
		Analytical: config.EngineConfig{
			Driver:             viper.GetString("analytical-driver"),
			DSN:                viper.GetString("analytical-dsn"),
			MaxOpenConnections: maxConns,
			ConnectTimeout:     connTimeout,
		},
		Auth: config.AuthConfig{
			Type:        viper.GetString("auth"),
			BearerToken: viper.GetString("bearer-token"),
			JWT: config.JWTConfig{
				Secret:   viper.GetString("jwt-secret"),
				Issuer:   viper.GetString("jwt-issuer"),
				Audience: viper.GetString("jwt-audience"),
			},
		},
		Metrics: config.MetricsConfig{
			Enabled: viper.GetBool("metrics"),
			Address: viper.GetString("metrics-address"),
		},
		Cache: config.CacheConfig{
			Enabled:    viper.GetBool("cache"),
			MaxEntries: viper.GetInt("cache-max-entries"),
			TTL:        viper.GetDuration("cache-ttl"),
		},
		Query: config.QueryConfig{
			MaxLength: viper.GetInt("max-query-length"),
			Timeout:   viper.GetDuration("query-timeout"),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupLogging(cfg config.LogConfig) zerolog.Logger {
	// Configure zerolog
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	// Set log level
	var logLevel zerolog.Level
	switch cfg.Level {
	case "debug":
		logLevel = zerolog.DebugLevel
		// Enable caller info for debug level
		zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
			short := file
			for i := len(file) - 1; i > 0; i-- {
				if file[i] == '/' {
					short = file[i+1:]
					break
				}
			}
			return fmt.Sprintf("%s:%d", short, line)
		}
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	// Create logger with caller info for debug level
	logger := zerolog.New(out).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "janus")

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}

// Adapter implementations for different interface requirements

// serviceLoggerAdapter adapts zerolog.Logger to services.Logger
type serviceLoggerAdapter struct {
	logger zerolog.Logger
}

func (l *serviceLoggerAdapter) Debug(msg string, keysAndValues ...interface{}) {
	event := l.logger.Debug()
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key := fmt.Sprintf("%v", keysAndValues[i])
			value := keysAndValues[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

func (l *serviceLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	event := l.logger.Info()
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key := fmt.Sprintf("%v", keysAndValues[i])
			value := keysAndValues[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

func (l *serviceLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	event := l.logger.Warn()
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key := fmt.Sprintf("%v", keysAndValues[i])
			value := keysAndValues[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

func (l *serviceLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	event := l.logger.Error()
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key := fmt.Sprintf("%v", keysAndValues[i])
			value := keysAndValues[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

// serviceMetricsAdapter adapts metrics.Collector to services.MetricsCollector
type serviceMetricsAdapter struct {
	collector metrics.Collector
}

func (m *serviceMetricsAdapter) IncrementCounter(name string, labels ...string) {
	m.collector.IncrementCounter(name, labels...)
}

func (m *serviceMetricsAdapter) RecordHistogram(name string, value float64, labels ...string) {
	m.collector.RecordHistogram(name, value, labels...)
}

func (m *serviceMetricsAdapter) RecordGauge(name string, value float64, labels ...string) {
	m.collector.RecordGauge(name, value, labels...)
}

func (m *serviceMetricsAdapter) StartTimer(name string) services.Timer {
	return &serviceTimerAdapter{timer: m.collector.StartTimer(name)}
}

// serviceTimerAdapter adapts metrics.Timer to services.Timer
type serviceTimerAdapter struct {
	timer metrics.Timer
}

func (t *serviceTimerAdapter) Stop() time.Duration {
	seconds := t.timer.Stop()
	return time.Duration(seconds * float64(time.Second))
}

// handlerLoggerAdapter adapts zerolog.Logger to handlers.Logger
type handlerLoggerAdapter struct {
	logger zerolog.Logger
}

func (l *handlerLoggerAdapter) Debug(msg string, fields ...interface{}) {
	event := l.logger.Debug()
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key := fmt.Sprintf("%v", fields[i])
			value := fields[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

func (l *handlerLoggerAdapter) Info(msg string, fields ...interface{}) {
	event := l.logger.Info()
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key := fmt.Sprintf("%v", fields[i])
			value := fields[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

func (l *handlerLoggerAdapter) Warn(msg string, fields ...interface{}) {
	event := l.logger.Warn()
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key := fmt.Sprintf("%v", fields[i])
			value := fields[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

func (l *handlerLoggerAdapter) Error(msg string, fields ...interface{}) {
	event := l.logger.Error()
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key := fmt.Sprintf("%v", fields[i])
			value := fields[i+1]
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

// handlerMetricsAdapter adapts metrics.Collector to handlers.MetricsCollector
type handlerMetricsAdapter struct {
	collector metrics.Collector
}

func (m *handlerMetricsAdapter) IncrementCounter(name string, tags ...string) {
	m.collector.IncrementCounter(name, tags...)
}

func (m *handlerMetricsAdapter) RecordHistogram(name string, value float64, tags ...string) {
	m.collector.RecordHistogram(name, value, tags...)
}

func (m *handlerMetricsAdapter) RecordGauge(name string, value float64, tags ...string) {
	m.collector.RecordGauge(name, value, tags...)
}

func (m *handlerMetricsAdapter) StartTimer(name string) handlers.Timer {
	return &handlerTimerAdapter{timer: m.collector.StartTimer(name)}
}

// handlerTimerAdapter adapts metrics.Timer to handlers.Timer
type handlerTimerAdapter struct {
	timer metrics.Timer
}

func (t *handlerTimerAdapter) Stop() {
	t.timer.Stop()
}

// middlewareMetricsAdapter adapts metrics.Collector to middleware.MetricsCollector
type middlewareMetricsAdapter struct {
	collector metrics.Collector
}

func (m *middlewareMetricsAdapter) IncrementCounter(name string, labels ...string) {
	m.collector.IncrementCounter(name, labels...)
}

func (m *middlewareMetricsAdapter) RecordHistogram(name string, value float64, labels ...string) {
	m.collector.RecordHistogram(name, value, labels...)
}

func (m *middlewareMetricsAdapter) RecordGauge(name string, value float64, labels ...string) {
	m.collector.RecordGauge(name, value, labels...)
}

func (m *middlewareMetricsAdapter) StartTimer(name string) middleware.Timer {
	return &middlewareTimerAdapter{timer: m.collector.StartTimer(name)}
}

// middlewareTimerAdapter adapts metrics.Timer to middleware.Timer
type middlewareTimerAdapter struct {
	timer metrics.Timer
}

func (t *middlewareTimerAdapter) Stop() float64 {
	return t.timer.Stop()
}
