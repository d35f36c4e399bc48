package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"raillog.org/engine/internal/app"
	"raillog.org/engine/internal/appconf"
	"raillog.org/engine/internal/engine"
	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/restapi"
	"raillog.org/engine/internal/webui"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)
	if cfg.Env == appconf.Development {
		logger = logging.NewTextLogger(os.Stdout, level)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// parseConfig reads flags, falling back to RAILLOG_* environment variables
// for their defaults.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (appconf.Config, error) {
	envOr := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}
	envIntOr := func(key string, fallback int) int {
		if v, err := strconv.Atoi(getenv(key)); err == nil {
			return v
		}
		return fallback
	}

	var (
		cfg         appconf.Config
		env         string
		apiKeysFlag string
		originsFlag string
		fs          = flag.NewFlagSet("raillog-api", flag.ContinueOnError)
	)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Port, "port", envIntOr("RAILLOG_PORT", 4000), "API server port")
	fs.StringVar(&env, "env", envOr("RAILLOG_ENV", "development"), "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", envOr("RAILLOG_API_KEYS", "test"), "Comma Separated API Keys (test, etc)")
	fs.StringVar(&cfg.ConfigFile, "config", envOr("RAILLOG_CONFIG", ""), "Engine configuration YAML file")
	fs.IntVar(&cfg.RateLimit, "rate-limit", envIntOr("RAILLOG_RATE_LIMIT", 100), "Requests per second per API key; negative disables")
	fs.StringVar(&originsFlag, "allowed-origins", envOr("RAILLOG_ALLOWED_ORIGINS", ""), "Comma separated CORS origins; empty allows any")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("RAILLOG_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return appconf.Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	cfg.Env = appconf.EnvFlagToEnvironment(env)
	cfg.ApiKeys = appconf.SplitList(apiKeysFlag)
	cfg.AllowedOrigins = appconf.SplitList(originsFlag)
	return cfg, nil
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	engineCfg := appconf.DefaultEngineConfig()
	if cfg.ConfigFile != "" {
		loaded, err := appconf.LoadEngineConfig(cfg.ConfigFile)
		if err != nil {
			return err
		}
		engineCfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.Open(ctx, engineCfg, logger)
	if err != nil {
		return fmt.Errorf("loading network: %w", err)
	}
	defer eng.Shutdown()

	application := &app.Application{
		Config:       cfg,
		EngineConfig: engineCfg,
		Logger:       logger,
		Engine:       eng,
	}
	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newMux(application, api),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env.String()),
			slog.Int("lines", eng.Snapshot().Graph.LineCount()))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newMux(application *app.Application, api *restapi.RestAPI) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/", api.Handler())
	if application.Config.Env != appconf.Production {
		(&webui.WebUI{Engine: application.Engine}).SetWebUIRoutes(mux)
	}
	return mux
}
