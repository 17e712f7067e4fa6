package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sapientpants/quorum-sub001/config"
	"github.com/sapientpants/quorum-sub001/internal/metrics"
	"github.com/sapientpants/quorum-sub001/internal/server"
	"github.com/sapientpants/quorum-sub001/internal/telemetry"
	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/llm/factory"
	"github.com/sapientpants/quorum-sub001/types"
)

// app holds everything a subcommand needs. close releases it.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *llm.ClientRegistry
	promReg  *prometheus.Registry
	otel     *telemetry.Providers
	metrics  *server.Manager
	stdout   io.Writer
	stderr   io.Writer
}

// commonFlags registers the flags every subcommand accepts.
type commonFlags struct {
	configPath  string
	metricsAddr string
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to config file")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

// newApp loads the configuration and wires logging, telemetry, metrics and
// the client registry.
func newApp(ctx context.Context, flags commonFlags, stdout, stderr io.Writer) (*app, error) {
	loader := config.NewLoader().WithValidator(func(c *config.Config) error { return c.Validate() })
	if flags.configPath != "" {
		loader = loader.WithConfigPath(flags.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = flags.metricsAddr
	}

	logger := initLogger(cfg.Log)

	providers, err := telemetry.Init(ctx, cfg.Telemetry, Version, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
		providers = &telemetry.Providers{}
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(cfg.Metrics.Namespace, promReg, logger)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		promReg: promReg,
		otel:    providers,
		stdout:  stdout,
		stderr:  stderr,
		registry: factory.NewRegistry(cfg.LLM, logger,
			llm.WithRecorder(collector),
			llm.WithTracer(providers.Tracer()),
		),
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(promReg))
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Metrics.Addr
		a.metrics = server.NewManager(mux, srvCfg, logger)
		if err := a.metrics.Start(); err != nil {
			a.close()
			return nil, fmt.Errorf("start metrics server: %w", err)
		}
	}

	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.metrics != nil {
		_ = a.metrics.Shutdown(ctx)
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Debug("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// apiKey reads the key for a provider from its environment variable.
func apiKey(provider string) (string, string) {
	env := factory.APIKeyEnv[factory.Canonical(provider)]
	if env == "" {
		return "", ""
	}
	return strings.TrimSpace(os.Getenv(env)), env
}

// reportError prints a taxonomy error with its guidance.
func reportError(w io.Writer, err error) {
	e, ok := types.AsError(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", types.UserMessage(e))
	for _, s := range types.Suggestions(e) {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}
