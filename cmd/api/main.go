package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sourcecheck/internal/catalog"
	"sourcecheck/internal/config"
	"sourcecheck/internal/httpapi"
	apimw "sourcecheck/internal/httpapi/middleware"
	"sourcecheck/internal/logging"
	"sourcecheck/internal/probe"
	"sourcecheck/internal/scan"
)

// catalogScanner fetches the configured index and runs the availability
// engine over it.
type catalogScanner struct {
	client *catalog.Client
	url    string
	lang   string
	runner *scan.Runner
}

func (s *catalogScanner) Scan(ctx context.Context) (*scan.Report, error) {
	exts, err := s.client.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, catalog.Records(exts, s.lang)), nil
}

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	prober := probe.NewHTTPProber(cfg.ProbeTimeout)
	prober.DiagnoseDNS = cfg.DiagnoseDNS
	runner, err := scan.NewRunner(prober, logger, scan.Options{
		MaxConcurrency: cfg.MaxConcurrentProbes,
		Timeout:        cfg.ProbeTimeout,
	})
	if err != nil {
		log.Fatal(err)
	}

	scanner := &catalogScanner{
		client: catalog.NewClient(30 * time.Second),
		url:    cfg.CatalogURL,
		lang:   cfg.Lang,
		runner: runner,
	}

	api := httpapi.NewServer(logger, scanner)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	limits := httpapi.Limits{
		PublicRPM:   cfg.PublicRPM,
		PublicBurst: cfg.PublicBurst,
		AdminRPM:    cfg.AdminRPM,
		AdminBurst:  cfg.AdminBurst,
	}

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, api.Router(keys, limits)); err != nil {
		log.Fatal(err)
	}
}
