package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"

	"sourcecheck/internal/catalog"
	"sourcecheck/internal/config"
	"sourcecheck/internal/logging"
	"sourcecheck/internal/notify"
	"sourcecheck/internal/probe"
	"sourcecheck/internal/scan"
)

func main() {
	cfg := config.FromEnv()

	var (
		configFile  = flag.String("config", "", "YAML config file overlaying the environment")
		catalogURL  = flag.String("catalog", cfg.CatalogURL, "catalog index URL")
		catalogFile = flag.String("file", "", "read the catalog index from a local file instead")
		singleURL   = flag.String("url", "", "check a single URL instead of a catalog")
		lang        = flag.String("lang", cfg.Lang, "only check extensions of this language")
		concurrency = flag.Int("concurrency", cfg.MaxConcurrentProbes, "max probes in flight")
		timeout     = flag.Duration("timeout", cfg.ProbeTimeout, "per-probe timeout")
		asJSON      = flag.Bool("json", false, "emit the report as JSON")
		verbose     = flag.Bool("v", false, "verbose logging to stderr")
	)
	flag.Parse()

	logger := logging.NewCLILogger(*verbose)
	defer logger.Sync()

	if *configFile != "" {
		var err error
		if cfg, err = config.Overlay(cfg, *configFile); err != nil {
			fatal(logger, "config file", err)
		}
	}
	// Flags given explicitly win over both environment and config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "catalog":
			cfg.CatalogURL = *catalogURL
		case "lang":
			cfg.Lang = *lang
		case "concurrency":
			cfg.MaxConcurrentProbes = *concurrency
		case "timeout":
			cfg.ProbeTimeout = *timeout
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	prober := probe.NewHTTPProber(cfg.ProbeTimeout)
	prober.DiagnoseDNS = cfg.DiagnoseDNS
	runner, err := scan.NewRunner(prober, logger, scan.Options{
		MaxConcurrency: cfg.MaxConcurrentProbes,
		Timeout:        cfg.ProbeTimeout,
	})
	if err != nil {
		fatal(logger, "invalid scan options", err)
	}

	ctx := context.Background()
	records, err := collectRecords(ctx, cfg, *catalogFile, *singleURL)
	if err != nil {
		fatal(logger, "loading catalog", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to check")
		return
	}

	logger.Info("scan_start",
		zap.Int("sources", len(records)),
		zap.Int("concurrency", cfg.MaxConcurrentProbes),
		zap.Duration("timeout", cfg.ProbeTimeout),
	)
	rep := runner.Run(ctx, records)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
	} else {
		printReport(rep)
	}

	sum := rep.Summary()
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil && sum.Dead() > 0 {
		title, text := notify.ReportMessage(rep)
		if err := slack.Send(ctx, title, text); err != nil {
			logger.Warn("notify_failed", zap.Error(err))
		}
	}
	if sum.Dead() > 0 {
		os.Exit(1)
	}
}

func collectRecords(ctx context.Context, cfg config.Config, catalogFile, singleURL string) ([]scan.SourceRecord, error) {
	if singleURL != "" {
		owner := singleURL
		if u, err := url.Parse(singleURL); err == nil && u.Hostname() != "" {
			owner = u.Hostname()
		}
		return []scan.SourceRecord{{OwnerID: owner, Location: singleURL}}, nil
	}

	var (
		exts []catalog.Extension
		err  error
	)
	if catalogFile != "" {
		exts, err = catalog.Load(catalogFile)
	} else {
		client := catalog.NewClient(30 * time.Second)
		exts, err = client.Fetch(ctx, cfg.CatalogURL)
	}
	if err != nil {
		return nil, err
	}
	return catalog.Records(exts, cfg.Lang), nil
}

func printReport(rep *scan.Report) {
	for _, owner := range rep.Owners {
		fmt.Printf("%s\n", owner.OwnerID)
		for _, out := range owner.Outcomes {
			mark := "✓"
			if out.Status != probe.StatusReachable {
				mark = "✗"
			}
			line := fmt.Sprintf("  %s [%s] %s", mark, out.Status, out.Location)
			if out.Detail != "" {
				line += " — " + out.Detail
			}
			fmt.Println(line)
		}
	}
	s := rep.Summary()
	fmt.Printf("\n%d checked: %d reachable, %d unreachable, %d malformed, %d timed out\n",
		s.Total, s.Reachable, s.Unreachable, s.Malformed, s.TimedOut)
}

func fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(2)
}
