// Command simulator fills a PostgreSQL table with synthetic payment
// transactions, for exercising change-data-capture and replication setups.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/txnsim/config"
	"github.com/remiges-tech/txnsim/internal/pg"
	"github.com/remiges-tech/txnsim/logger"
	"github.com/remiges-tech/txnsim/metrics"
	"github.com/remiges-tech/txnsim/simulator"
)

const appName = "txnsim"

// Exit statuses.
const (
	exitOK     = 0
	exitSetup  = 1 // usage, configuration or connection failure
	exitFailed = 2 // connected, but the table or the rows could not be written
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.LookupEnv, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, lookupEnv func(string) (string, bool), stdout, stderr io.Writer) int {
	cfg, err := config.ParseSimulatorConfig(args, lookupEnv, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, config.ErrUsage):
		return exitSetup
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	lh, err := logger.LoadLogger(appName, cfg.LogLevel, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}
	lh.Info().LogActivity("Starting transaction simulator", cfg.LogFields())

	m := metrics.NewPrometheusMetrics()
	metrics.RegisterSimulatorMetrics(m)
	if cfg.MetricsAddr != "" {
		srv, err := m.StartMetricsServer(cfg.MetricsAddr)
		if err != nil {
			lh.Error(err).LogActivity("Unable to start metrics server", map[string]any{"addr": cfg.MetricsAddr})
			return finish(stdout, exitSetup)
		}
		defer srv.Close()
	}

	gen := simulator.New(simulator.GeneratorConfig{Seed: cfg.Seed})

	if cfg.DryRun {
		txns, err := generate(lh, m, gen, cfg.Count)
		if err != nil {
			return finish(stdout, exitFailed)
		}
		simulator.Summarize(txns).Render(stdout)
		return finish(stdout, exitOK)
	}

	traceLevel := &pg.LogLevel{}
	traceLevel.Set(pg.TraceLevelFor(cfg.LogLevel))
	conn, err := pg.Connect(ctx, pg.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		User:           cfg.User,
		Password:       cfg.Password,
		DBName:         cfg.Database,
		ConnectTimeout: cfg.ConnectTimeout,
	}, lh, traceLevel)
	if err != nil {
		lh.Error(err).LogActivity("Error connecting to the database", map[string]any{"host": cfg.Host, "port": cfg.Port, "db": cfg.Database})
		fmt.Fprintf(stderr, "Error connecting to the database: %v\n", err)
		return finish(stdout, exitSetup)
	}
	defer conn.Close(context.Background())
	lh.Info().LogActivity("Connected to the database", map[string]any{"host": cfg.Host, "db": cfg.Database})

	txns, err := generate(lh, m, gen, cfg.Count)
	if err != nil {
		return finish(stdout, exitFailed)
	}

	if err := pg.EnsureTable(ctx, conn, cfg.Table); err != nil {
		lh.Error(err).LogActivity("Unable to create table", map[string]any{"table": cfg.Table})
		return finish(stdout, exitFailed)
	}
	lh.LogDataChange("Table ready", logharbour.ChangeInfo{
		Entity: "Table",
		Op:     "Create",
		Changes: []logharbour.ChangeDetail{
			{Field: "name", OldVal: nil, NewVal: cfg.Table},
			{Field: "replicaIdentity", OldVal: nil, NewVal: "full"},
		},
	})

	w, err := pg.NewWriter(conn, cfg.Table, pg.WriterOptions{BatchSize: cfg.BatchSize, Metrics: m})
	if err != nil {
		lh.Error(err).LogActivity("Unable to prepare writer", map[string]any{"table": cfg.Table})
		return finish(stdout, exitFailed)
	}
	start := time.Now()
	res, err := w.Insert(ctx, txns)
	metrics.RecordRun(m, res.Attempted, res.Inserted, res.Skipped, time.Now())
	fields := map[string]any{
		"table":     cfg.Table,
		"attempted": res.Attempted,
		"inserted":  res.Inserted,
		"skipped":   res.Skipped,
		"commits":   res.Commits,
		"elapsed":   time.Since(start).String(),
	}
	if err != nil {
		lh.Error(err).LogActivity("Inserting transactions failed", fields)
		return finish(stdout, exitFailed)
	}
	lh.Info().LogActivity("Inserted transactions", fields)
	return finish(stdout, exitOK)
}

func generate(lh *logharbour.Logger, m metrics.Metrics, gen *simulator.Generator, count int) ([]simulator.Transaction, error) {
	txns, err := gen.Generate(count)
	if err != nil {
		lh.Error(err).LogActivity("Unable to generate transactions", map[string]any{"count": count})
		return nil, err
	}
	for currency, n := range simulator.Summarize(txns).ByCurrency {
		m.RecordWithLabels(metrics.GeneratedTotal, float64(n), currency)
	}
	lh.Info().LogActivity(fmt.Sprintf("Generated %d transactions", len(txns)), map[string]any{"count": len(txns)})
	return txns, nil
}

// finish prints the closing line, which tells success and failure apart.
func finish(stdout io.Writer, code int) int {
	if code == exitOK {
		fmt.Fprintln(stdout, "Done")
	} else {
		fmt.Fprintln(stdout, "Failed")
	}
	return code
}
