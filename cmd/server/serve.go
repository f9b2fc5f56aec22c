package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "sportsday/internal/adapters/http"
	"sportsday/internal/adapters/http/perf"
	"sportsday/internal/adapters/storage"
	"sportsday/internal/application/orchestrators"
	"sportsday/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration HTTP server (default)",
		RunE:  a.runServe,
	}
	cmd.Flags().Int("port", 3000, "HTTP port")
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	started := time.Now()

	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:  a.cfg.Tracing.Enabled,
		Exporter: a.cfg.Tracing.Exporter,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	collector := perf.NewCollector(perf.DefaultRingSize)
	store, closeStore, err := openStore(ctx, a.cfg.StoreURI,
		storage.WithCollector(collector),
		storage.WithSlowQuery(a.cfg.SlowQuery),
	)
	if err != nil {
		return err
	}
	defer closeStore()

	sender, err := newSender(a.cfg.Mail)
	if err != nil {
		return err
	}
	if err := verifyMail(ctx, sender); err != nil {
		slog.Warn("mail_verify_failed", "provider", a.cfg.Mail.Provider, "error", err)
	} else {
		slog.Info("mail_ready", "provider", a.cfg.Mail.Provider)
	}

	handler := web.NewMux(web.Deps{
		Store: store,
		Notifier: orchestrators.ConfirmationNotifier{Deps: orchestrators.SendConfirmationDeps{
			Sender:  sender,
			From:    a.cfg.Mail.From,
			ReplyTo: a.cfg.Mail.ReplyTo,
			Event:   eventDetails(a.cfg.Event),
		}},
		Collector:   collector,
		FrontendURL: a.cfg.FrontendURL,
		SlowRequest: a.cfg.SlowRequest,
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("server_started",
		"addr", srv.Addr,
		"version", version,
		"env", a.cfg.Env,
		"frontend_url", a.cfg.FrontendURL,
		"tracing", tp.Enabled(),
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("server_stopping")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	logPerfSummary(collector, started)
	return nil
}

// logPerfSummary writes the slowest routes and queries seen since start.
func logPerfSummary(collector *perf.Collector, since time.Time) {
	snap := collector.Snapshot(since, 5)
	slog.Info("perf_summary",
		"total_recorded", snap.TotalRecorded,
		"request_p50_ms", snap.RequestP50Ms,
		"request_p95_ms", snap.RequestP95Ms,
		"request_p99_ms", snap.RequestP99Ms,
	)
	for _, p := range snap.SlowestPaths {
		slog.Info("perf_slow_path", "path", p.Path, "avg_ms", p.AvgMs, "max_ms", p.MaxMs, "count", p.Count)
	}
	for _, q := range snap.SlowestQueries {
		slog.Info("perf_slow_query", "op", q.Path, "avg_ms", q.AvgMs, "max_ms", q.MaxMs, "count", q.Count)
	}
}
